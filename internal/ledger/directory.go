package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/splitpot/splitpot/internal/events"
	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/store"
)

// unknownName is returned for accounts that never registered a display
// name. A sentinel, not an error: unregistered accounts are routinely
// looked up when rendering group views.
const unknownName = "Unknown"

// Register marks account as registered under the given display name.
// Re-registering overwrites the name; the flag stays set. The API
// boundary only ever passes the authenticated session's own account
// here, so registration is always self-registration.
func (s *Service) Register(ctx context.Context, account models.Account, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.register(ctx, account, name)
	s.metrics.Observe("register", err)
	if err != nil {
		return err
	}

	slog.Info("User registered", "account", account, "name", name)
	s.publish(ctx, events.UserRegistered{Account: account, Name: name})
	return nil
}

func (s *Service) register(ctx context.Context, account models.Account, name string) error {
	if err := s.setJSON(ctx, store.UserFlagKey(account), true); err != nil {
		return fmt.Errorf("failed to set registration flag: %w", err)
	}
	if err := s.setJSON(ctx, store.UserNameKey(account), name); err != nil {
		return fmt.Errorf("failed to set display name: %w", err)
	}
	return nil
}

// IsRegistered reports whether account has ever registered.
func (s *Service) IsRegistered(ctx context.Context, account models.Account) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRegistered(ctx, account)
}

func (s *Service) isRegistered(ctx context.Context, account models.Account) (bool, error) {
	var registered bool
	if _, err := s.getJSON(ctx, store.UserFlagKey(account), &registered); err != nil {
		return false, err
	}
	return registered, nil
}

// DisplayName returns account's display name, or "Unknown" if the
// account never registered one.
func (s *Service) DisplayName(ctx context.Context, account models.Account) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.displayName(ctx, account)
}

func (s *Service) displayName(ctx context.Context, account models.Account) (string, error) {
	name := unknownName
	if _, err := s.getJSON(ctx, store.UserNameKey(account), &name); err != nil {
		return "", err
	}
	return name, nil
}
