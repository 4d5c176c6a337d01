// Package auth is the identity collaborator: it turns credentials into
// verified account ids. The ledger core never sees passwords or tokens,
// only the account id extracted from a validated session.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/splitpot/splitpot/internal/models"
	"github.com/splitpot/splitpot/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
)

// Authenticator manages credential records: signup with a bcrypt-hashed
// password, login by verifying it. Credentials live in the same KV
// store as the ledger, under their own key kind.
type Authenticator struct {
	kv  store.KV
	now func() time.Time
}

// NewAuthenticator creates an authenticator over kv.
func NewAuthenticator(kv store.KV) *Authenticator {
	return &Authenticator{kv: kv, now: time.Now}
}

// ValidatePassword checks that the password meets minimum requirements.
func (a *Authenticator) ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// SignUp creates a credential record for email and mints a fresh
// account id for it. The account id is what the ledger knows the user
// by; the email stays an auth-layer detail.
func (a *Authenticator) SignUp(ctx context.Context, email, displayName, password string) (*models.User, error) {
	if err := a.ValidatePassword(password); err != nil {
		return nil, err
	}

	if existing, err := a.lookup(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Account:      models.Account(uuid.New().String()),
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    a.now().Unix(),
	}
	if err := a.save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// LogIn verifies the email and password, returning the user if valid.
func (a *Authenticator) LogIn(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (a *Authenticator) lookup(ctx context.Context, email string) (*models.User, error) {
	raw, ok, err := a.kv.Get(ctx, store.CredentialKey(email))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("failed to decode credential record: %w", err)
	}
	return &user, nil
}

func (a *Authenticator) save(ctx context.Context, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode credential record: %w", err)
	}
	return a.kv.Set(ctx, store.CredentialKey(user.Email), raw)
}
