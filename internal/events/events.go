// Package events defines the domain events the ledger emits and the
// Publisher contract that delivers them. Delivery is a collaborator
// concern: the ledger only says which events fire and what they carry.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/splitpot/splitpot/internal/models"
)

// Event is a domain event. Kind returns a stable identifier like
// "group.created".
type Event interface {
	Kind() string
}

// UserRegistered fires when an account registers (or re-registers).
type UserRegistered struct {
	Account models.Account
	Name    string
}

// GroupCreated fires when a group is created.
type GroupCreated struct {
	GroupID uint32
	Name    string
	Creator models.Account
}

// ExpenseAdded fires when an expense is appended to a group.
type ExpenseAdded struct {
	GroupID uint32
	Payer   models.Account
	Amount  int64
}

// MemberAdded fires when an existing member adds a new one.
type MemberAdded struct {
	GroupID uint32
	Member  models.Account
	Actor   models.Account
}

// DebtSettled fires when a debtor pays down debt to another member.
type DebtSettled struct {
	GroupID uint32
	From    models.Account
	To      models.Account
	Amount  int64
}

// GroupDeleted fires when a group and its derived state are removed.
type GroupDeleted struct {
	GroupID uint32
}

func (UserRegistered) Kind() string { return "user.registered" }
func (GroupCreated) Kind() string   { return "group.created" }
func (ExpenseAdded) Kind() string   { return "expense.added" }
func (MemberAdded) Kind() string    { return "group.member_added" }
func (DebtSettled) Kind() string    { return "debt.settled" }
func (GroupDeleted) Kind() string   { return "group.deleted" }

// Publisher delivers domain events. Implementations must not block the
// calling operation on downstream transport.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// LogPublisher writes every event to slog. It is the default publisher
// when no external transport is wired in.
type LogPublisher struct{}

// Publish logs the event with its kind and payload.
func (LogPublisher) Publish(_ context.Context, event Event) {
	slog.Info("Event published", "kind", event.Kind(), "event", event)
}

// Recorder collects events in memory. Tests use it to assert which
// events an operation emitted.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish appends the event to the recorder.
func (r *Recorder) Publish(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
