// Package store provides the key-value contract the ledger persists
// through, plus an in-memory implementation for tests.
//
// All ledger state lives in one logical store addressed by tagged
// composite keys: one key kind per record family, each carrying its own
// id payload. The contract is small (get, set, remove) with absence
// handled by callers, since every record family has a natural default
// value.
package store

import (
	"context"
	"fmt"

	"github.com/splitpot/splitpot/internal/models"
)

// Kind tags which record family a key addresses.
type Kind string

const (
	// KindUserFlag marks an account as registered.
	KindUserFlag Kind = "user_flag"
	// KindUserName holds an account's display name.
	KindUserName Kind = "user_name"
	// KindCredential holds a login credential record, keyed by email.
	KindCredential Kind = "credential"
	// KindGroup holds a group record, keyed by group id.
	KindGroup Kind = "group"
	// KindBalance holds one member's balance, keyed by (group id, account).
	KindBalance Kind = "balance"
	// KindCounter is the single global group-id counter.
	KindCounter Kind = "counter"
	// KindMemberGroups holds the list of group ids an account belongs to.
	KindMemberGroups Kind = "member_groups"
	// KindExpenses holds a group's append-only expense sequence.
	KindExpenses Kind = "expenses"
	// KindActivities holds a group's append-only activity journal.
	KindActivities Kind = "activities"
)

// Key addresses one record in the store. Group and Subject are payload
// fields; which ones are meaningful depends on Kind.
type Key struct {
	Kind    Kind
	Group   uint32
	Subject string
}

// UserFlagKey addresses the registered flag for account.
func UserFlagKey(account models.Account) Key {
	return Key{Kind: KindUserFlag, Subject: string(account)}
}

// UserNameKey addresses the display name for account.
func UserNameKey(account models.Account) Key {
	return Key{Kind: KindUserName, Subject: string(account)}
}

// CredentialKey addresses the credential record for email.
func CredentialKey(email string) Key {
	return Key{Kind: KindCredential, Subject: email}
}

// GroupKey addresses the group record for id.
func GroupKey(id uint32) Key {
	return Key{Kind: KindGroup, Group: id}
}

// BalanceKey addresses the balance of account within group id.
func BalanceKey(id uint32, account models.Account) Key {
	return Key{Kind: KindBalance, Group: id, Subject: string(account)}
}

// CounterKey addresses the global group-id counter.
func CounterKey() Key {
	return Key{Kind: KindCounter}
}

// MemberGroupsKey addresses the membership index for account.
func MemberGroupsKey(account models.Account) Key {
	return Key{Kind: KindMemberGroups, Subject: string(account)}
}

// ExpensesKey addresses the expense sequence for group id.
func ExpensesKey(id uint32) Key {
	return Key{Kind: KindExpenses, Group: id}
}

// ActivitiesKey addresses the activity journal for group id.
func ActivitiesKey(id uint32) Key {
	return Key{Kind: KindActivities, Group: id}
}

// String renders the key in its canonical storage form, e.g.
// "balance/3/a1b2". The form is stable: it is the primary key in the
// SQLite store, so changing it is a breaking schema change.
func (k Key) String() string {
	switch k.Kind {
	case KindCounter:
		return string(k.Kind)
	case KindGroup, KindExpenses, KindActivities:
		return fmt.Sprintf("%s/%d", k.Kind, k.Group)
	case KindBalance:
		return fmt.Sprintf("%s/%d/%s", k.Kind, k.Group, k.Subject)
	default:
		return fmt.Sprintf("%s/%s", k.Kind, k.Subject)
	}
}

// KV is the persistence contract the ledger depends on.
//
// Get reports absence through its second return value rather than an
// error: missing records are normal and every caller has a default.
type KV interface {
	// Get returns the value stored at key, or ok=false if absent.
	Get(ctx context.Context, key Key) (value []byte, ok bool, err error)

	// Set stores value at key, overwriting any previous value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes the value at key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key Key) error

	// Close releases any resources held by the store.
	Close() error
}
