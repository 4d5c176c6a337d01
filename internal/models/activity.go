package models

// ActivityKind classifies a journal entry.
type ActivityKind string

const (
	// ActivityExpense records an expense added to the group.
	ActivityExpense ActivityKind = "expense"

	// ActivitySettlement records a debt payment between two members.
	ActivitySettlement ActivityKind = "settlement"

	// ActivityMemberAdded records a member joining, including the
	// group's creation (actor = creator, no recipient).
	ActivityMemberAdded ActivityKind = "member_added"
)

// Activity is one entry in a group's append-only journal.
//
// IDs are per-group, 1-based, gap-free and strictly increasing: each
// append is assigned id = count-so-far + 1.
type Activity struct {
	// ID is the 1-based position of this entry in the group's journal.
	ID uint32 `json:"id"`

	// Kind classifies the entry.
	Kind ActivityKind `json:"kind"`

	// Actor is the account that performed the action.
	Actor Account `json:"actor"`

	// Recipient is the other party when the action has one (the added
	// member, the settlement creditor). Empty otherwise.
	Recipient Account `json:"recipient,omitempty"`

	// Amount is the amount involved, 0 when not meaningful.
	Amount int64 `json:"amount"`

	// Timestamp is the Unix timestamp when the entry was appended.
	Timestamp int64 `json:"timestamp"`
}
