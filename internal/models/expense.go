package models

// Expense records a payment made by one member on behalf of several.
// Expenses are immutable once appended to a group's expense sequence.
type Expense struct {
	// Payer is the account that paid the full amount up front.
	Payer Account `json:"payer"`

	// Amount is the total paid, in the smallest currency unit. Always positive.
	Amount int64 `json:"amount"`

	// Participants is the snapshot of accounts the expense was split
	// across, in the order the caller listed them. The payer may or may
	// not be included. Duplicates are kept: an account listed twice is
	// debited two shares.
	Participants []Account `json:"participants"`

	// Timestamp is the Unix timestamp when the expense was recorded.
	Timestamp int64 `json:"timestamp"`
}

// Settlement is a proposed payment that reduces outstanding debt.
// Settlements are computed on demand by the planner and never persisted.
type Settlement struct {
	// From is the debtor making the payment.
	From Account `json:"from"`

	// To is the creditor receiving it.
	To Account `json:"to"`

	// Amount is the payment size. Always positive.
	Amount int64 `json:"amount"`
}
