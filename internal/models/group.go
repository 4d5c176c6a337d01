package models

// Group represents a named set of members who share expenses.
//
// Members is an ordered set: insertion order is preserved and duplicates
// are never inserted. Membership only grows; there is no member-removal
// operation (a known scope boundary, not an oversight).
type Group struct {
	// ID is the sequential group identifier, starting at 1.
	ID uint32 `json:"id"`

	// Name is the display name of the group (e.g. "Roadtrip", "Flat 4B").
	Name string `json:"name"`

	// Creator is the account that created the group. Only the creator
	// may delete it.
	Creator Account `json:"creator"`

	// Members lists all current members in insertion order. The creator
	// is always a member.
	Members []Account `json:"members"`
}

// HasMember reports whether account is a current member of the group.
func (g Group) HasMember(account Account) bool {
	for _, m := range g.Members {
		if m == account {
			return true
		}
	}
	return false
}

// MemberBalance is one member's row in a denormalized group view.
type MemberBalance struct {
	// Account is the member's identifier.
	Account Account `json:"account"`

	// Name is the member's display name ("Unknown" if never registered).
	Name string `json:"name"`

	// Balance is the member's net position: negative owes, positive is owed.
	Balance int64 `json:"balance"`
}

// GroupWithBalances joins a group with every member's display name and
// current balance.
type GroupWithBalances struct {
	ID      uint32          `json:"id"`
	Name    string          `json:"name"`
	Creator Account         `json:"creator"`
	Members []MemberBalance `json:"members"`
}
