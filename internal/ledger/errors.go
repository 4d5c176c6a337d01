package ledger

import "errors"

// Rejected-operation errors. Every precondition is checked before any
// write, so a returned error means no state changed; callers may
// re-issue with corrected arguments. None is fatal to the service.
var (
	// ErrGroupNotFound means the referenced group id has no record.
	ErrGroupNotFound = errors.New("group not found")

	// ErrNotAMember means an account required to be a current member isn't.
	ErrNotAMember = errors.New("not a member of the group")

	// ErrInvalidAmount covers non-positive amounts, empty participant
	// lists, over-settlement, and settling from a non-debtor.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAlreadyMember means add-member targeted an existing member.
	ErrAlreadyMember = errors.New("already a member of the group")

	// ErrNotAuthorized means a non-creator attempted a creator-only action.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrUserNotRegistered means a directory check failed during group
	// creation or membership addition.
	ErrUserNotRegistered = errors.New("user not registered")
)
