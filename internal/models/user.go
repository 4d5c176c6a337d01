package models

// Account identifies a participant. It is opaque to the ledger: the
// auth layer mints UUIDs, but nothing in the core depends on the format.
type Account string

// User represents a registered participant account.
type User struct {
	// Account is the unique identifier for the user.
	Account Account `json:"account"`

	// DisplayName is the human-readable name shown to other members.
	DisplayName string `json:"display_name"`

	// Email is the user's login email (unique).
	Email string `json:"email,omitempty"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized into API responses.
	PasswordHash string `json:"password_hash,omitempty"`

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64 `json:"created_at"`
}
