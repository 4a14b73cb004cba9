package models

import "time"

// User represents an account entity used for authentication and authorization.
// It contains identity attributes and credential-related data.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	// It is not exposed via JSON and is used only at the persistence layer.
	UserID int64 `json:"-"`

	// Login is the unique user login identifier.
	// Typically used during authentication.
	Login string `json:"login"`

	// AuthHash is SHA-256(KEK ‖ authSalt), sent by the client in place of
	// the master password. This value MUST be a derived value, never
	// plaintext; the server cannot recover the KEK from it.
	AuthHash string `json:"-"`

	// EncryptionSalt is the random salt the client uses to derive its KEK
	// from the master password via Argon2id. Not secret; stored alongside
	// the account so any device can re-derive the same KEK.
	EncryptionSalt []byte `json:"-"`

	// Name is an optional display name for the account. Purely
	// descriptive; never used in any cryptographic derivation.
	Name string `json:"name"`

	// CreatedAt is the timestamp when the user account was created.
	// Used for auditing and lifecycle management.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}
