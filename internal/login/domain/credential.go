package domain

import "time"

// Column limits of the login table.
const (
	MaxUsernameLength     = 191
	MaxPasswordHashLength = 255
)

// Credential is one row of the login table.
type Credential struct {
	ID           int64
	Username     string // empty maps to NULL
	IsAdmin      bool
	PasswordHash string // argon2id PHC string, or legacy plaintext awaiting upgrade
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CreatedBy    *int64 // acting credential, nullable
	UpdatedBy    *int64 // acting credential, nullable
}

// CredentialUpdate is a partial update. Nil data fields are left untouched.
// updated_at and updated_by are always written; a nil UpdatedBy stores NULL.
type CredentialUpdate struct {
	Username     *string
	IsAdmin      *bool
	PasswordHash *string
	UpdatedBy    *int64
}

// Column describes one column of the login table as the engine reports it.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Default  *string
}
