package loginsdk

import (
	"time"

	"github.com/aussiebroadwan/headcount/pkg/jwtx"
)

// ErrorResponse is the JSON error envelope of every endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// ============================================================================
// Login
// ============================================================================

// LoginRequest is the body of POST /v1/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by POST /v1/login.
type TokenResponse struct {
	// AccessToken is an EdDSA-signed JWT.
	AccessToken string `json:"access_token"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int `json:"expires_in"`

	// Scope is the space-delimited list of granted scopes.
	Scope string `json:"scope"`
}

// ChangePasswordRequest is the body of POST /v1/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ============================================================================
// Credentials
// ============================================================================

// Credential is a login row as the API exposes it. The password column is
// never included.
type Credential struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy *int64    `json:"created_by"`
	UpdatedBy *int64    `json:"updated_by"`
}

// ListCredentialsResponse is returned by GET /v1/credentials.
type ListCredentialsResponse struct {
	Credentials []Credential `json:"credentials"`
	Total       int          `json:"total"`
	Limit       int          `json:"limit"`
	Offset      int          `json:"offset"`
}

// CreateCredentialRequest is the body of POST /v1/credentials.
type CreateCredentialRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// UpdateCredentialRequest is the body of PATCH /v1/credentials/{id}. Omitted
// fields are left as they are.
type UpdateCredentialRequest struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	IsAdmin  *bool   `json:"is_admin,omitempty"`
}

// ============================================================================
// Schema
// ============================================================================

// Column describes one column of the login table.
type Column struct {
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default"`
}

// SchemaResponse is returned by GET /v1/schema.
type SchemaResponse struct {
	Table   string   `json:"table"`
	Driver  string   `json:"driver"`
	Columns []Column `json:"columns"`
}

// ============================================================================
// Health & Discovery
// ============================================================================

// HealthChecks reports the state of each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// JWKSResponse is the public key set served at /.well-known/jwks.json.
type JWKSResponse jwtx.JWKS
