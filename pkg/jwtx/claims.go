package jwtx

import (
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/headcount/pkg/idx"
)

// DefaultAccessTokenTTL is the lifetime of a login access token.
const DefaultAccessTokenTTL = 15 * time.Minute

// Scopes handed out at login.
const (
	ScopeProfileRead  = "profile:read"
	ScopeProfileWrite = "profile:write"
	ScopeAdminRead    = "admin:read"
	ScopeAdminWrite   = "admin:write"
)

// ScopesFor returns the scopes a credential receives at login.
func ScopesFor(isAdmin bool) []string {
	scopes := []string{ScopeProfileRead, ScopeProfileWrite}
	if isAdmin {
		scopes = append(scopes, ScopeAdminRead, ScopeAdminWrite)
	}
	return scopes
}

// Claims are the access-token claims of a logged-in credential. The subject
// is the decimal login.id.
type Claims struct {
	jwt.RegisteredClaims

	Username string   `json:"username,omitempty"`
	Admin    bool     `json:"adm,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
}

// NewAccessClaims builds claims for credential id.
func NewAccessClaims(
	id int64,
	username string,
	admin bool,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(id, 10),
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now).String(),
		},
		Username: username,
		Admin:    admin,
		Scopes:   ScopesFor(admin),
	}
}

// CredentialID parses the subject back into a login.id.
func (c *Claims) CredentialID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidClaim
	}
	return id, nil
}

// HasScope reports whether scope was granted.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiryWithLeeway checks exp and nbf against now, allowing leeway
// for clock skew in both directions.
func (c *Claims) ValidateExpiryWithLeeway(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
