package service

import (
	"time"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
	"github.com/aussiebroadwan/headcount/pkg/jwtx"
)

// TokenService signs access tokens for authenticated credentials.
type TokenService struct {
	Signer    jwtx.Signer
	Issuer    string
	Audience  []string
	AccessTTL time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Issue signs an access token for c. Admins receive the admin scopes.
func (s *TokenService) Issue(c domain.Credential) (domain.AccessToken, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	ttl := s.AccessTTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(c.ID, c.Username, c.IsAdmin, ttl, s.Issuer, s.Audience, now)
	token, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.AccessToken{}, err
	}

	return domain.AccessToken{
		Token:     token,
		ExpiresIn: ttl,
		Scopes:    claims.Scopes,
	}, nil
}
