package loginsdk

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/headcount/pkg/jwtx"
)

// Health checks liveness, or readiness when ready is true.
func (c *Client) Health(ctx context.Context, ready bool) (*HealthResponse, error) {
	path := "/livez"
	if ready {
		path = "/readyz"
	}

	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// JWKS fetches the public signing keys.
func (c *Client) JWKS(ctx context.Context) (*JWKSResponse, error) {
	var set JWKSResponse
	if err := c.do(ctx, http.MethodGet, "/.well-known/jwks.json", nil, &set, http.StatusOK); err != nil {
		return nil, err
	}
	return &set, nil
}

// LoadKeys replaces the contents of keys with the server's current public
// keys, so a resource server can verify access tokens offline with
// jwtx.NewVerifierEdDSA. Call it again when a token names an unknown kid.
func (c *Client) LoadKeys(ctx context.Context, keys *jwtx.KeySet) error {
	set, err := c.JWKS(ctx)
	if err != nil {
		return err
	}
	return keys.ResetFromJWKS(jwtx.JWKS(*set))
}
