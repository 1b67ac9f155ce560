package loginsdk

import (
	"context"
	"net/http"
)

// Login exchanges a username and password for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	var tok TokenResponse
	err := c.do(ctx, http.MethodPost, "/v1/login", LoginRequest{
		Username: username,
		Password: password,
	}, &tok, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me returns the credential the token belongs to.
func (c *Client) Me(ctx context.Context) (*Credential, error) {
	var cred Credential
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, &cred, http.StatusOK); err != nil {
		return nil, err
	}
	return &cred, nil
}

// ChangePassword replaces the caller's password.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	return c.do(ctx, http.MethodPost, "/v1/me/password", ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}, nil, http.StatusNoContent)
}
