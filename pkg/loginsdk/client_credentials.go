package loginsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListCredentials returns a page of credentials ordered by id. A limit of 0
// uses the server default. Requires admin:read.
func (c *Client) ListCredentials(ctx context.Context, limit, offset int) (*ListCredentialsResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	path := "/v1/credentials"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page ListCredentialsResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &page, http.StatusOK); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetCredential fetches one credential. Requires admin:read.
func (c *Client) GetCredential(ctx context.Context, id int64) (*Credential, error) {
	var cred Credential
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/v1/credentials/%d", id), nil, &cred, http.StatusOK); err != nil {
		return nil, err
	}
	return &cred, nil
}

// CreateCredential adds a credential. Requires admin:write.
func (c *Client) CreateCredential(ctx context.Context, req CreateCredentialRequest) (*Credential, error) {
	var cred Credential
	if err := c.do(ctx, http.MethodPost, "/v1/credentials", req, &cred, http.StatusCreated); err != nil {
		return nil, err
	}
	return &cred, nil
}

// UpdateCredential patches a credential. Requires admin:write.
func (c *Client) UpdateCredential(ctx context.Context, id int64, req UpdateCredentialRequest) (*Credential, error) {
	var cred Credential
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/v1/credentials/%d", id), req, &cred, http.StatusOK); err != nil {
		return nil, err
	}
	return &cred, nil
}

// Schema describes the login table. Requires admin:read.
func (c *Client) Schema(ctx context.Context) (*SchemaResponse, error) {
	var s SchemaResponse
	if err := c.do(ctx, http.MethodGet, "/v1/schema", nil, &s, http.StatusOK); err != nil {
		return nil, err
	}
	return &s, nil
}
