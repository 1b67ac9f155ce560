package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/headcount/internal/login/service"
	"github.com/aussiebroadwan/headcount/pkg/httpx"
	"github.com/aussiebroadwan/headcount/pkg/loginsdk"
)

type LoginHandler struct {
	CredentialService *service.CredentialService
	TokenService      *service.TokenService
}

// ServeHTTP handles POST /v1/login
//
//	@Summary		Log in
//	@Description	Checks a username and password and returns a signed access token.
//	@Description	Unknown usernames and wrong passwords produce the same error.
//	@Tags			Login
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginsdk.LoginRequest	true	"Username and password"
//	@Success		200		{object}	loginsdk.TokenResponse	"access_token, token_type, expires_in, scope"
//	@Failure		400		{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Failure		429		{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		loginsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}
	if req.Username == "" || req.Password == "" {
		loginsdk.ErrInvalidRequest.WithDescription("username and password are required").WriteError(w)
		return
	}

	cred, err := h.CredentialService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	tok, err := h.TokenService.Issue(cred)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, loginsdk.TokenResponse{
		AccessToken: tok.Token,
		TokenType:   "Bearer",
		ExpiresIn:   int(tok.ExpiresIn.Seconds()),
		Scope:       strings.Join(tok.Scopes, " "),
	})
}
