package http

import (
	"net/http"

	"github.com/aussiebroadwan/headcount/internal/login/service"
	"github.com/aussiebroadwan/headcount/pkg/httpx"
	"github.com/aussiebroadwan/headcount/pkg/loginsdk"
)

// MeHandler serves the caller's own credential.
type MeHandler struct {
	CredentialService *service.CredentialService
}

// HandleGet handles GET /v1/me
//
//	@Summary		Current credential
//	@Description	Returns the credential the access token was issued to. Requires profile:read.
//	@Tags			Me
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	loginsdk.Credential		"The caller's credential"
//	@Failure		401	{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/me [get].
func (h *MeHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.CredentialID(r.Context())
	if !ok {
		loginsdk.ErrInvalidToken.WriteError(w)
		return
	}

	c, err := h.CredentialService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKCredential(c))
}

// HandleChangePassword handles POST /v1/me/password
//
//	@Summary		Change password
//	@Description	Replaces the caller's password. The current password must be supplied. Requires profile:write.
//	@Tags			Me
//	@Accept			json
//	@Security		BearerAuth
//	@Param			request	body	loginsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		204		"Password changed"
//	@Failure		400		{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/me/password [post].
func (h *MeHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := httpx.CredentialID(ctx)
	if !ok {
		loginsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req loginsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		loginsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	if err := h.CredentialService.ChangePassword(ctx, id, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
