package http

import (
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/headcount/internal/login/service"
	"github.com/aussiebroadwan/headcount/pkg/httpx"
	"github.com/aussiebroadwan/headcount/pkg/loginsdk"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// CredentialsHandler handles the admin credential endpoints.
type CredentialsHandler struct {
	CredentialService *service.CredentialService
}

// HandleList handles GET /v1/credentials
//
//	@Summary		List credentials
//	@Description	Returns credentials ordered by id. Requires admin:read.
//	@Tags			Credentials
//	@Produce		json
//	@Security		BearerAuth
//	@Param			limit	query		int									false	"Page size (default 50, max 500)"
//	@Param			offset	query		int									false	"Rows to skip"
//	@Success		200		{object}	loginsdk.ListCredentialsResponse	"Page of credentials and the total count"
//	@Failure		400		{object}	loginsdk.ErrorResponse				"error, error_description"
//	@Failure		401		{object}	loginsdk.ErrorResponse				"error, error_description"
//	@Failure		403		{object}	loginsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/credentials [get].
func (h *CredentialsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", defaultPageSize)
	if !ok || limit < 1 || limit > maxPageSize {
		loginsdk.ErrInvalidRequest.WithDescription("limit must be between 1 and 500").WriteError(w)
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok || offset < 0 {
		loginsdk.ErrInvalidRequest.WithDescription("offset must not be negative").WriteError(w)
		return
	}

	creds, total, err := h.CredentialService.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := loginsdk.ListCredentialsResponse{
		Credentials: make([]loginsdk.Credential, len(creds)),
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	}
	for i, c := range creds {
		resp.Credentials[i] = toSDKCredential(c)
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate handles POST /v1/credentials
//
//	@Summary		Create credential
//	@Description	Adds a credential. The caller is recorded as creator. Requires admin:write.
//	@Tags			Credentials
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		loginsdk.CreateCredentialRequest	true	"New credential"
//	@Success		201		{object}	loginsdk.Credential					"The created credential"
//	@Failure		400		{object}	loginsdk.ErrorResponse				"error, error_description"
//	@Failure		401		{object}	loginsdk.ErrorResponse				"error, error_description"
//	@Failure		403		{object}	loginsdk.ErrorResponse				"error, error_description"
//	@Failure		409		{object}	loginsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/credentials [post].
func (h *CredentialsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := httpx.CredentialID(ctx)

	var req loginsdk.CreateCredentialRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		loginsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	c, err := h.CredentialService.Create(ctx, actor, service.NewCredential{
		Username: req.Username,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/v1/credentials/"+strconv.FormatInt(c.ID, 10))
	httpx.WriteJSON(w, http.StatusCreated, toSDKCredential(c))
}

// HandleGet handles GET /v1/credentials/{id}
//
//	@Summary		Get credential
//	@Description	Returns one credential by id. Requires admin:read.
//	@Tags			Credentials
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		int						true	"Credential id"
//	@Success		200	{object}	loginsdk.Credential		"The credential"
//	@Failure		400	{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/credentials/{id} [get].
func (h *CredentialsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		loginsdk.ErrInvalidRequest.WithDescription("id must be a positive integer").WriteError(w)
		return
	}

	c, err := h.CredentialService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKCredential(c))
}

// HandleUpdate handles PATCH /v1/credentials/{id}
//
//	@Summary		Update credential
//	@Description	Changes the username, password or admin flag. The caller is recorded as updater. Requires admin:write.
//	@Tags			Credentials
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		int									true	"Credential id"
//	@Param			request	body		loginsdk.UpdateCredentialRequest	true	"Fields to change"
//	@Success		200		{object}	loginsdk.Credential					"The updated credential"
//	@Failure		400		{object}	loginsdk.ErrorResponse				"error, error_description"
//	@Failure		404		{object}	loginsdk.ErrorResponse				"error, error_description"
//	@Failure		409		{object}	loginsdk.ErrorResponse				"error, error_description"
//	@Router			/v1/credentials/{id} [patch].
func (h *CredentialsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := httpx.CredentialID(ctx)

	id, ok := pathID(r)
	if !ok {
		loginsdk.ErrInvalidRequest.WithDescription("id must be a positive integer").WriteError(w)
		return
	}

	var req loginsdk.UpdateCredentialRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		loginsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
		return
	}

	c, err := h.CredentialService.Update(ctx, actor, id, service.CredentialPatch{
		Username: req.Username,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSDKCredential(c))
}

func queryInt(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
