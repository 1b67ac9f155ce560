package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/headcount/internal/login/domain"
	"github.com/aussiebroadwan/headcount/internal/login/service"
	"github.com/aussiebroadwan/headcount/pkg/loginsdk"
	"github.com/aussiebroadwan/headcount/pkg/slogx"
)

func toSDKCredential(c domain.Credential) loginsdk.Credential {
	return loginsdk.Credential{
		ID:        c.ID,
		Username:  c.Username,
		IsAdmin:   c.IsAdmin,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		CreatedBy: c.CreatedBy,
		UpdatedBy: c.UpdatedBy,
	}
}

// writeServiceError maps service sentinels onto API errors. Anything it does
// not recognise is logged and reported as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		loginsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrUsernameTaken):
		loginsdk.ErrUsernameTaken.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		loginsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrEmptyUpdate):
		loginsdk.ErrInvalidRequest.WithDescription(err.Error()).WriteError(w)
	case errors.Is(err, service.ErrUnknownActor):
		// token outlived its credential
		loginsdk.ErrInvalidToken.WithDescription("the token subject no longer exists").WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		loginsdk.ErrServerError.WriteError(w)
	}
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
