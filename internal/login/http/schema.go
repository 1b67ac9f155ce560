package http

import (
	"net/http"

	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/pkg/httpx"
	"github.com/aussiebroadwan/headcount/pkg/loginsdk"
)

type SchemaHandler struct {
	Store  store.Store
	Driver string
}

// ServeHTTP handles GET /v1/schema
//
//	@Summary		Describe the login table
//	@Description	Lists the columns of the login table in declared order as the engine reports them. Requires admin:read.
//	@Tags			Schema
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	loginsdk.SchemaResponse	"Table, driver and columns"
//	@Failure		401	{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	loginsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/schema [get].
func (h *SchemaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cols, err := h.Store.Describe(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := loginsdk.SchemaResponse{
		Table:   store.TableName,
		Driver:  h.Driver,
		Columns: make([]loginsdk.Column, len(cols)),
	}
	for i, c := range cols {
		resp.Columns[i] = loginsdk.Column{
			Name:     c.Name,
			Type:     c.Type,
			Nullable: c.Nullable,
			Default:  c.Default,
		}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
