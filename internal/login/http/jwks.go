package http

import (
	"net/http"

	"github.com/aussiebroadwan/headcount/pkg/httpx"
	"github.com/aussiebroadwan/headcount/pkg/jwtx"
	"github.com/aussiebroadwan/headcount/pkg/loginsdk"
)

// JWKSHandler exposes the JSON Web Key Set for public key discovery.
//
//	@Summary		Get JWKS
//	@Description	Returns the Ed25519 public keys that verify access tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	loginsdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get].
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, loginsdk.JWKSResponse(keys.PublicJWKS()))
	}
}
