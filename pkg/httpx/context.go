package httpx

import (
	"context"

	"github.com/aussiebroadwan/headcount/pkg/jwtx"
)

type ctxKey string

const (
	ctxKeyCredentialID ctxKey = "credential_id"
	ctxKeyClaims       ctxKey = "claims"
)

func contextWithAuth(ctx context.Context, c jwtx.Claims, id int64) context.Context {
	ctx = context.WithValue(ctx, ctxKeyCredentialID, id)
	ctx = context.WithValue(ctx, ctxKeyClaims, c)
	return ctx
}

// CredentialID returns the authenticated login.id, if any.
func CredentialID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKeyCredentialID).(int64)
	return id, ok
}

// ClaimsFromContext returns the verified token claims, if any.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return c, ok
}
