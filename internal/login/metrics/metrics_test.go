package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddlewareUsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/credentials/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := HTTPMiddleware(mux)

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "GET /v1/credentials/{id}", "404"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/credentials/41", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/credentials/42", nil))
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "GET /v1/credentials/{id}", "404"))
	require.Equal(t, before+2, after)

	unmatched := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, unmatched+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestRateLimited(t *testing.T) {
	before := testutil.ToFloat64(RateLimitedTotal.WithLabelValues("login"))
	RateLimited("login")(httptest.NewRequest(http.MethodPost, "/v1/login", nil))
	require.Equal(t, before+1, testutil.ToFloat64(RateLimitedTotal.WithLabelValues("login")))
}
