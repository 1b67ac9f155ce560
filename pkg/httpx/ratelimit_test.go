package httpx_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/headcount/pkg/httpx"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func fromIP(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	return req
}

func loginAttempt(ip, username string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/login",
		strings.NewReader(fmt.Sprintf(`{"username":%q,"password":"x"}`, username)))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = ip + ":12345"
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(fromIP("192.168.1.1")))
	})

	t.Run("ignores forwarding headers", func(t *testing.T) {
		req := fromIP("192.168.1.1")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	prefixes, err := httpx.ParseTrustedProxies([]string{"10.1.2.3/8", " 127.0.0.1 ", "::1"})
	require.NoError(t, err)
	require.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("127.0.0.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, prefixes)

	for _, bad := range []string{"10.0.0.0/33", "proxy.internal", ""} {
		_, err := httpx.ParseTrustedProxies([]string{bad})
		require.Error(t, err, bad)
	}
}

func TestClientIPKeyExtractor(t *testing.T) {
	trusted, err := httpx.ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	extract := httpx.ClientIPKeyExtractor(trusted)

	tests := []struct {
		name string
		peer string
		xff  []string
		real string
		want string
	}{
		{name: "no headers", peer: "10.0.0.5", want: "10.0.0.5"},
		{name: "trusted peer forwards the client", peer: "10.0.0.5", xff: []string{"203.0.113.1"}, want: "203.0.113.1"},
		{name: "untrusted peer cannot spoof", peer: "198.51.100.7", xff: []string{"203.0.113.1"}, want: "198.51.100.7"},
		{name: "untrusted peer cannot spoof X-Real-IP", peer: "198.51.100.7", real: "203.0.113.2", want: "198.51.100.7"},
		{name: "client-supplied hops left of the real client are ignored", peer: "10.0.0.5", xff: []string{"1.2.3.4, 203.0.113.1, 10.0.0.9"}, want: "203.0.113.1"},
		{name: "repeated headers are one chain", peer: "10.0.0.5", xff: []string{"1.2.3.4", "203.0.113.1"}, want: "203.0.113.1"},
		{name: "every hop trusted", peer: "10.0.0.5", xff: []string{"10.0.0.8"}, want: "10.0.0.5"},
		{name: "garbage hop", peer: "10.0.0.5", xff: []string{"203.0.113.1, nonsense"}, want: "10.0.0.5"},
		{name: "X-Real-IP from a trusted peer", peer: "10.0.0.5", real: "203.0.113.2", want: "203.0.113.2"},
		{name: "X-Forwarded-For beats X-Real-IP", peer: "10.0.0.5", xff: []string{"203.0.113.1"}, real: "203.0.113.2", want: "203.0.113.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := fromIP(tt.peer)
			for _, v := range tt.xff {
				req.Header.Add("X-Forwarded-For", v)
			}
			if tt.real != "" {
				req.Header.Set("X-Real-IP", tt.real)
			}
			require.Equal(t, tt.want, extract(req))
		})
	}

	t.Run("no trusted proxies is the socket peer", func(t *testing.T) {
		req := fromIP("10.0.0.5")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		require.Equal(t, "10.0.0.5", httpx.ClientIPKeyExtractor(nil)(req))
	})
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	extract := httpx.JSONFieldKeyExtractor("username")

	t.Run("reads the field and restores the body", func(t *testing.T) {
		req := loginAttempt("10.0.0.1", " Admin ")
		require.Equal(t, "admin", extract(req))

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), `"username":" Admin "`)
	})

	t.Run("missing field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":"x"}`))
		require.Empty(t, extract(req))
	})

	t.Run("not json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`username=alice`))
		require.Empty(t, extract(req))
	})

	t.Run("non string field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":42}`))
		require.Empty(t, extract(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	extractor := httpx.CompositeKeyExtractor(":",
		httpx.IPKeyExtractor,
		httpx.JSONFieldKeyExtractor("username"),
	)

	require.Equal(t, "192.168.1.1:alice", extractor(loginAttempt("192.168.1.1", "alice")))
	require.Equal(t, "192.168.1.1", extractor(fromIP("192.168.1.1")))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
		h := httpx.RateLimitMiddleware(config, httpx.IPKeyExtractor)(okHandler)

		for i := range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, fromIP("192.168.1.1"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("192.168.1.1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitByIP(config, nil)(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("192.168.1.1"))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("192.168.1.1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, fromIP("192.168.1.2"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitMiddleware(config, func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, fromIP("192.168.1.1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("reports rejections", func(t *testing.T) {
		var rejected int
		config := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitMiddleware(config, httpx.IPKeyExtractor, func(*http.Request) { rejected++ })(okHandler)

		for range 3 {
			h.ServeHTTP(httptest.NewRecorder(), fromIP("192.168.1.1"))
		}
		require.Equal(t, 2, rejected)
	})
}

func TestRateLimitByIPAndJSONField(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}

	var bodies []string
	h := httpx.RateLimitByIPAndJSONField(config, nil, "username")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		w.WriteHeader(http.StatusOK)
	}))

	for range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, loginAttempt("192.168.1.1", "alice"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loginAttempt("192.168.1.1", "alice"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, loginAttempt("192.168.1.1", "bob"))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, bodies, 3)
	require.Contains(t, bodies[2], `"bob"`)

	t.Run("rotated X-Forwarded-For does not reset the budget", func(t *testing.T) {
		h := httpx.RateLimitByIPAndJSONField(config, nil, "username")(okHandler)
		for i := range 3 {
			req := loginAttempt("192.168.1.1", "carol")
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if i < 2 {
				require.Equal(t, http.StatusOK, rec.Code)
			} else {
				require.Equal(t, http.StatusTooManyRequests, rec.Code)
			}
		}
	})
}

func TestRateLimitByJSONField(t *testing.T) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := httpx.RateLimitByJSONField(config, "username")(okHandler)

	for i := range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, loginAttempt(fmt.Sprintf("192.168.1.%d", i+1), "alice"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loginAttempt("192.168.1.99", "ALICE"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code, "a new address does not reset the account budget")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, loginAttempt("192.168.1.1", "bob"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitProfiles(t *testing.T) {
	for name, config := range map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"account":  httpx.AccountLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
		"public":   httpx.PublicLimit,
	} {
		t.Run(name, func(t *testing.T) {
			require.True(t, config.Valid())
		})
	}

	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
	require.Less(t, httpx.LenientLimit.RequestsPerWindow, httpx.PublicLimit.RequestsPerWindow)
	require.False(t, httpx.RateLimitConfig{}.Valid())
}

// Benchmark with many different IPs (tests sync.Map performance)
func BenchmarkRateLimitManyIPs(b *testing.B) {
	config := httpx.RateLimitConfig{RequestsPerWindow: 1000000, Window: time.Minute, Burst: 1000}
	h := httpx.RateLimitByIP(config, nil)(okHandler)

	for i := 0; b.Loop(); i++ {
		h.ServeHTTP(httptest.NewRecorder(), fromIP(fmt.Sprintf("192.168.%d.%d", i%255, (i/255)%255)))
	}
}
