package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/headcount/pkg/slogx"
)

// RateLimitConfig defines the rate limiting parameters. The mapstructure tags
// let the service config decode it directly.
type RateLimitConfig struct {
	// RequestsPerWindow is the number of requests allowed in the time window
	RequestsPerWindow int `mapstructure:"requests"`
	// Window is the time window for rate limiting
	Window time.Duration `mapstructure:"window"`
	// Burst allows for temporary bursts above the rate limit
	Burst int `mapstructure:"burst"`
}

// Valid reports whether the config can build a limiter.
func (c RateLimitConfig) Valid() bool {
	return c.RequestsPerWindow > 0 && c.Window > 0 && c.Burst > 0
}

// Default profiles. The service config overrides them per route group.
var (
	// StrictLimit guards the login endpoint against password guessing.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// AccountLimit caps login attempts against one account from all
	// addresses combined. It is looser than StrictLimit so one noisy address
	// cannot lock the account out on its own.
	AccountLimit = RateLimitConfig{RequestsPerWindow: 20, Window: 15 * time.Minute, Burst: 10}

	// ModerateLimit is for authenticated writes.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit is for authenticated reads.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}

	// PublicLimit is for unauthenticated read-only endpoints.
	PublicLimit = RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes (e.g., IP address, credential id, username)
type KeyExtractor func(*http.Request) string

// IPKeyExtractor keys on the peer address of the connection. Forwarding
// headers are ignored: without a trusted proxy in front any client can set
// them.
func IPKeyExtractor(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// ParseTrustedProxies parses CIDR ranges or bare addresses.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", e, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
	}
	return prefixes, nil
}

// ClientIPKeyExtractor resolves the client address behind trusted proxies.
// X-Forwarded-For is walked from the right, skipping trusted hops, and the
// first untrusted address wins. X-Real-IP is used when X-Forwarded-For is
// absent. Headers are only read when the peer itself is trusted; with no
// trusted proxies this is IPKeyExtractor.
func ClientIPKeyExtractor(trusted []netip.Prefix) KeyExtractor {
	isTrusted := func(addr netip.Addr) bool {
		addr = addr.Unmap()
		for _, p := range trusted {
			if p.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(r *http.Request) string {
		peer := IPKeyExtractor(r)
		peerAddr, err := netip.ParseAddr(peer)
		if err != nil || !isTrusted(peerAddr) {
			return peer
		}

		if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
			hops := strings.Split(strings.Join(xff, ","), ",")
			for i := len(hops) - 1; i >= 0; i-- {
				addr, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
				if err != nil {
					return peer
				}
				if !isTrusted(addr) {
					return addr.Unmap().String()
				}
			}
			return peer
		}

		if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
			return addr.Unmap().String()
		}
		return peer
	}
}

// CredentialKeyExtractor keys on the authenticated login.id. Returns empty
// string before authentication.
func CredentialKeyExtractor(r *http.Request) string {
	if id, ok := CredentialID(r.Context()); ok {
		return "login:" + strconv.FormatInt(id, 10)
	}
	return ""
}

// CompositeKeyExtractor combines multiple key extractors with a separator.
// Empty parts are skipped.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		var parts []string
		for _, extractor := range extractors {
			if key := extractor(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

// JSONFieldKeyExtractor reads a top-level string field from a JSON body and
// puts the body back for the handler. Bodies over MaxBodyBytes and non-string
// fields yield an empty key.
func JSONFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil {
			return ""
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))
		if err != nil || len(body) > MaxBodyBytes {
			return ""
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(body, &fields); err != nil {
			return ""
		}

		var v string
		if err := json.Unmarshal(fields[field], &v); err != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(v))
	}
}

// rateLimiter manages rate limiters for different keys
type rateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rate     rate.Limit
	burst    int

	mu          sync.Mutex
	lastCleanup time.Time
}

func (rl *rateLimiter) getLimiter(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	actual, _ := rl.limiters.LoadOrStore(key, limiter)

	rl.maybeCleanup()

	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket has refilled, at most every five
// minutes, so one-off keys do not accumulate.
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < 5*time.Minute {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitMiddleware creates a rate limiting middleware with the given configuration.
// The keyExtractor determines how requests are grouped for rate limiting.
// onLimited, when non-nil, is called for every rejected request.
func RateLimitMiddleware(config RateLimitConfig, keyExtractor KeyExtractor, onLimited ...func(*http.Request)) Middleware {
	rl := &rateLimiter{
		rate:        rate.Limit(float64(config.RequestsPerWindow) / config.Window.Seconds()),
		burst:       config.Burst,
		lastCleanup: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyExtractor(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			limiter := rl.getLimiter(key)
			if !limiter.Allow() {
				reservation := limiter.Reserve()
				delay := reservation.Delay()
				reservation.Cancel()

				w.Header().Set("Retry-After", strconv.Itoa(max(int(delay.Seconds()), 1)))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerWindow))
				w.Header().Set("X-RateLimit-Window", config.Window.String())

				log.Warn("rate limit exceeded", "key", key, "path", r.URL.Path)
				for _, fn := range onLimited {
					fn(r)
				}

				WriteError(w, http.StatusTooManyRequests, "rate_limit_exceeded",
					fmt.Sprintf("Too many requests. Please retry after %s.", delay.Round(time.Second)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits by client address. A nil clientIP uses
// IPKeyExtractor.
func RateLimitByIP(config RateLimitConfig, clientIP KeyExtractor, onLimited ...func(*http.Request)) Middleware {
	return RateLimitMiddleware(config, orPeer(clientIP), onLimited...)
}

// RateLimitByCredential limits by authenticated login.id, falling back to the
// client address.
func RateLimitByCredential(config RateLimitConfig, clientIP KeyExtractor, onLimited ...func(*http.Request)) Middleware {
	return RateLimitMiddleware(config, CompositeKeyExtractor(":",
		CredentialKeyExtractor,
		orPeer(clientIP),
	), onLimited...)
}

// RateLimitByIPAndJSONField limits by client address plus a JSON body field,
// e.g. the username of a login attempt.
func RateLimitByIPAndJSONField(config RateLimitConfig, clientIP KeyExtractor, field string, onLimited ...func(*http.Request)) Middleware {
	return RateLimitMiddleware(config, CompositeKeyExtractor(":",
		orPeer(clientIP),
		JSONFieldKeyExtractor(field),
	), onLimited...)
}

// RateLimitByJSONField limits by a JSON body field alone, whatever address
// the request comes from.
func RateLimitByJSONField(config RateLimitConfig, field string, onLimited ...func(*http.Request)) Middleware {
	extract := JSONFieldKeyExtractor(field)
	return RateLimitMiddleware(config, func(r *http.Request) string {
		if v := extract(r); v != "" {
			return field + ":" + v
		}
		return ""
	}, onLimited...)
}

func orPeer(clientIP KeyExtractor) KeyExtractor {
	if clientIP == nil {
		return IPKeyExtractor
	}
	return clientIP
}
