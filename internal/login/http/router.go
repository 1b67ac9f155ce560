package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/headcount/api/login" // Swagger docs
	"github.com/aussiebroadwan/headcount/internal/login/metrics"
	"github.com/aussiebroadwan/headcount/internal/login/service"
	"github.com/aussiebroadwan/headcount/internal/login/store"
	"github.com/aussiebroadwan/headcount/pkg/httpx"
	"github.com/aussiebroadwan/headcount/pkg/jwtx"
	"github.com/aussiebroadwan/headcount/pkg/slogx"
)

// RateLimits groups the limiter settings per class of endpoint.
type RateLimits struct {
	Login        httpx.RateLimitConfig // POST /v1/login, by client address and username
	LoginAccount httpx.RateLimitConfig // POST /v1/login, by username from any address
	Self         httpx.RateLimitConfig // /v1/me, by credential
	Admin        httpx.RateLimitConfig // /v1/credentials and /v1/schema, by credential
	Public       httpx.RateLimitConfig // discovery and health, by client address
}

// DefaultRateLimits mirrors the httpx profiles.
var DefaultRateLimits = RateLimits{
	Login:        httpx.StrictLimit,
	LoginAccount: httpx.AccountLimit,
	Self:         httpx.LenientLimit,
	Admin:        httpx.ModerateLimit,
	Public:       httpx.PublicLimit,
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limits       RateLimits

	store             store.Store
	Driver            string // storage engine name reported by /v1/schema
	CredentialService *service.CredentialService
	TokenService      *service.TokenService

	// ClientIP resolves the address rate limits key on. NewRouter sets
	// httpx.IPKeyExtractor; deployments behind a proxy replace it with
	// httpx.ClientIPKeyExtractor.
	ClientIP httpx.KeyExtractor
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	limits RateLimits,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		limits:       limits,
		ClientIP:     httpx.IPKeyExtractor,
	}

	// metrics sits innermost so it sees the pattern the mux matched
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		metrics.HTTPMiddleware,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerLogin()
	r.registerSelf()
	r.registerCredentials()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Headcount Login Service API
//	@version		0.1.0
//	@description	Credential store of the headcount people counter. Issues EdDSA-signed JWT access tokens
//	@description	that can be verified with the keys published at /.well-known/jwks.json.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/headcount
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerLogin() {
	h := &LoginHandler{
		CredentialService: r.CredentialService,
		TokenService:      r.TokenService,
	}

	// The first limiter slows guessing from one address, the second caps
	// guesses against one username across all addresses.
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(h,
			httpx.RateLimitByIPAndJSONField(r.limits.Login, r.ClientIP, "username", metrics.RateLimited("login")),
			httpx.RateLimitByJSONField(r.limits.LoginAccount, "username", metrics.RateLimited("login_account")),
		),
	)
}

func (r *Router) registerSelf() {
	h := &MeHandler{CredentialService: r.CredentialService}

	r.Mux.Handle("GET /v1/me",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(jwtx.ScopeProfileRead),
			httpx.RateLimitByCredential(r.limits.Self, r.ClientIP, metrics.RateLimited("me")),
		),
	)

	// Password changes run argon2 twice; they share the login budget.
	r.Mux.Handle("POST /v1/me/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAllScopes(jwtx.ScopeProfileRead, jwtx.ScopeProfileWrite),
			httpx.RateLimitByCredential(r.limits.Login, r.ClientIP, metrics.RateLimited("me_password")),
		),
	)
}

func (r *Router) registerCredentials() {
	h := &CredentialsHandler{CredentialService: r.CredentialService}
	s := &SchemaHandler{Store: r.store, Driver: r.Driver}

	admin := func(handler http.HandlerFunc, scope, route string) http.Handler {
		return httpx.Chain(handler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyScope(scope),
			httpx.RateLimitByCredential(r.limits.Admin, r.ClientIP, metrics.RateLimited(route)),
		)
	}

	r.Mux.Handle("GET /v1/credentials", admin(h.HandleList, jwtx.ScopeAdminRead, "credentials"))
	r.Mux.Handle("POST /v1/credentials", admin(h.HandleCreate, jwtx.ScopeAdminWrite, "credentials"))
	r.Mux.Handle("GET /v1/credentials/{id}", admin(h.HandleGet, jwtx.ScopeAdminRead, "credential"))
	r.Mux.Handle("PATCH /v1/credentials/{id}", admin(h.HandleUpdate, jwtx.ScopeAdminWrite, "credential"))
	r.Mux.Handle("GET /v1/schema", admin(s.ServeHTTP, jwtx.ScopeAdminRead, "schema"))
}

func (r *Router) registerSystem() {
	public := func(h http.Handler) http.Handler {
		return httpx.Chain(h, httpx.RateLimitByIP(r.limits.Public, r.ClientIP, metrics.RateLimited("public")))
	}

	r.Mux.Handle("GET /.well-known/jwks.json", public(JWKSHandler(r.keys)))
	r.Mux.Handle("GET /livez", public(LivezHandler(r.startTime, r.buildVersion)))
	r.Mux.Handle("GET /readyz", public(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys)))
	r.Mux.Handle("GET /metrics", promhttp.Handler())
}
