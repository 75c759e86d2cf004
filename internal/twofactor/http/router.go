package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/twofactor/internal/twofactor/service"
	"github.com/aussiebroadwan/twofactor/internal/twofactor/store"
	"github.com/aussiebroadwan/twofactor/pkg/httpx"
	"github.com/aussiebroadwan/twofactor/pkg/jwtx"
	"github.com/aussiebroadwan/twofactor/pkg/slogx"

	_ "github.com/aussiebroadwan/twofactor/api/twofactor" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	TwoFactorService *service.TwoFactorService

	// Rate limit profiles. NewRouter fills in the defaults.
	VerifyLimit  httpx.RateLimitConfig
	AccountLimit httpx.RateLimitConfig
	HealthLimit  httpx.RateLimitConfig
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	svc *service.TwoFactorService,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:              http.NewServeMux(),
		verifier:         verifier,
		buildVersion:     buildVersion,
		startTime:        time.Now(),
		logger:           logger,
		store:            st,
		TwoFactorService: svc,
		VerifyLimit:      httpx.StrictLimit,
		AccountLimit:     httpx.ModerateLimit,
		HealthLimit:      httpx.PublicLimit,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Recover(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerTwoFactor()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Two-Factor Authentication Service API
//	@version		0.1.0
//	@description	TOTP based two-factor authentication with single-use backup codes.
//	@description
//	@description				Callers authenticate with a JWT access token issued by the identity provider.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/twofactor
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

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{Service: r.TwoFactorService}

	secured := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limit),
		)
	}

	// verify is the only endpoint that accepts guesses, so it gets the
	// strict per-user limit.
	r.Mux.Handle("POST /v1/2fa/verify", secured(h.HandleVerify, r.VerifyLimit))

	r.Mux.Handle("POST /v1/2fa/enable", secured(h.HandleEnable, r.AccountLimit))
	r.Mux.Handle("POST /v1/2fa/disable", secured(h.HandleDisable, r.AccountLimit))
	r.Mux.Handle("POST /v1/2fa/backup-codes", secured(h.HandleRegenerateBackupCodes, r.AccountLimit))
	r.Mux.Handle("GET /v1/2fa/status", secured(h.HandleStatus, r.AccountLimit))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.HealthLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.HealthLimit),
		),
	)
}
