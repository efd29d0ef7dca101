package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/leafmark/leafmark/internal/sync/service"
	"github.com/leafmark/leafmark/internal/sync/store"
	"github.com/leafmark/leafmark/pkg/httpx"
	"github.com/leafmark/leafmark/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store             store.Store
	CredentialService *service.CredentialService
	ProgressService   *service.ProgressService
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerSync()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	registerHandler := &RegisterHandler{CredentialService: r.CredentialService}

	// POST /users/create - strict rate limit by IP (public signup endpoint).
	// No authentication: registration is the one unauthenticated write.
	r.Mux.Handle("POST /users/create",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /users/auth - credential probe, strict rate limit by IP + presented
	// username to slow down brute force against a single account.
	r.Mux.Handle("GET /users/auth",
		httpx.Chain(AuthCheckHandler(),
			httpx.RateLimitByIPAndHeader(httpx.StrictLimit, HeaderAuthUser),
			RequireCredentials(r.CredentialService),
		),
	)
}

func (r *Router) registerSync() {
	h := &ProgressHandler{ProgressService: r.ProgressService}

	// Every sync operation re-proves identity; authentication runs before the
	// per-user rate limiter so the limiter can key on the username.
	securedUpsert := httpx.Chain(http.HandlerFunc(h.HandleUpsert),
		RequireCredentials(r.CredentialService),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	securedFetch := httpx.Chain(http.HandlerFunc(h.HandleFetch),
		RequireCredentials(r.CredentialService),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.Mux.Handle("PUT /syncs/progress", securedUpsert)
	r.Mux.Handle("GET /syncs/progress/{document}", securedFetch)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
