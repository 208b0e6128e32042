package httpx

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/target/marketplace-gateway/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Gateway      *service.Gateway
	Auth         AuthServiceInterface
	Verification VerificationStatusService
	Query        QueryRunner
	// Upstream receives requests the gateway allows that no local route serves.
	Upstream http.Handler
	// Gatherer backs /metrics. Optional.
	Gatherer prometheus.Gatherer
	// Readiness lists the dependency probes behind /healthz/ready.
	Readiness    []ReadinessCheck
	CookieDomain string
	Compression  *CompressionConfig // Optional
	Logger       *slog.Logger       // Optional
}

// NewRouter builds the gateway's HTTP handler: recovery, request logging and the access
// gateway wrap every route, including the upstream catch-all.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /healthz/ready", readinessHandler(services.Readiness, logger))
	if services.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(services.Gatherer, promhttp.HandlerOpts{}))
	}

	api := func(h http.Handler) http.Handler {
		if services.Compression == nil {
			return h
		}
		return Compression(*services.Compression)(h)
	}

	if services.Auth != nil {
		authHandlers := &AuthHandlers{Svc: services.Auth, CookieDomain: services.CookieDomain, Logger: logger}
		registerAuthRoutes(mux, authHandlers, api)

		requireSession := RequireSession(services.Auth)
		if services.Verification != nil {
			vh := &VerificationHandlers{Svc: services.Verification, Logger: logger}
			mux.Handle("GET /api/auth/verification-status", api(requireSession(http.HandlerFunc(vh.Status))))
		}
		if services.Query != nil {
			qh := &QueryHandlers{Svc: services.Query, Logger: logger}
			mux.Handle("POST /api/query/{model}", api(requireSession(http.HandlerFunc(qh.Run))))
		}
	}

	upstream := services.Upstream
	if upstream == nil {
		upstream = http.HandlerFunc(passThrough)
	}
	mux.Handle("/", upstream)

	var handler http.Handler = mux
	if services.Gateway != nil {
		handler = GatewayMiddleware(services.Gateway)(handler)
	}
	handler = Logging(logger)(handler)
	return Recover(logger)(handler)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, wrap func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /auth/login", h.Login)
	mux.HandleFunc("GET /auth/callback", h.Callback)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/logout", h.Logout)
	mux.Handle("GET /api/auth/me", wrap(http.HandlerFunc(h.Me)))
}
