package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/target/marketplace-gateway/config"
	httpx "github.com/target/marketplace-gateway/internal/http"
)

const shutdownTimeout = 10 * time.Second

// HTTPHandlerConfig contains what the gateway handler is assembled from.
type HTTPHandlerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// BuildHTTPHandler assembles the router around the wired services.
func BuildHTTPHandler(cfg HTTPHandlerConfig) (http.Handler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	upstream, err := httpx.NewUpstream(appCfg.HTTP.UpstreamURL, logger)
	if err != nil {
		return nil, fmt.Errorf("configure upstream: %w", err)
	}
	if appCfg.HTTP.UpstreamURL == "" {
		logger.Info("no upstream configured; allowed requests answer with the pass-through handler")
	}

	svcs := cfg.Services
	services := httpx.RouterServices{
		Gateway:      svcs.Gateway,
		Upstream:     upstream,
		Readiness:    svcs.Readiness,
		CookieDomain: appCfg.HTTP.CookieDomain,
		Logger:       logger,
	}
	// Assign only live services so the router never sees typed nils.
	if svcs.Auth != nil {
		services.Auth = svcs.Auth
	}
	if svcs.Verification != nil {
		services.Verification = svcs.Verification
	}
	if svcs.Query != nil {
		services.Query = svcs.Query
	}
	if svcs.Observability.Registry != nil {
		services.Gatherer = svcs.Observability.Registry
	}
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		services.Compression = &httpx.CompressionConfig{Level: appCfg.HTTP.CompressionLevel, Logger: logger}
	}

	return httpx.NewRouter(services), nil
}

func newServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown serves HTTP until SIGINT, SIGTERM, ctx cancellation or a server
// failure, then shuts down gracefully.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handler, err := BuildHTTPHandler(HTTPHandlerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	server := newServer(cfg.Config.HTTP.Addr, handler)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down services...")
		return ShutdownHTTPServer(ShutdownConfig{Server: server, Logger: logger})
	})

	err = g.Wait()
	if cerr := cfg.Services.Observability.Close(); cerr != nil {
		logger.Warn("close statsd sink failed", "error", cerr)
	}
	return err
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Server *http.Server
	Logger *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	// The run context is already done here, so the drain window gets a fresh one.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
