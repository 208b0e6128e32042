package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/target/marketplace-gateway/config"
	redisadapter "github.com/target/marketplace-gateway/internal/adapters/redis"
	"github.com/target/marketplace-gateway/internal/adapters/verification"
	"github.com/target/marketplace-gateway/internal/data"
	"github.com/target/marketplace-gateway/internal/domain/queryguard"
	httpx "github.com/target/marketplace-gateway/internal/http"
	"github.com/target/marketplace-gateway/internal/observability/metrics"
	"github.com/target/marketplace-gateway/internal/observability/statsd"
	"github.com/target/marketplace-gateway/internal/ports"
	"github.com/target/marketplace-gateway/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth          *service.AuthService
	Sessions      *service.SessionValidator
	Gateway       *service.Gateway
	Verification  *service.VerificationService
	Query         *service.QueryService
	Readiness     []httpx.ReadinessCheck
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	Registry      *prometheus.Registry
	Metrics       *metrics.GatewayMetrics
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// Close releases the StatsD connection.
func (o ObservabilityContainer) Close() error {
	return o.MetricsSink.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB               // Optional; without it verification state and queries are unavailable
	RedisClient redis.UniversalClient // Session store backend
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Sessions     *redisadapter.SessionStore
	Verification ports.VerificationRepository
	Access       ports.AccessRecorder
	Rows         ports.RowQuerier
}

func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) (ObservabilityContainer, error) {
	obs := ObservabilityContainer{MetricsConfig: cfg.Metrics}

	sink, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.Metrics.IsEnabled(),
		Address: cfg.Metrics.StatsdAddress,
		Prefix:  cfg.Metrics.StatsdPrefix,
		Logger:  logger,
	})
	if err != nil {
		// Metrics must never block startup.
		logger.Warn("statsd sink disabled", "error", err)
		sink, _ = statsd.NewClient(statsd.Config{Logger: logger})
	}
	obs.MetricsSink = sink

	var mirror statsd.Sink
	if sink.Enabled() {
		logger.Info("statsd metrics enabled", "address", cfg.Metrics.StatsdAddress, "prefix", cfg.Metrics.StatsdPrefix)
		mirror = sink
	}

	reg := prometheus.NewRegistry()
	if cfg.Metrics.PrometheusEnabled {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		obs.Registry = reg
	}

	m, err := metrics.NewGatewayMetrics(reg, mirror)
	if err != nil {
		return obs, fmt.Errorf("register gateway metrics: %w", err)
	}
	obs.Metrics = m
	return obs, nil
}

func buildRepositories(cfg *config.AppConfig, db *sql.DB, client redis.UniversalClient) *serviceRepositories {
	repos := &serviceRepositories{
		Sessions: redisadapter.NewSessionStoreWithPrefix(client, cfg.Redis.SessionPrefix),
	}
	if db != nil {
		repos.Verification = data.NewVerificationRepo(db)
		repos.Access = data.NewAccessLogRepo(db)
		repos.Rows = data.NewQueryRepo(db)
	}
	return repos
}

func readinessChecks(db *sql.DB, client redis.UniversalClient) []httpx.ReadinessCheck {
	checks := []httpx.ReadinessCheck{{
		Name:  "redis",
		Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}}
	if db != nil {
		checks = append(checks, httpx.ReadinessCheck{Name: "postgres", Check: db.PingContext})
	}
	return checks
}

func newVerificationLookup(cfg config.VerificationConfig) (*verification.Client, error) {
	client, err := verification.NewClient(verification.Options{
		URL:        cfg.StatusURL(),
		Timeout:    cfg.Timeout,
		StatusExpr: cfg.StatusExpr,
		LockedExpr: cfg.LockedExpr,
	})
	if err != nil {
		return nil, fmt.Errorf("create verification client: %w", err)
	}
	return client, nil
}

func newQueryService(cfg config.QueryConfig, rows ports.RowQuerier, m metrics.Recorder, logger *slog.Logger) *service.QueryService {
	if rows == nil {
		return nil
	}
	return service.NewQueryService(service.QueryServiceOptions{
		Guard: queryguard.New(queryguard.Options{
			Restricted:  cfg.RestrictedFields,
			ReadMarkers: cfg.ReadMarkers,
		}),
		Rows:     rows,
		Models:   cfg.Models,
		MaxLimit: cfg.MaxLimit,
		Timeout:  cfg.Timeout,
		Metrics:  m,
		Logger:   logger,
	})
}

// NewServices wires every service the gateway runs.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service dependencies are required")
	}
	if deps.RedisClient == nil {
		return ServiceContainer{}, errors.New("redis client is required for the session store")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	obs, err := buildObservability(logger, cfg.Observability)
	if err != nil {
		return ServiceContainer{}, err
	}
	repos := buildRepositories(cfg, deps.DB, deps.RedisClient)

	authSvc, err := BuildAuthService(ctx, AuthConfig{
		Auth:     cfg.Auth,
		Sessions: repos.Sessions,
		Access:   repos.Access,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, errors.Join(err, obs.Close())
	}

	lookup, err := newVerificationLookup(cfg.Verification)
	if err != nil {
		return ServiceContainer{}, errors.Join(err, obs.Close())
	}

	validator := service.NewSessionValidator(service.SessionValidatorOptions{
		Provider: repos.Sessions,
		Roles:    RoleMapper(cfg.Auth),
		Timeout:  cfg.Gateway.SessionTimeout,
		Logger:   logger,
	})

	container := ServiceContainer{
		Auth:     authSvc,
		Sessions: validator,
		Gateway: service.NewGateway(service.GatewayOptions{
			Routes:       cfg.Gateway.RouteTable(),
			Policy:       cfg.Gateway.Policy(),
			Sessions:     validator,
			Verification: lookup,
			Metrics:      obs.Metrics,
			Logger:       logger,
		}),
		Query:         newQueryService(cfg.Query, repos.Rows, obs.Metrics, logger),
		Readiness:     readinessChecks(deps.DB, deps.RedisClient),
		Observability: obs,
	}
	if repos.Verification != nil {
		container.Verification = service.NewVerificationService(service.VerificationServiceOptions{
			Repo:   repos.Verification,
			Logger: logger,
		})
	} else {
		logger.WarnContext(ctx, "no database configured; buyers will be treated as pending verification")
	}

	return container, nil
}
