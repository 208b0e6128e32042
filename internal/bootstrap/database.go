package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	// Register the pgx driver for database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/target/marketplace-gateway/config"
	"github.com/target/marketplace-gateway/internal/migrate"
)

const (
	dbMaxOpenConns    = 25
	dbMaxIdleConns    = 5
	dbConnMaxLifetime = 5 * time.Minute
	connectTimeout    = 5 * time.Second
)

// DatabaseConfig contains configuration for database connections.
type DatabaseConfig struct {
	DBConfig    config.DBConfig
	RedisConfig config.RedisConfig
	Logger      *slog.Logger
}

// postgresDSN builds the pgx URL form so credentials with reserved characters survive.
func postgresDSN(cfg config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	q := u.Query()
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConnectDB opens the Postgres pool backing verification records, access details and
// guarded queries, and pings it before returning.
func ConnectDB(ctx context.Context, cfg DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", postgresDSN(cfg.DBConfig))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetMaxIdleConns(dbMaxIdleConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database connection: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "database connected",
			"host", cfg.DBConfig.Host,
			"port", cfg.DBConfig.Port,
			"database", cfg.DBConfig.Name)
	}
	return db, nil
}

type redisMode string

const (
	redisDirect   redisMode = "direct"
	redisSentinel redisMode = "sentinel"
	redisCluster  redisMode = "cluster"
)

// redisOptions resolves the session store topology. Cluster wins over sentinel; a cluster
// without explicit nodes seeds from REDIS_URI.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, redisMode, error) {
	switch {
	case cfg.UseCluster:
		opts := &redis.UniversalOptions{Addrs: trimmedNonEmpty(cfg.ClusterNodes), Password: cfg.Password}
		if len(opts.Addrs) == 0 {
			seed, err := directOptions(cfg)
			if err != nil {
				return nil, "", fmt.Errorf("redis cluster configuration requires at least one address: %w", err)
			}
			opts.Addrs = seed.Addrs
			opts.Username = seed.Username
			opts.Password = seed.Password
			opts.TLSConfig = seed.TLSConfig
		}
		return opts, redisCluster, nil
	case cfg.UseSentinel:
		nodes := trimmedNonEmpty(cfg.SentinelNodes)
		if len(nodes) == 0 {
			return nil, "", errors.New("redis sentinel configuration requires at least one sentinel node")
		}
		return &redis.UniversalOptions{
			Addrs:            nodes,
			MasterName:       cfg.SentinelMasterName,
			Password:         cfg.Password,
			SentinelPassword: cfg.SentinelPassword,
		}, redisSentinel, nil
	default:
		opts, err := directOptions(cfg)
		return opts, redisDirect, err
	}
}

// directOptions accepts either a redis:// (rediss://) URL or a bare host:port.
func directOptions(cfg config.RedisConfig) (*redis.UniversalOptions, error) {
	uri := strings.TrimSpace(cfg.URI)
	if uri == "" {
		return nil, errors.New("redis URI is required")
	}
	if !strings.HasPrefix(uri, "redis://") && !strings.HasPrefix(uri, "rediss://") {
		return &redis.UniversalOptions{Addrs: []string{uri}, Password: cfg.Password}, nil
	}

	parsed, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	password := parsed.Password
	if password == "" {
		password = cfg.Password
	}
	return &redis.UniversalOptions{
		Addrs:     []string{parsed.Addr},
		Username:  parsed.Username,
		Password:  password,
		DB:        parsed.DB,
		TLSConfig: parsed.TLSConfig,
	}, nil
}

// ConnectRedis connects the session store client and pings it before returning.
//
//nolint:ireturn // returning redis.UniversalClient lets us pick single, sentinel, or cluster clients at runtime.
func ConnectRedis(ctx context.Context, cfg DatabaseConfig) (redis.UniversalClient, error) {
	opts, mode, err := redisOptions(cfg.RedisConfig)
	if err != nil {
		return nil, err
	}

	var client redis.UniversalClient
	switch mode {
	case redisCluster:
		client = redis.NewClusterClient(opts.Cluster())
	case redisSentinel:
		client = redis.NewFailoverClient(opts.Failover())
	default:
		client = redis.NewClient(opts.Simple())
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis (%s): %w", mode, pingErr)
	}

	if cfg.Logger != nil {
		// Addresses only; credentials live in opts, never in Addrs.
		cfg.Logger.InfoContext(ctx, "redis connected",
			"mode", string(mode),
			"addrs", strings.Join(opts.Addrs, ","),
			"master", opts.MasterName)
	}
	return client, nil
}

func trimmedNonEmpty(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if err := migrate.Run(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed")
	}
	return nil
}
