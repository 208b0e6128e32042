package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded once at startup from environment variables using the
// github.com/caarlos0/env library and then passed by pointer; nothing reads the
// environment afterwards. See individual domain config files for details:
//   - auth.go: Authentication and role mapping
//   - gateway.go: Route tables, verification lookup, guarded queries
//   - database.go: Database and session store configuration
//   - http.go: HTTP server configuration
//   - observability.go: Metrics sinks
type AppConfig struct {
	// IsDev controls development mode behavior (plain-http verification lookups, debug logs).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Authentication configuration
	Auth AuthConfig

	// Gateway pipeline configuration
	Gateway      GatewayConfig
	Verification VerificationConfig `envPrefix:"VERIFICATION_"`
	Query        QueryConfig        `envPrefix:"QUERY_"`

	// Database configuration
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// HTTP server configuration
	HTTP HTTPConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.HTTP.Sanitize()
	c.Gateway.Sanitize()
	c.Verification.Sanitize(c.HTTP.BaseURL)
	c.Query.Sanitize()
	c.Observability.Sanitize()
}

// Validate reports configuration that must stop startup.
func (c *AppConfig) Validate() error {
	var errs []error
	if err := c.Verification.Validate(c.IsDev); err != nil {
		errs = append(errs, err)
	}
	if c.Auth.Mode == AuthModeMock && !c.IsDev {
		errs = append(errs, fmt.Errorf("AUTH_MODE=mock requires DEV=true"))
	}
	return errors.Join(errs...)
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
