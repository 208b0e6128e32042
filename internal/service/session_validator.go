package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/ports"
)

// SessionCookieName is the cookie carrying the opaque session ID.
const SessionCookieName = "session_id"

// SessionOutcome distinguishes why a request is or is not authenticated.
type SessionOutcome string

const (
	OutcomeAuthenticated   SessionOutcome = "authenticated"
	OutcomeUnauthenticated SessionOutcome = "unauthenticated"
	OutcomeProviderFailure SessionOutcome = "provider_failure"
)

// SessionValidatorOptions groups dependencies for SessionValidator.
type SessionValidatorOptions struct {
	Provider   ports.SessionProvider
	Roles      ports.RoleMapper // Optional; re-derives the role from session attributes
	CookieName string           // Defaults to SessionCookieName
	Timeout    time.Duration    // Defaults to 2s
	Logger     *slog.Logger
}

// SessionValidator turns request cookies into a per-request principal.
type SessionValidator struct {
	provider   ports.SessionProvider
	roles      ports.RoleMapper
	cookieName string
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewSessionValidator constructs a SessionValidator.
func NewSessionValidator(opts SessionValidatorOptions) *SessionValidator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cookie := opts.CookieName
	if cookie == "" {
		cookie = SessionCookieName
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &SessionValidator{
		provider:   opts.Provider,
		roles:      opts.Roles,
		cookieName: cookie,
		timeout:    timeout,
		logger:     logger.With("component", "session_validator"),
		now:        time.Now,
	}
}

// Validate resolves the caller. Only OutcomeAuthenticated yields an authenticated principal;
// provider failures are logged and otherwise treated exactly like a missing session.
func (v *SessionValidator) Validate(ctx context.Context, cookies []*http.Cookie) (domainauth.Principal, SessionOutcome) {
	sessionID := sessionIDFrom(cookies, v.cookieName)
	if sessionID == "" {
		return domainauth.Anonymous, OutcomeUnauthenticated
	}
	if v.provider == nil {
		v.logger.ErrorContext(ctx, "no session provider configured")
		return domainauth.Anonymous, OutcomeProviderFailure
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	sess, err := v.provider.CurrentSession(ctx, sessionID)
	switch {
	case errors.Is(err, ports.ErrUnauthenticated):
		return domainauth.Anonymous, OutcomeUnauthenticated
	case err != nil:
		v.logger.WarnContext(ctx, "session lookup failed", "error", err)
		return domainauth.Anonymous, OutcomeProviderFailure
	}
	if !sess.ExpiresAt.IsZero() && v.now().After(sess.ExpiresAt) {
		return domainauth.Anonymous, OutcomeUnauthenticated
	}

	if v.roles != nil && (len(sess.Attributes) > 0 || len(sess.Groups) > 0) {
		if role := v.roles.Map(sess.Attributes, sess.Groups); role.Valid() {
			sess.Role = role
		}
	}
	return domainauth.PrincipalFromSession(sess), OutcomeAuthenticated
}

func sessionIDFrom(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c != nil && c.Name == name && c.Value != "" {
			return c.Value
		}
	}
	return ""
}
