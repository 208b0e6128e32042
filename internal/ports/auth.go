package ports

// Package ports defines interfaces (hexagonal ports) for auth and gateway behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"errors"
	"net/http"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
)

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes an authentication flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper maps identity attributes and provider groups to a marketplace role.
type RoleMapper interface {
	Map(attributes map[string]string, groups []string) domainauth.Role
}

// ErrUnauthenticated is the definitive "no current user" answer from a SessionProvider.
// Any other error from a provider is a provider failure.
var ErrUnauthenticated = errors.New("unauthenticated")

// SessionProvider resolves the caller's current session.
type SessionProvider interface {
	CurrentSession(ctx context.Context, sessionID string) (domainauth.Session, error)
}

// VerificationLookup fetches a buyer's verification state from the server-side source of truth.
// The cookies identify the caller to that service and are never interpreted locally.
type VerificationLookup interface {
	Lookup(ctx context.Context, cookies []*http.Cookie) (domainauth.Verification, error)
}

// VerificationRepository stores verification state per user.
type VerificationRepository interface {
	Get(ctx context.Context, userID string) (domainauth.Verification, error)
	Upsert(ctx context.Context, userID string, v domainauth.Verification) error
}

// AccessRecord is one row of the access audit trail.
type AccessRecord struct {
	UserID    string
	Role      domainauth.Role
	Event     string
	SessionID string
}

// AccessRecorder appends to the access audit trail.
type AccessRecorder interface {
	Record(ctx context.Context, rec AccessRecord) error
}
