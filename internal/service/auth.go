package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/ports"
)

// Access audit events written on login and logout.
const (
	AccessEventLogin  = "login"
	AccessEventLogout = "logout"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Roles    ports.RoleMapper
	Access   ports.AccessRecorder // Optional
	Logger   *slog.Logger         // Optional
}

// AuthService orchestrates login by coordinating the provider, role mapping, session
// persistence and the access audit trail.
type AuthService struct {
	provider ports.AuthProvider
	sessions ports.SessionStore
	roles    ports.RoleMapper
	access   ports.AccessRecorder
	logger   *slog.Logger
	now      func() time.Time
}

var errSessionExpired = errors.New("session expired")

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		provider: opts.Provider,
		sessions: opts.Sessions,
		roles:    opts.Roles,
		access:   opts.Access,
		logger:   logger.With("component", "auth_service"),
		now:      time.Now,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	authURL, state, nonce, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: redirectURL})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{AuthURL: authURL, State: state, Nonce: nonce}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
}

// CompleteLogin exchanges the code for an identity, maps the marketplace role and persists a
// session. A login without a recognised role still gets a session; the gateway sends such
// callers back to login on protected routes.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	identity, err := s.provider.Exchange(ctx, ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	role := s.roles.Map(identity.Attributes, identity.Groups)

	session := domainauth.Session{
		ID:         generateSessionID(),
		UserID:     identity.UserID,
		Username:   identity.Username,
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		Email:      identity.Email,
		Role:       role,
		Groups:     identity.Groups,
		Attributes: identity.Attributes,
		ExpiresAt:  identity.ExpiresAt,
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	if !role.Valid() {
		s.logger.WarnContext(ctx, "login without marketplace role", "user_id", identity.UserID)
	}
	s.record(ctx, session, AccessEventLogin)

	return &CompleteLoginResult{Session: session}, nil
}

// GetSession retrieves a session by ID.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if s.now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(errSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, errSessionExpired
	}

	return &session, nil
}

// Logout removes a session and records the logout when the session was still known.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	session, getErr := s.sessions.Get(ctx, sessionID)

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if getErr == nil {
		s.record(ctx, session, AccessEventLogout)
	}
	return nil
}

// record appends to the audit trail. Failures are logged and never fail the login.
func (s *AuthService) record(ctx context.Context, session domainauth.Session, event string) {
	if s.access == nil {
		return
	}
	err := s.access.Record(ctx, ports.AccessRecord{
		UserID:    session.UserID,
		Role:      session.Role,
		Event:     event,
		SessionID: session.ID,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "record access event failed", "event", event, "user_id", session.UserID, "error", err)
	}
}

// generateSessionID creates a random, URL-safe session ID.
func generateSessionID() string {
	return uuid.NewString()
}
