package devauth

// Package devauth provides a config-driven AuthProvider for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"maps"
	"net/url"
	"sync"
	"time"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/ports"
)

// Config controls the dev auth provider behavior.
// UserID is required. Attributes typically carries the role claim, e.g. custom:role=buyer.
type Config struct {
	UserID          string
	Username        string
	Email           string
	Groups          []string
	Attributes      map[string]string
	SessionDuration time.Duration // default 8h when zero
}

// Provider implements ports.AuthProvider for local development.
// Begin redirects straight back to our own callback with locally generated state,
// and Exchange ignores the code and returns the configured identity.
type Provider struct {
	mu              sync.Mutex
	identity        domainauth.Identity
	sessionDuration time.Duration
	now             func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	dur := cfg.SessionDuration
	if dur <= 0 {
		dur = 8 * time.Hour
	}
	username := cfg.Username
	if username == "" {
		username = cfg.UserID
	}
	return &Provider{
		identity: domainauth.Identity{
			UserID:     cfg.UserID,
			Username:   username,
			Email:      cfg.Email,
			Groups:     append([]string(nil), cfg.Groups...),
			Attributes: maps.Clone(cfg.Attributes),
			ExpiresAt:  time.Now().Add(dur),
		},
		sessionDuration: dur,
		now:             time.Now,
	}, nil
}

// Begin returns a local callback URL and cryptographically secure state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	authURL := "/auth/callback?code=dev&state=" + url.QueryEscape(state)
	return authURL, state, nonce, nil
}

// Exchange returns the dev identity. State and nonce are checked by the handler.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.identity.ExpiresAt.Sub(p.now()) < 5*time.Minute {
		p.identity.ExpiresAt = p.now().Add(p.sessionDuration)
	}
	id := p.identity
	id.Groups = append([]string(nil), p.identity.Groups...)
	id.Attributes = maps.Clone(p.identity.Attributes)
	return id, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
