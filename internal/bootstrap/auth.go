package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/marketplace-gateway/config"
	"github.com/target/marketplace-gateway/internal/adapters/authroles"
	"github.com/target/marketplace-gateway/internal/adapters/devauth"
	"github.com/target/marketplace-gateway/internal/adapters/oidc"
	"github.com/target/marketplace-gateway/internal/ports"
	"github.com/target/marketplace-gateway/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth     config.AuthConfig
	Sessions ports.SessionStore
	Access   ports.AccessRecorder // Optional
	Logger   *slog.Logger
}

// RoleMapper builds the role mapper shared by login and per-request validation.
func RoleMapper(cfg config.AuthConfig) authroles.StaticRoleMapper {
	return authroles.StaticRoleMapper{
		Attribute:   cfg.RoleAttribute,
		BuyerGroup:  cfg.BuyerGroup,
		SellerGroup: cfg.SellerGroup,
	}
}

// BuildAuthService creates an auth service based on the configured auth mode.
// The gateway cannot run without one, so misconfiguration is an error.
func BuildAuthService(ctx context.Context, cfg AuthConfig) (*service.AuthService, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("auth: session store is required")
	}

	var (
		prov ports.AuthProvider
		err  error
	)
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err = buildDevAuthProvider(cfg.Auth.DevAuth)
	case config.AuthModeOAuth:
		prov, err = buildOAuthProvider(ctx, cfg.Auth.OAuth)
	default:
		err = fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Logger != nil {
		cfg.Logger.InfoContext(ctx, "auth service configured", "mode", cfg.Auth.Mode)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: prov,
		Sessions: cfg.Sessions,
		Roles:    RoleMapper(cfg.Auth),
		Access:   cfg.Access,
		Logger:   cfg.Logger,
	}), nil
}

//nolint:ireturn // callers only need the provider port.
func buildDevAuthProvider(dev config.DevAuthConfig) (ports.AuthProvider, error) {
	prov, err := devauth.NewProvider(devauth.Config{
		UserID:          dev.UserID,
		Username:        dev.Username,
		Email:           dev.Email,
		Groups:          dev.Groups,
		Attributes:      dev.Attributes,
		SessionDuration: dev.SessionDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("create dev auth provider: %w", err)
	}
	return prov, nil
}

//nolint:ireturn // callers only need the provider port.
func buildOAuthProvider(ctx context.Context, oauth config.OAuthConfig) (ports.AuthProvider, error) {
	if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
		return nil, fmt.Errorf("oauth mode requires OAUTH_DISCOVERY_URL, OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET (discovery_url_empty=%t client_id_empty=%t client_secret_empty=%t)",
			oauth.DiscoveryURL == "", oauth.ClientID == "", oauth.ClientSecret == "")
	}

	prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
		ClientID:     oauth.ClientID,
		ClientSecret: oauth.ClientSecret,
		RedirectURL:  oauth.RedirectURL,
		Scope:        oauth.Scope,
		DiscoveryURL: oauth.DiscoveryURL,
		LogoutURL:    oauth.LogoutURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create OIDC provider: %w", err)
	}
	return prov, nil
}
