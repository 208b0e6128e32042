package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModeOAuth uses OAuth/OIDC for authentication.
	AuthModeOAuth AuthMode = "oauth"
	// AuthModeMock uses mock/dev authentication (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "oauth", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: oauth, mock)", v)
	}
}

// OAuthConfig contains OAuth/OIDC configuration.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"marketplace"`
	ClientSecret string `env:"CLIENT_SECRET" envDefault:"marketplace"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
	LogoutURL    string `env:"LOGOUT_URL"`
}

// DevAuthConfig controls mock/dev authentication identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	UserID          string            `env:"USER_ID"          envDefault:"dev-buyer"`
	Username        string            `env:"USERNAME"         envDefault:"dev-buyer"`
	Email           string            `env:"EMAIL"            envDefault:"buyer@example.com"`
	Groups          []string          `env:"GROUPS"           envDefault:"buyers"    envSeparator:";"`
	Attributes      map[string]string `env:"ATTRIBUTES"       envDefault:"custom:role=buyer" envKeyValSeparator:"="`
	SessionDuration time.Duration     `env:"SESSION_DURATION" envDefault:"8h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which authentication provider to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"oauth"`

	// OAuth configuration (used when Mode=oauth).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`

	// RoleAttribute is the identity attribute carrying "buyer" or "seller". It wins over groups.
	RoleAttribute string `env:"ROLE_ATTRIBUTE" envDefault:"custom:role"`

	// BuyerGroup and SellerGroup map IdP groups to roles when the attribute is absent.
	BuyerGroup  string `env:"BUYER_GROUP"  envDefault:"buyers"`
	SellerGroup string `env:"SELLER_GROUP" envDefault:"sellers"`
}
