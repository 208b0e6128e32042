package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/target/marketplace-gateway/internal/domain/access"
)

// GatewayConfig controls route classification and session validation.
type GatewayConfig struct {
	PublicPrefixes     []string      `env:"GATEWAY_PUBLIC_PREFIXES"     envDefault:"/_next,/static,/assets,/favicon.ico,/api,/healthz,/metrics"`
	ExemptPrefixes     []string      `env:"GATEWAY_EXEMPT_PREFIXES"     envDefault:"/auth"`
	BuyerPrefixes      []string      `env:"GATEWAY_BUYER_PREFIXES"      envDefault:"/buyer,/marketplace,/search,/collections"`
	SellerPrefixes     []string      `env:"GATEWAY_SELLER_PREFIXES"     envDefault:"/seller"`
	VerificationBypass []string      `env:"GATEWAY_VERIFICATION_BYPASS" envDefault:"/buyer/pending-verification,/buyer/account-locked"`
	SessionTimeout     time.Duration `env:"GATEWAY_SESSION_TIMEOUT"     envDefault:"2s"`
}

// Sanitize trims prefixes and drops empty ones.
func (g *GatewayConfig) Sanitize() {
	g.PublicPrefixes = cleanPrefixes(g.PublicPrefixes)
	g.ExemptPrefixes = cleanPrefixes(g.ExemptPrefixes)
	g.BuyerPrefixes = cleanPrefixes(g.BuyerPrefixes)
	g.SellerPrefixes = cleanPrefixes(g.SellerPrefixes)
	g.VerificationBypass = cleanPrefixes(g.VerificationBypass)
	if g.SessionTimeout <= 0 {
		g.SessionTimeout = 2 * time.Second
	}
}

// RouteTable builds the immutable classification table.
func (g GatewayConfig) RouteTable() access.RouteTable {
	return access.BuildRouteTable(access.RouteTableOptions{
		Public: g.PublicPrefixes,
		Exempt: g.ExemptPrefixes,
		Buyer:  g.BuyerPrefixes,
		Seller: g.SellerPrefixes,
	})
}

// Policy builds the decision policy.
func (g GatewayConfig) Policy() access.Policy {
	bypass := make([]string, len(g.VerificationBypass))
	copy(bypass, g.VerificationBypass)
	return access.Policy{VerificationBypass: bypass}
}

func cleanPrefixes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, p)
	}
	return out
}

// VerificationStatusPath is where the verification endpoint is served.
const VerificationStatusPath = "/api/auth/verification-status"

// VerificationConfig configures the verification-status lookup the gateway performs for buyers.
type VerificationConfig struct {
	// BaseURL is the origin serving VerificationStatusPath. Defaults to APP_BASE_URL.
	BaseURL string        `env:"BASE_URL"`
	Timeout time.Duration `env:"TIMEOUT"     envDefault:"2s"`
	// StatusExpr and LockedExpr are JMESPath expressions evaluated against the response body.
	StatusExpr string `env:"STATUS_EXPR" envDefault:"verificationStatus"`
	LockedExpr string `env:"LOCKED_EXPR" envDefault:"accountLocked"`
}

// Sanitize fills defaults.
func (v *VerificationConfig) Sanitize(appBaseURL string) {
	v.BaseURL = strings.TrimRight(strings.TrimSpace(v.BaseURL), "/")
	if v.BaseURL == "" {
		v.BaseURL = appBaseURL
	}
	if v.Timeout <= 0 {
		v.Timeout = 2 * time.Second
	}
	if strings.TrimSpace(v.StatusExpr) == "" {
		v.StatusExpr = "verificationStatus"
	}
	if strings.TrimSpace(v.LockedExpr) == "" {
		v.LockedExpr = "accountLocked"
	}
}

// Validate requires an absolute URL, and https outside development.
func (v VerificationConfig) Validate(isDev bool) error {
	if v.BaseURL == "" {
		return errors.New("VERIFICATION_BASE_URL is required")
	}
	u, err := url.Parse(v.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("VERIFICATION_BASE_URL %q is not an absolute URL", v.BaseURL)
	}
	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if isDev {
			return nil
		}
		return fmt.Errorf("VERIFICATION_BASE_URL must use https outside development, got %q", v.BaseURL)
	default:
		return fmt.Errorf("VERIFICATION_BASE_URL has unsupported scheme %q", u.Scheme)
	}
}

// StatusURL is the full verification-status endpoint.
func (v VerificationConfig) StatusURL() string {
	return v.BaseURL + VerificationStatusPath
}

// QueryConfig controls the guarded dynamic query endpoint.
type QueryConfig struct {
	RestrictedFields []string `env:"RESTRICTED_FIELDS" envDefault:"access_details"`
	ReadMarkers      []string `env:"READ_MARKERS"      envDefault:"find"`
	// Models lists the tables callers may query.
	Models   []string      `env:"MODELS"    envDefault:"listings"`
	MaxLimit int           `env:"MAX_LIMIT" envDefault:"100"`
	Timeout  time.Duration `env:"TIMEOUT"   envDefault:"5s"`
}

// Sanitize normalises names and clamps limits.
func (q *QueryConfig) Sanitize() {
	q.RestrictedFields = lowerTrimmed(q.RestrictedFields)
	q.ReadMarkers = lowerTrimmed(q.ReadMarkers)
	q.Models = lowerTrimmed(q.Models)
	if q.MaxLimit <= 0 || q.MaxLimit > 1000 {
		q.MaxLimit = 100
	}
	if q.Timeout <= 0 {
		q.Timeout = 5 * time.Second
	}
}

func lowerTrimmed(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
