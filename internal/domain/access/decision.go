package access

import (
	"context"
	"net/url"
	"strings"

	"github.com/target/marketplace-gateway/internal/domain/auth"
)

// DecisionKind enumerates the gateway outcomes.
type DecisionKind int

const (
	Allow DecisionKind = iota
	RedirectLogin
	RedirectRoleHome
	RedirectPendingVerification
	RedirectAccountLocked
)

func (k DecisionKind) String() string {
	switch k {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectRoleHome:
		return "redirect_role_home"
	case RedirectPendingVerification:
		return "redirect_pending_verification"
	case RedirectAccountLocked:
		return "redirect_account_locked"
	default:
		return "unknown"
	}
}

// Well-known redirect targets.
const (
	LoginPath               = "/auth/login"
	PendingVerificationPath = "/buyer/pending-verification"
	AccountLockedPath       = "/buyer/account-locked"
	BuyerHomePath           = "/buyer/dashboard"
	SellerHomePath          = "/seller/dashboard"
)

// Decision is the sole output of the engine. Role is set only for RedirectRoleHome.
type Decision struct {
	Kind DecisionKind
	Role auth.Role
}

func (d Decision) String() string { return d.Kind.String() }

// Allowed reports whether the request may continue.
func (d Decision) Allowed() bool { return d.Kind == Allow }

// Location returns the redirect target for d given the requested path, or "" for Allow.
func (d Decision) Location(requestPath string) string {
	switch d.Kind {
	case RedirectLogin:
		return LoginURL(requestPath)
	case RedirectRoleHome:
		return RoleHome(d.Role)
	case RedirectPendingVerification:
		return PendingVerificationPath
	case RedirectAccountLocked:
		return AccountLockedPath
	default:
		return ""
	}
}

// LoginURL builds the login redirect carrying the requested path. Slashes stay unescaped
// since they are legal in a query component.
func LoginURL(requestPath string) string {
	if requestPath == "" {
		return LoginPath
	}
	v := strings.ReplaceAll(url.QueryEscape(requestPath), "%2F", "/")
	return LoginPath + "?redirect=" + v
}

// RoleHome returns the landing page for role, falling back to the login page.
func RoleHome(role auth.Role) string {
	switch role {
	case auth.RoleBuyer:
		return BuyerHomePath
	case auth.RoleSeller:
		return SellerHomePath
	default:
		return LoginPath
	}
}

// DecisionInput carries everything the engine needs besides the verification lookup.
type DecisionInput struct {
	Path      string
	Class     RouteClass
	Principal auth.Principal
}

// VerificationLookup fetches the caller's server-held verification state. It must never be
// answered from client-supplied state.
type VerificationLookup func(ctx context.Context) (auth.Verification, error)

// Policy holds the engine's static configuration.
type Policy struct {
	// VerificationBypass lists buyer paths reachable without a verification lookup.
	VerificationBypass []string
}

// DefaultPolicy exempts the pending and locked pages so redirects to them terminate.
func DefaultPolicy() Policy {
	return Policy{VerificationBypass: []string{PendingVerificationPath, AccountLockedPath}}
}

func (p Policy) bypassesVerification(path string) bool {
	for _, b := range p.VerificationBypass {
		if path == b || strings.HasPrefix(path, strings.TrimSuffix(b, "/")+"/") {
			return true
		}
	}
	return false
}

// Decide runs the access state machine. A nil lookup, a failing lookup or an unparseable
// status all resolve to RedirectPendingVerification for buyers.
func (p Policy) Decide(ctx context.Context, in DecisionInput, lookup VerificationLookup) Decision {
	if !in.Class.Protected() {
		return Decision{Kind: Allow}
	}
	if !in.Principal.Authenticated {
		return Decision{Kind: RedirectLogin}
	}
	role := in.Principal.Role
	if !role.Valid() {
		return Decision{Kind: RedirectLogin}
	}

	required := auth.RoleBuyer
	if in.Class == RouteSellerProtected {
		required = auth.RoleSeller
	}
	if role != required {
		// Only a known role gets its own home; the valid check above guarantees it here.
		return Decision{Kind: RedirectRoleHome, Role: role}
	}
	if role != auth.RoleBuyer {
		return Decision{Kind: Allow}
	}

	if p.bypassesVerification(in.Path) {
		return Decision{Kind: Allow}
	}
	if lookup == nil {
		return Decision{Kind: RedirectPendingVerification}
	}
	v, err := lookup(ctx)
	if err != nil || !v.Status.Valid() {
		return Decision{Kind: RedirectPendingVerification}
	}
	if v.AccountLocked {
		return Decision{Kind: RedirectAccountLocked}
	}
	if v.Status == auth.VerificationVerified {
		return Decision{Kind: Allow}
	}
	return Decision{Kind: RedirectPendingVerification}
}
