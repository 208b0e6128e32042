package auth

// Package auth contains domain-level types for authentication, sessions and buyer verification.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents a marketplace authorization role.
// Keep string form for easy persistence in the session store.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	// RoleNone is the zero value; an authenticated identity without a role is an error state
	// for protected routes.
	RoleNone Role = ""
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool { return r == RoleBuyer || r == RoleSeller }

// ParseRole maps a role attribute value to a Role, ignoring case and surrounding space.
// Unknown values map to RoleNone.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleBuyer:
		return RoleBuyer
	case RoleSeller:
		return RoleSeller
	default:
		return RoleNone
	}
}

// Identity represents the authenticated principal returned by an IdP.
// Adapters map provider-specific claims into this shape.
type Identity struct {
	UserID     string // stable user identifier (sub)
	Username   string
	FirstName  string
	LastName   string
	Email      string
	Groups     []string
	Attributes map[string]string // flattened string claims, e.g. custom:role
	ExpiresAt  time.Time         // absolute expiry from IdP token
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (random URL-safe string).
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	// Groups and Attributes are the IdP claims captured at login; the gateway re-derives
	// the role from them on every request.
	Groups     []string          `json:"groups,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	ExpiresAt  time.Time         `json:"expires_at"`
}

// HasRole returns true if the session carries one of the known roles.
func (s Session) HasRole() bool { return s.Role.Valid() }

// Principal is the per-request view of the caller produced by session validation.
// It is never cached across requests.
type Principal struct {
	Authenticated bool
	Username      string
	Role          Role
}

// Anonymous is the principal for requests without a usable session.
var Anonymous = Principal{}

// PrincipalFromSession projects a stored session onto a request principal.
func PrincipalFromSession(s Session) Principal {
	username := s.Username
	if username == "" {
		username = s.UserID
	}
	return Principal{Authenticated: true, Username: username, Role: s.Role}
}
