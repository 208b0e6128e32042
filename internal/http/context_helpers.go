package httpx

import (
	"context"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
)

type sessionKey struct{}

// WithSession returns a child context carrying the session resolved by RequireSession.
// A nil session leaves ctx unchanged.
func WithSession(ctx context.Context, session *domainauth.Session) context.Context {
	if session == nil {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session stored by WithSession.
func SessionFromContext(ctx context.Context) (*domainauth.Session, bool) {
	if session, ok := ctx.Value(sessionKey{}).(*domainauth.Session); ok && session != nil {
		return session, true
	}
	return nil, false
}

// PrincipalFromContext projects the stored session onto a principal, or Anonymous.
func PrincipalFromContext(ctx context.Context) domainauth.Principal {
	if s, ok := SessionFromContext(ctx); ok {
		return domainauth.PrincipalFromSession(*s)
	}
	return domainauth.Anonymous
}
