package httpx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
)

func TestSessionFromContext(t *testing.T) {
	s, ok := SessionFromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, s)

	_, ok = SessionFromContext(WithSession(context.Background(), nil))
	assert.False(t, ok)

	sess := &domainauth.Session{ID: "abc", UserID: "u1", Role: domainauth.RoleBuyer}
	s, ok = SessionFromContext(WithSession(context.Background(), sess))
	assert.True(t, ok)
	assert.Equal(t, sess, s)
}

func TestPrincipalFromContext(t *testing.T) {
	assert.Equal(t, domainauth.Anonymous, PrincipalFromContext(context.Background()))

	sess := &domainauth.Session{ID: "abc", UserID: "u1", Username: "sam", Role: domainauth.RoleSeller}
	p := PrincipalFromContext(WithSession(context.Background(), sess))
	assert.True(t, p.Authenticated)
	assert.Equal(t, domainauth.RoleSeller, p.Role)
	assert.Equal(t, domainauth.PrincipalFromSession(*sess), p)
}
