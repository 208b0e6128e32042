package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/ports"
)

func TestMockAuthProvider_Begin_Defaults(t *testing.T) {
	p := NewMockAuthProvider()

	url, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", url)
	assert.Equal(t, "state-1", state)
	assert.Equal(t, "nonce-1", nonce)

	_, state, _, _ = p.Begin(context.Background(), ports.BeginInput{})
	assert.Equal(t, "state-2", state)
}

func TestMockAuthProvider_Begin_CustomFunc(t *testing.T) {
	p := &MockAuthProvider{BeginFunc: func(context.Context, ports.BeginInput) (string, string, string, error) {
		return "", "", "", errors.New("idp down")
	}}
	_, _, _, err := p.Begin(context.Background(), ports.BeginInput{})
	require.EqualError(t, err, "idp down")
}

func TestMockAuthProvider_Exchange_Defaults(t *testing.T) {
	p := &MockAuthProvider{}
	id, err := p.Exchange(context.Background(), ports.ExchangeInput{})
	require.NoError(t, err)
	assert.Equal(t, "mock-user-1", id.UserID)
	assert.Equal(t, "buyer", id.Attributes["custom:role"])
	assert.WithinDuration(t, time.Now().Add(time.Hour), id.ExpiresAt, time.Minute)
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	require.Error(t, s.Save(ctx, domainauth.Session{}))
	require.NoError(t, s.Save(ctx, domainauth.Session{ID: "a", UserID: "u", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, s.Save(ctx, domainauth.Session{ID: "old", UserID: "u", ExpiresAt: time.Now().Add(-time.Hour)}))

	got, err := s.CurrentSession(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "u", got.UserID)

	_, err = s.CurrentSession(ctx, "old")
	assert.ErrorIs(t, err, ports.ErrUnauthenticated)
	_, err = s.CurrentSession(ctx, "")
	assert.ErrorIs(t, err, ports.ErrUnauthenticated)

	s.Err = errors.New("redis down")
	_, err = s.CurrentSession(ctx, "a")
	assert.NotErrorIs(t, err, ports.ErrUnauthenticated)

	require.NoError(t, s.Delete(ctx, "a"))
	assert.Equal(t, 1, s.Len())
}

func TestMemoryVerificationRepo(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryVerificationRepo()

	v, err := r.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, domainauth.VerificationPending, v.Status)

	require.NoError(t, r.Upsert(ctx, "u", domainauth.Verification{Status: domainauth.VerificationVerified}))
	v, _ = r.Get(ctx, "u")
	assert.True(t, v.Cleared())
}

func TestMemoryAccessRecorder(t *testing.T) {
	var r MemoryAccessRecorder
	require.NoError(t, r.Record(context.Background(), ports.AccessRecord{UserID: "u", Event: "login"}))
	recs := r.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "login", recs[0].Event)
}
