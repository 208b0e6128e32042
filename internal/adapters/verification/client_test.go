package verification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	opts.URL = srv.URL + "/api/auth/verification-status"
	c, err := NewClient(opts)
	require.NoError(t, err)
	return c
}

func TestClient_Lookup(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    domainauth.Verification
		wantErr bool
	}{
		{name: "verified", body: `{"verificationStatus":"verified","accountLocked":false}`, want: domainauth.Verification{Status: domainauth.VerificationVerified}},
		{name: "locked", body: `{"verificationStatus":"verified","accountLocked":true}`, want: domainauth.Verification{Status: domainauth.VerificationVerified, AccountLocked: true}},
		{name: "pending mixed case", body: `{"verificationStatus":"PENDING","accountLocked":false}`, want: domainauth.Verification{Status: domainauth.VerificationPending}},
		{name: "rejected", body: `{"verificationStatus":"rejected","accountLocked":false}`, want: domainauth.Verification{Status: domainauth.VerificationRejected}},
		{name: "missing lock field", body: `{"verificationStatus":"verified"}`, wantErr: true},
		{name: "string lock field", body: `{"verificationStatus":"verified","accountLocked":"true"}`, wantErr: true},
		{name: "numeric lock field", body: `{"verificationStatus":"verified","accountLocked":1}`, wantErr: true},
		{name: "null lock field", body: `{"verificationStatus":"verified","accountLocked":null}`, wantErr: true},
		{name: "unknown status", body: `{"verificationStatus":"approved"}`, wantErr: true},
		{name: "missing status", body: `{"accountLocked":false}`, wantErr: true},
		{name: "not json", body: `<html>`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}, Options{})

			got, err := c.Lookup(context.Background(), nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrBadResponse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_ForwardsCookies(t *testing.T) {
	var gotSession, gotOther string
	var gotBad bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("session_id"); err == nil {
			gotSession = ck.Value
		}
		if ck, err := r.Cookie("pref"); err == nil {
			gotOther = ck.Value
		}
		_, err := r.Cookie("bad name")
		gotBad = err == nil
		_, _ = w.Write([]byte(`{"verificationStatus":"verified","accountLocked":false}`))
	}, Options{})

	_, err := c.Lookup(context.Background(), []*http.Cookie{
		{Name: "session_id", Value: "abc"},
		{Name: "pref", Value: "dark"},
		{Name: "bad name", Value: "x"},
		nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", gotSession)
	assert.Equal(t, "dark", gotOther)
	assert.False(t, gotBad)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusFound, http.StatusInternalServerError} {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			if code == http.StatusFound {
				w.Header().Set("Location", "/auth/login")
			}
			w.WriteHeader(code)
		}, Options{})

		_, err := c.Lookup(context.Background(), nil)
		require.Error(t, err, "status %d", code)
		assert.ErrorIs(t, err, ErrBadResponse)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, Options{Timeout: 20 * time.Millisecond})
	defer close(release)

	_, err := c.Lookup(context.Background(), nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadResponse)
}

func TestClient_CustomExpressions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"buyer":{"state":"verified","locked":true}}}`))
	}, Options{StatusExpr: "data.buyer.state", LockedExpr: "data.buyer.locked"})

	got, err := c.Lookup(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, domainauth.Verification{Status: domainauth.VerificationVerified, AccountLocked: true}, got)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Options{})
	require.Error(t, err)

	_, err = NewClient(Options{URL: "http://x", StatusExpr: "foo..bar"})
	require.Error(t, err)
}
