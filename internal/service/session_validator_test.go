package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/mocks"
	"github.com/target/marketplace-gateway/internal/ports"
)

func sessionCookie(id string) []*http.Cookie {
	return []*http.Cookie{{Name: "theme", Value: "dark"}, {Name: SessionCookieName, Value: id}}
}

func TestSessionValidator_Outcomes(t *testing.T) {
	future := time.Now().Add(time.Hour)
	tests := []struct {
		name        string
		cookies     []*http.Cookie
		setup       func(m *mocks.MockSessionProviderMockRecorder)
		wantOutcome SessionOutcome
		want        domainauth.Principal
	}{
		{
			name:        "no cookie",
			cookies:     []*http.Cookie{{Name: "theme", Value: "dark"}},
			wantOutcome: OutcomeUnauthenticated,
		},
		{
			name:    "authenticated buyer",
			cookies: sessionCookie("s1"),
			setup: func(m *mocks.MockSessionProviderMockRecorder) {
				m.CurrentSession(gomock.Any(), "s1").Return(domainauth.Session{
					ID: "s1", UserID: "u1", Username: "bob", Role: domainauth.RoleBuyer, ExpiresAt: future,
				}, nil)
			},
			wantOutcome: OutcomeAuthenticated,
			want:        domainauth.Principal{Authenticated: true, Username: "bob", Role: domainauth.RoleBuyer},
		},
		{
			name:    "attributes win over stored role",
			cookies: sessionCookie("s2"),
			setup: func(m *mocks.MockSessionProviderMockRecorder) {
				m.CurrentSession(gomock.Any(), "s2").Return(domainauth.Session{
					ID: "s2", UserID: "u2", Role: domainauth.RoleBuyer,
					Attributes: map[string]string{"custom:role": "seller"}, ExpiresAt: future,
				}, nil)
			},
			wantOutcome: OutcomeAuthenticated,
			want:        domainauth.Principal{Authenticated: true, Username: "u2", Role: domainauth.RoleSeller},
		},
		{
			name:    "definitive unauthenticated",
			cookies: sessionCookie("gone"),
			setup: func(m *mocks.MockSessionProviderMockRecorder) {
				m.CurrentSession(gomock.Any(), "gone").Return(domainauth.Session{}, ports.ErrUnauthenticated)
			},
			wantOutcome: OutcomeUnauthenticated,
		},
		{
			name:    "provider failure",
			cookies: sessionCookie("s3"),
			setup: func(m *mocks.MockSessionProviderMockRecorder) {
				m.CurrentSession(gomock.Any(), "s3").Return(domainauth.Session{}, errors.New("dial tcp: connection refused"))
			},
			wantOutcome: OutcomeProviderFailure,
		},
		{
			name:    "expired session",
			cookies: sessionCookie("s4"),
			setup: func(m *mocks.MockSessionProviderMockRecorder) {
				m.CurrentSession(gomock.Any(), "s4").Return(domainauth.Session{
					ID: "s4", UserID: "u4", Role: domainauth.RoleBuyer, ExpiresAt: time.Now().Add(-time.Minute),
				}, nil)
			},
			wantOutcome: OutcomeUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := mocks.NewMockSessionProvider(ctrl)
			if tt.setup != nil {
				tt.setup(provider.EXPECT())
			}
			v := NewSessionValidator(SessionValidatorOptions{Provider: provider, Roles: testRoles})

			got, outcome := v.Validate(context.Background(), tt.cookies)

			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionValidator_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSessionProvider(ctrl)
	provider.EXPECT().CurrentSession(gomock.Any(), "slow").DoAndReturn(
		func(ctx context.Context, _ string) (domainauth.Session, error) {
			<-ctx.Done()
			return domainauth.Session{}, ctx.Err()
		})

	v := NewSessionValidator(SessionValidatorOptions{Provider: provider, Timeout: 10 * time.Millisecond})
	got, outcome := v.Validate(context.Background(), sessionCookie("slow"))

	assert.Equal(t, OutcomeProviderFailure, outcome)
	assert.False(t, got.Authenticated)
}

func TestSessionValidator_CustomCookieName(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockSessionProvider(ctrl)
	provider.EXPECT().CurrentSession(gomock.Any(), "abc").Return(domainauth.Session{UserID: "u", Role: domainauth.RoleSeller}, nil)

	v := NewSessionValidator(SessionValidatorOptions{Provider: provider, CookieName: "mkt_session"})
	got, outcome := v.Validate(context.Background(), []*http.Cookie{{Name: "mkt_session", Value: "abc"}})

	assert.Equal(t, OutcomeAuthenticated, outcome)
	assert.Equal(t, domainauth.RoleSeller, got.Role)
}

func TestSessionValidator_NilProvider(t *testing.T) {
	v := NewSessionValidator(SessionValidatorOptions{})
	_, outcome := v.Validate(context.Background(), sessionCookie("x"))
	assert.Equal(t, OutcomeProviderFailure, outcome)
}
