package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/marketplace-gateway/internal/domain/access"
	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/mocks"
	"github.com/target/marketplace-gateway/internal/observability/metrics"
	"github.com/target/marketplace-gateway/internal/ports"
)

// recordingExchange captures how the gateway answered.
type recordingExchange struct {
	path     string
	rawQuery string
	cookies  []*http.Cookie

	redirects []string
	continued []map[string]string
}

func (e *recordingExchange) Path() string            { return e.path }
func (e *recordingExchange) RawQuery() string        { return e.rawQuery }
func (e *recordingExchange) Cookies() []*http.Cookie { return e.cookies }
func (e *recordingExchange) Redirect(location string) {
	e.redirects = append(e.redirects, location)
}
func (e *recordingExchange) Continue(headers map[string]string) {
	e.continued = append(e.continued, headers)
}

func (e *recordingExchange) answers() int { return len(e.redirects) + len(e.continued) }

type stubResolver struct {
	principal domainauth.Principal
	outcome   SessionOutcome
	calls     atomic.Int32
}

func (s *stubResolver) Validate(context.Context, []*http.Cookie) (domainauth.Principal, SessionOutcome) {
	s.calls.Add(1)
	return s.principal, s.outcome
}

func buyer() *stubResolver {
	return &stubResolver{
		principal: domainauth.Principal{Authenticated: true, Username: "bob", Role: domainauth.RoleBuyer},
		outcome:   OutcomeAuthenticated,
	}
}

func seller() *stubResolver {
	return &stubResolver{
		principal: domainauth.Principal{Authenticated: true, Username: "sue", Role: domainauth.RoleSeller},
		outcome:   OutcomeAuthenticated,
	}
}

func anonymous() *stubResolver {
	return &stubResolver{outcome: OutcomeUnauthenticated}
}

func newTestGateway(sessions PrincipalResolver, lookup ports.VerificationLookup, rec metrics.Recorder) *Gateway {
	return NewGateway(GatewayOptions{
		Routes:       access.DefaultRouteTable(),
		Policy:       access.DefaultPolicy(),
		Sessions:     sessions,
		Verification: lookup,
		Metrics:      rec,
	})
}

func TestGateway_UnauthenticatedBuyerRouteRedirectsToLogin(t *testing.T) {
	g := newTestGateway(anonymous(), nil, nil)
	ex := &recordingExchange{path: "/buyer/deals"}

	g.Handle(context.Background(), ex)

	require.Equal(t, 1, ex.answers())
	assert.Equal(t, []string{"/auth/login?redirect=/buyer/deals"}, ex.redirects)
}

func TestGateway_SellerOnBuyerRouteGoesHome(t *testing.T) {
	g := newTestGateway(seller(), nil, nil)
	ex := &recordingExchange{path: "/buyer/deals"}

	g.Handle(context.Background(), ex)

	assert.Equal(t, []string{"/seller/dashboard"}, ex.redirects)
}

func TestGateway_BuyerOnSellerRouteGoesHome(t *testing.T) {
	g := newTestGateway(buyer(), nil, nil)
	ex := &recordingExchange{path: "/seller/listings"}

	g.Handle(context.Background(), ex)

	assert.Equal(t, []string{"/buyer/dashboard"}, ex.redirects)
}

func TestGateway_VerifiedBuyerContinuesWithHeaders(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockVerificationLookup(ctrl)
	cookies := sessionCookie("s1")
	lookup.EXPECT().Lookup(gomock.Any(), cookies).Return(domainauth.Verification{Status: domainauth.VerificationVerified}, nil)

	g := newTestGateway(buyer(), lookup, nil)
	ex := &recordingExchange{path: "/buyer/deals", cookies: cookies}

	g.Handle(context.Background(), ex)

	require.Empty(t, ex.redirects)
	require.Len(t, ex.continued, 1)
	assert.Equal(t, map[string]string{
		HeaderPath: "/buyer/deals",
		HeaderUser: "bob",
		HeaderRole: "buyer",
	}, ex.continued[0])
}

func TestGateway_BuyerVerificationOutcomes(t *testing.T) {
	tests := []struct {
		name string
		v    domainauth.Verification
		err  error
		want string
	}{
		{name: "locked wins over verified", v: domainauth.Verification{Status: domainauth.VerificationVerified, AccountLocked: true}, want: "/buyer/account-locked"},
		{name: "pending", v: domainauth.Verification{Status: domainauth.VerificationPending}, want: "/buyer/pending-verification"},
		{name: "rejected", v: domainauth.Verification{Status: domainauth.VerificationRejected}, want: "/buyer/pending-verification"},
		{name: "lookup error", err: errors.New("503"), want: "/buyer/pending-verification"},
		{name: "timeout", err: context.DeadlineExceeded, want: "/buyer/pending-verification"},
		{name: "malformed status", v: domainauth.Verification{Status: "approved"}, want: "/buyer/pending-verification"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lookup := mocks.NewMockVerificationLookup(ctrl)
			lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(tt.v, tt.err)

			g := newTestGateway(buyer(), lookup, nil)
			ex := &recordingExchange{path: "/marketplace/offers/AbC123"}
			g.Handle(context.Background(), ex)

			assert.Empty(t, ex.continued)
			assert.Equal(t, []string{tt.want}, ex.redirects)
		})
	}
}

func TestGateway_NoVerificationLookupFailsSecure(t *testing.T) {
	g := newTestGateway(buyer(), nil, nil)
	ex := &recordingExchange{path: "/search"}

	g.Handle(context.Background(), ex)

	assert.Equal(t, []string{"/buyer/pending-verification"}, ex.redirects)
}

func TestGateway_VerificationBypassPagesSkipLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockVerificationLookup(ctrl) // no calls expected

	g := newTestGateway(buyer(), lookup, nil)
	for _, path := range []string{"/buyer/pending-verification", "/buyer/account-locked"} {
		ex := &recordingExchange{path: path}
		g.Handle(context.Background(), ex)
		assert.Empty(t, ex.redirects, path)
		assert.Len(t, ex.continued, 1, path)
	}
}

func TestGateway_SellerNeverLooksUpVerification(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockVerificationLookup(ctrl)

	g := newTestGateway(seller(), lookup, nil)
	ex := &recordingExchange{path: "/seller/dashboard"}
	g.Handle(context.Background(), ex)

	require.Len(t, ex.continued, 1)
	assert.Equal(t, "seller", ex.continued[0][HeaderRole])
}

func TestGateway_RolelessSessionRedirectsToLogin(t *testing.T) {
	g := newTestGateway(&stubResolver{
		principal: domainauth.Principal{Authenticated: true, Username: "staff"},
		outcome:   OutcomeAuthenticated,
	}, nil, nil)
	ex := &recordingExchange{path: "/seller/orders"}

	g.Handle(context.Background(), ex)

	assert.Equal(t, []string{"/auth/login?redirect=/seller/orders"}, ex.redirects)
}

func TestGateway_CanonicalRedirectPreservesQuery(t *testing.T) {
	sessions := buyer()
	g := newTestGateway(sessions, nil, nil)
	ex := &recordingExchange{path: "//Buyer//Deals/", rawQuery: "page=2&sort=Price"}

	g.Handle(context.Background(), ex)

	assert.Equal(t, []string{"/buyer/deals?page=2&sort=Price"}, ex.redirects)
	assert.Zero(t, sessions.calls.Load(), "canonical redirect happens before any auth check")
}

func TestGateway_MarketplaceIdentifiersKeepCase(t *testing.T) {
	g := newTestGateway(anonymous(), nil, nil)
	ex := &recordingExchange{path: "/Marketplace/Offers/AbC123"}

	g.Handle(context.Background(), ex)

	assert.Equal(t, []string{"/marketplace/offers/AbC123"}, ex.redirects)
}

func TestGateway_BypassPathsSkipPipeline(t *testing.T) {
	sessions := anonymous()
	g := newTestGateway(sessions, nil, nil)
	for _, path := range []string{"/_next/static/chunk.js", "/static/Logo.PNG", "/api/query/listings", "/auth/login", "/", "/favicon.ico"} {
		ex := &recordingExchange{path: path}
		g.Handle(context.Background(), ex)
		assert.Empty(t, ex.redirects, path)
		require.Len(t, ex.continued, 1, path)
		assert.Nil(t, ex.continued[0], path)
	}
	assert.Zero(t, sessions.calls.Load())
}

func TestGateway_UnmatchedPathIsPublic(t *testing.T) {
	sessions := anonymous()
	g := newTestGateway(sessions, nil, nil)
	ex := &recordingExchange{path: "/about"}

	g.Handle(context.Background(), ex)

	require.Len(t, ex.continued, 1)
	assert.Equal(t, map[string]string{HeaderPath: "/about"}, ex.continued[0])
	assert.Zero(t, sessions.calls.Load())
}

type panickingResolver struct{}

func (panickingResolver) Validate(context.Context, []*http.Cookie) (domainauth.Principal, SessionOutcome) {
	panic("boom")
}

func TestGateway_PanicRedirectsToLogin(t *testing.T) {
	g := newTestGateway(panickingResolver{}, nil, nil)
	ex := &recordingExchange{path: "/buyer/deals"}

	assert.NotPanics(t, func() { g.Handle(context.Background(), ex) })
	assert.Empty(t, ex.continued)
	assert.Equal(t, []string{"/auth/login?redirect=/buyer/deals"}, ex.redirects)
}

func TestGateway_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := metrics.NewGatewayMetrics(reg, nil)
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockVerificationLookup(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(domainauth.Verification{}, errors.New("down"))

	g := newTestGateway(buyer(), lookup, m)
	g.Handle(context.Background(), &recordingExchange{path: "/buyer/deals"})
	newTestGateway(&stubResolver{outcome: OutcomeProviderFailure}, nil, m).
		Handle(context.Background(), &recordingExchange{path: "/seller/x"})

	n, err := testutil.GatherAndCount(reg, "gateway_decisions_total", "gateway_session_outcomes_total", "gateway_verification_lookup_seconds")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestGateway_EvaluateIsSideEffectFree(t *testing.T) {
	g := newTestGateway(anonymous(), nil, nil)
	out := g.Evaluate(context.Background(), "/buyer/deals", nil)

	assert.False(t, out.Continues())
	assert.Equal(t, access.RouteBuyerProtected, out.Class)
	assert.Equal(t, access.RedirectLogin, out.Decision.Kind)
	assert.Equal(t, "/auth/login?redirect=/buyer/deals", out.Location(""))
	assert.Equal(t, "/auth/login?redirect=/buyer/deals%3Fpage%3D2%26sort%3Dnew", out.Location("page=2&sort=new"))
}

func TestGateway_ConcurrentRequestsAreIndependent(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockVerificationLookup(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cookies []*http.Cookie) (domainauth.Verification, error) {
			time.Sleep(time.Millisecond)
			if cookies[0].Value == "verified" {
				return domainauth.Verification{Status: domainauth.VerificationVerified}, nil
			}
			return domainauth.Verification{Status: domainauth.VerificationPending}, nil
		}).Times(20)

	g := newTestGateway(buyer(), lookup, nil)
	type result struct {
		verified bool
		ex       *recordingExchange
	}
	results := make(chan result, 20)
	for i := range 20 {
		go func() {
			val := "pending"
			if i%2 == 0 {
				val = "verified"
			}
			ex := &recordingExchange{path: "/buyer/deals", cookies: []*http.Cookie{{Name: "v", Value: val}}}
			g.Handle(context.Background(), ex)
			results <- result{verified: val == "verified", ex: ex}
		}()
	}
	for range 20 {
		r := <-results
		if r.verified {
			assert.Len(t, r.ex.continued, 1)
		} else {
			assert.Equal(t, []string{"/buyer/pending-verification"}, r.ex.redirects)
		}
	}
}
