package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/target/marketplace-gateway/internal/domain/access"
	domainauth "github.com/target/marketplace-gateway/internal/domain/auth"
	"github.com/target/marketplace-gateway/internal/observability/metrics"
	"github.com/target/marketplace-gateway/internal/ports"
)

// Headers set on requests the gateway lets through. Client-supplied copies are discarded.
const (
	HeaderPath = "X-Gateway-Path"
	HeaderUser = "X-Gateway-User"
	HeaderRole = "X-Gateway-Role"
)

// HeaderPrefix marks every header owned by the gateway.
const HeaderPrefix = "X-Gateway-"

// Exchange is one in-flight request as seen by the gateway. Implementations adapt a concrete
// HTTP framework; exactly one of Redirect or Continue is called per request.
type Exchange interface {
	Path() string
	RawQuery() string
	Cookies() []*http.Cookie
	Redirect(location string)
	Continue(headers map[string]string)
}

// PrincipalResolver is satisfied by *SessionValidator.
type PrincipalResolver interface {
	Validate(ctx context.Context, cookies []*http.Cookie) (domainauth.Principal, SessionOutcome)
}

// GatewayOptions groups dependencies for Gateway.
type GatewayOptions struct {
	Routes       access.RouteTable
	Policy       access.Policy
	Sessions     PrincipalResolver
	Verification ports.VerificationLookup // nil sends every buyer to the pending page
	Metrics      metrics.Recorder         // Optional
	Logger       *slog.Logger
}

// Gateway runs the per-request authorization pipeline.
type Gateway struct {
	routes       access.RouteTable
	policy       access.Policy
	sessions     PrincipalResolver
	verification ports.VerificationLookup
	metrics      metrics.Recorder
	logger       *slog.Logger
}

// NewGateway constructs a Gateway.
func NewGateway(opts GatewayOptions) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rec := opts.Metrics
	if rec == nil {
		rec = (*metrics.GatewayMetrics)(nil)
	}
	return &Gateway{
		routes:       opts.Routes,
		policy:       opts.Policy,
		sessions:     opts.Sessions,
		verification: opts.Verification,
		metrics:      rec,
		logger:       logger.With("component", "gateway"),
	}
}

// Outcome is the result of evaluating one request.
type Outcome struct {
	// Path is the normalized request path.
	Path  string
	Class access.RouteClass
	// Bypassed is set for paths that skip the pipeline.
	Bypassed bool
	// Canonicalize is set when the caller must be redirected to Path first.
	Canonicalize bool
	Decision     access.Decision
	Principal    domainauth.Principal
}

// Location is the redirect target for a non-allowed outcome, or "" when the request continues.
func (o Outcome) Location(rawQuery string) string {
	target := o.Path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	if o.Canonicalize {
		return target
	}
	return o.Decision.Location(target)
}

// Continues reports whether the request proceeds upstream.
func (o Outcome) Continues() bool {
	return o.Bypassed || (!o.Canonicalize && o.Decision.Allowed())
}

// Headers returns the gateway headers to attach when the request continues.
func (o Outcome) Headers() map[string]string {
	if o.Bypassed {
		return nil
	}
	h := map[string]string{HeaderPath: o.Path}
	if o.Principal.Authenticated {
		h[HeaderUser] = o.Principal.Username
		h[HeaderRole] = string(o.Principal.Role)
	}
	return h
}

// Evaluate decides a request without touching any response.
func (g *Gateway) Evaluate(ctx context.Context, path string, cookies []*http.Cookie) Outcome {
	normalized, changed := access.NeedsRedirect(path)
	out := Outcome{Path: normalized, Class: g.routes.Classify(normalized)}

	if g.routes.Bypass(normalized) {
		out.Bypassed = true
		return out
	}
	if changed {
		out.Canonicalize = true
		return out
	}
	if !out.Class.Protected() {
		out.Decision = access.Decision{Kind: access.Allow}
		g.metrics.Decision(out.Decision.String(), string(out.Class))
		return out
	}

	principal, outcome := g.resolve(ctx, cookies)
	g.metrics.SessionOutcome(string(outcome))
	out.Principal = principal

	out.Decision = g.policy.Decide(ctx, access.DecisionInput{
		Path:      normalized,
		Class:     out.Class,
		Principal: principal,
	}, g.lookupFor(cookies))

	g.metrics.Decision(out.Decision.String(), string(out.Class))
	g.logger.DebugContext(ctx, "access decision",
		"path", normalized,
		"route_class", out.Class,
		"session", outcome,
		"role", principal.Role,
		"decision", out.Decision.String(),
	)
	return out
}

func (g *Gateway) resolve(ctx context.Context, cookies []*http.Cookie) (domainauth.Principal, SessionOutcome) {
	if g.sessions == nil {
		return domainauth.Anonymous, OutcomeProviderFailure
	}
	return g.sessions.Validate(ctx, cookies)
}

// lookupFor binds the verification lookup to this request's cookies.
func (g *Gateway) lookupFor(cookies []*http.Cookie) access.VerificationLookup {
	if g.verification == nil {
		return nil
	}
	return func(ctx context.Context) (domainauth.Verification, error) {
		start := time.Now()
		v, err := g.verification.Lookup(ctx, cookies)
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
			g.logger.WarnContext(ctx, "verification lookup failed", "error", err)
		}
		g.metrics.VerificationLookup(metrics.LookupMetric{Result: result, Duration: time.Since(start), Err: err})
		return v, err
	}
}

// Handle evaluates ex and answers it. A panic anywhere in the pipeline is logged and resolves
// to a login redirect for protected paths; it never lets the request through.
func (g *Gateway) Handle(ctx context.Context, ex Exchange) {
	answered := false
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		path := access.Normalize(ex.Path())
		g.logger.ErrorContext(ctx, "gateway pipeline panic", "path", path, "panic", fmt.Sprint(rec))
		if answered {
			return
		}
		if g.routes.Classify(path).Protected() {
			g.metrics.Decision(access.RedirectLogin.String(), "panic")
			ex.Redirect(access.LoginURL(path))
			return
		}
		ex.Continue(map[string]string{HeaderPath: path})
	}()

	out := g.Evaluate(ctx, ex.Path(), ex.Cookies())
	if out.Continues() {
		answered = true
		ex.Continue(out.Headers())
		return
	}
	answered = true
	ex.Redirect(out.Location(ex.RawQuery()))
}
