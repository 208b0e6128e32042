package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	obserrors "github.com/target/marketplace-gateway/internal/observability/errors"
	"github.com/target/marketplace-gateway/internal/observability/statsd"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultBlocked = "blocked"
	ResultAllowed = "allowed"
)

const namespace = "gateway"

// Recorder is what the gateway pipeline reports to. A nil *GatewayMetrics is a valid no-op Recorder.
type Recorder interface {
	Decision(decision, routeClass string)
	SessionOutcome(outcome string)
	VerificationLookup(in LookupMetric)
	QueryGuard(result string)
}

// LookupMetric describes one verification-status lookup.
type LookupMetric struct {
	Result   string
	Duration time.Duration
	Err      error
}

// GatewayMetrics exports gateway counters to Prometheus and mirrors them to a StatsD sink.
type GatewayMetrics struct {
	decisions *prometheus.CounterVec
	sessions  *prometheus.CounterVec
	lookups   *prometheus.HistogramVec
	guard     *prometheus.CounterVec
	sink      statsd.Sink
}

var _ Recorder = (*GatewayMetrics)(nil)

// NewGatewayMetrics registers the gateway collectors with reg. sink may be nil.
func NewGatewayMetrics(reg prometheus.Registerer, sink statsd.Sink) (*GatewayMetrics, error) {
	m := &GatewayMetrics{
		// decisions counts access decisions by outcome and the route class they applied to.
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Access decisions, labeled by decision and route class.",
			},
			[]string{"decision", "route_class"},
		),
		// sessions separates definitive "no session" answers from provider failures.
		sessions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_outcomes_total",
				Help:      "Session validation outcomes.",
			},
			[]string{"outcome"},
		),
		lookups: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "verification_lookup_seconds",
				Help:      "Latency of buyer verification-status lookups.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"result"},
		),
		guard: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "query_guard_total",
				Help:      "Dynamic queries checked by the restricted-field guard.",
			},
			[]string{"result"},
		),
		sink: sink,
	}

	var err error
	if m.decisions, err = register(reg, m.decisions); err != nil {
		return nil, err
	}
	if m.sessions, err = register(reg, m.sessions); err != nil {
		return nil, err
	}
	if m.lookups, err = register(reg, m.lookups); err != nil {
		return nil, err
	}
	if m.guard, err = register(reg, m.guard); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the already-registered collector when an identical one exists.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	var zero T
	return zero, err
}

func (m *GatewayMetrics) Decision(decision, routeClass string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision, routeClass).Inc()
	count(m.sink, "decision", map[string]string{"decision": decision, "route_class": routeClass})
}

func (m *GatewayMetrics) SessionOutcome(outcome string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(outcome).Inc()
	count(m.sink, "session.outcome", map[string]string{"outcome": outcome})
}

// VerificationLookup records latency and, for failures, the error class on the StatsD side.
func (m *GatewayMetrics) VerificationLookup(in LookupMetric) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(in.Result).Observe(in.Duration.Seconds())
	if m.sink == nil {
		return
	}
	tags := map[string]string{"result": in.Result}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}
	m.sink.Count("verification.lookup", 1, tags)
	if in.Duration > 0 {
		m.sink.Timing("verification.lookup.duration", in.Duration, CloneTags(tags))
	}
}

func (m *GatewayMetrics) QueryGuard(result string) {
	if m == nil {
		return
	}
	m.guard.WithLabelValues(result).Inc()
	count(m.sink, "query.guard", map[string]string{"result": result})
}

func count(sink statsd.Sink, name string, tags map[string]string) {
	if sink == nil {
		return
	}
	sink.Count(name, 1, tags)
}

// CloneTags creates a shallow copy of a tag map, dropping empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k != "" {
			out[k] = v
		}
	}
	return out
}
