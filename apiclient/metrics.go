package apiclient

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts gateway traffic and session recovery outcomes. A nil
// *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	retries       *prometheus.CounterVec
	forcedLogouts *prometheus.CounterVec
}

// NewMetrics creates the gateway collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests sent to the campaign API by status code and method.",
		}, []string{"code", "method"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests sent to the campaign API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "gateway",
			Name:      "retries_total",
			Help:      "Requests resent after a token refresh, by outcome of the resend.",
		}, []string{"outcome"}),
		forcedLogouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "gateway",
			Name:      "forced_logouts_total",
			Help:      "Sessions ended by the gateway, by reason.",
		}, []string{"reason"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.retries, m.forcedLogouts)
	}
	return m
}

// Middleware instruments every request that reaches the network
func (m *Metrics) Middleware() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		if m == nil {
			return next
		}
		return promhttp.InstrumentRoundTripperCounter(m.requests,
			promhttp.InstrumentRoundTripperDuration(m.duration, next))
	}
}

func (m *Metrics) retried(outcome string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) forcedLogout(reason string) {
	if m == nil {
		return
	}
	m.forcedLogouts.WithLabelValues(reason).Inc()
}

// Retries returns the retry counter, for tests and dashboards
func (m *Metrics) Retries() *prometheus.CounterVec {
	return m.retries
}

// ForcedLogouts returns the forced logout counter
func (m *Metrics) ForcedLogouts() *prometheus.CounterVec {
	return m.forcedLogouts
}

// Requests returns the request counter
func (m *Metrics) Requests() *prometheus.CounterVec {
	return m.requests
}
