// Package metrics exposes Prometheus instrumentation for the wallet relay
// and a standalone metrics HTTP server.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records relay activity counters. A nil *Metrics is valid and
// records nothing, so components can run uninstrumented in tests.
type Metrics struct {
	activitiesTotal   *prometheus.CounterVec
	upstreamResponses *prometheus.CounterVec
	sessionsTotal     *prometheus.CounterVec
	relayLatency      *prometheus.HistogramVec
}

// New constructs Metrics registered against reg, or the default registerer
// when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		activitiesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_activities_total",
			Help: "Activities relayed to the custody provider",
		}, []string{"activity_type", "outcome"}),
		upstreamResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_upstream_responses_total",
			Help: "Upstream HTTP responses by status class",
		}, []string{"status_class"}),
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_sessions_total",
			Help: "Session negotiations by mode and outcome",
		}, []string{"mode", "outcome"}),
		relayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "relay_upstream_latency_ms",
			Help:    "Latency of upstream activity submissions in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"activity_type"}),
	}
	reg.MustRegister(m.activitiesTotal, m.upstreamResponses, m.sessionsTotal, m.relayLatency)
	return m
}

// RecordActivity counts one relayed activity with its outcome label
// ("ok" or the error kind).
func (m *Metrics) RecordActivity(activityType, outcome string) {
	if m == nil {
		return
	}
	m.activitiesTotal.WithLabelValues(activityType, outcome).Inc()
}

// RecordUpstreamStatus counts one upstream response by status class (2xx,
// 4xx, 5xx, ...).
func (m *Metrics) RecordUpstreamStatus(status int) {
	if m == nil {
		return
	}
	m.upstreamResponses.WithLabelValues(strconv.Itoa(status/100) + "xx").Inc()
}

// RecordSession counts one session negotiation.
func (m *Metrics) RecordSession(mode, outcome string) {
	if m == nil {
		return
	}
	m.sessionsTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveRelayLatency records the latency of one upstream submission.
func (m *Metrics) ObserveRelayLatency(activityType string, millis float64) {
	if m == nil {
		return
	}
	m.relayLatency.WithLabelValues(activityType).Observe(millis)
}
