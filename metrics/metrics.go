// Package metrics keeps the prometheus counters of the service.
// The counters are registered in the own registry, not in the global one,
// so that each service instance (and each test) has its own counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ballot"

type Metrics struct {
	registry  *prometheus.Registry
	grants    *prometheus.CounterVec
	snapshots *prometheus.CounterVec
	requests  *prometheus.CounterVec
	limited   prometheus.Counter
}

// New creates the counters and registers them along with the go runtime collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		grants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grant_outcomes_total",
			Help:      "Voting right grants by the outcome state.",
		}, []string{"state"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_reads_total",
			Help:      "Voting snapshot reads by the result.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Handled requests by the surface and the command.",
		}, []string{"surface", "command"}),
		limited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.grants,
		m.snapshots,
		m.requests,
		m.limited,
	)

	return m
}

// Handler exposes the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// CountGrant increments the counter of the grant outcome state
func (m *Metrics) CountGrant(state string) {
	m.grants.WithLabelValues(state).Inc()
}

// CountSnapshot increments the counter of the snapshot reads
func (m *Metrics) CountSnapshot(failed bool) {
	result := "ok"
	if failed {
		result = "failed"
	}
	m.snapshots.WithLabelValues(result).Inc()
}

// CountRequest increments the counter of the requests received by the surface ("http" or "controller")
func (m *Metrics) CountRequest(surface string, command string) {
	m.requests.WithLabelValues(surface, command).Inc()
}

// CountLimited increments the counter of the rejected requests
func (m *Metrics) CountLimited() {
	m.limited.Inc()
}
