/*
metrics.go - Prometheus instrumentation

PURPOSE:
  Counts what the engine does: lifecycle transitions, balance recomputes,
  completion sweeps, and HTTP errors by code. Exposed on /metrics by the
  router.

SEE ALSO:
  - server.go: mounts the /metrics endpoint
  - handlers.go: sinkFor wires the transition counter into the workflow
*/
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine's Prometheus collectors on a private registry so
// tests can create handlers without collector name collisions.
type Metrics struct {
	registry *prometheus.Registry

	Transitions      *prometheus.CounterVec
	Recomputes       prometheus.Counter
	SweepsCompleted  prometheus.Counter
	RequestsRejected *prometheus.CounterVec
}

// NewMetrics creates the collector set on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_transitions_total",
			Help: "Lifecycle transitions applied, by source and target state.",
		}, []string{"from", "to"}),
		Recomputes: f.NewCounter(prometheus.CounterOpts{
			Name: "leave_balance_recomputes_total",
			Help: "Vacation balance recomputations persisted.",
		}),
		SweepsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "leave_elapsed_requests_total",
			Help: "Approved requests moved to COMPLETED by the sweeper.",
		}),
		RequestsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "leave_api_errors_total",
			Help: "API requests rejected, by engine error code.",
		}, []string{"code"}),
	}
}

// HTTPHandler serves the registry in Prometheus text format.
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
