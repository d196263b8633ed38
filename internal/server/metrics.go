package server

import (
	"net/http"
	"time"

	"github.com/huangsam/cadence/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard collectors. Each Metrics owns its registry, so
// several servers in one process (tests included) never collide.
type Metrics struct {
	registry *prometheus.Registry

	events          *prometheus.CounterVec
	pushes          *prometheus.CounterVec
	executeRequests *prometheus.CounterVec
	executeDuration prometheus.Histogram
}

// NewMetrics registers the cadence collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cadence_events_total",
			Help: "Scheduled commit events by outcome.",
		}, []string{"outcome"}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cadence_pushes_total",
			Help: "Push protocol results by terminal state.",
		}, []string{"state"}),
		executeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cadence_execute_requests_total",
			Help: "Command executions by command and status.",
		}, []string{"command", "status"}),
		executeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cadence_execute_duration_seconds",
			Help:    "Wall time of command executions.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}),
	}
	m.registry.MustRegister(m.events, m.pushes, m.executeRequests, m.executeDuration)
	return m
}

// Handler serves the scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveOutcome counts the events and push of a finished run.
func (m *Metrics) ObserveOutcome(outcome *schema.RunOutcome) {
	if outcome == nil {
		return
	}
	m.events.WithLabelValues("successful").Add(float64(outcome.Successful))
	// failed_fatal events are also skipped, only the remainder is counted here
	m.events.WithLabelValues("skipped").Add(float64(outcome.Skipped - outcome.FailedFatal))
	m.events.WithLabelValues("failed_fatal").Add(float64(outcome.FailedFatal))
	if outcome.Push != nil {
		m.ObservePush(*outcome.Push)
	}
}

// ObservePush counts one push result.
func (m *Metrics) ObservePush(push schema.PushResult) {
	m.pushes.WithLabelValues(string(push.State)).Inc()
}

// ObserveExecute records one command execution.
func (m *Metrics) ObserveExecute(command, status string, elapsed time.Duration) {
	m.executeRequests.WithLabelValues(command, status).Inc()
	m.executeDuration.Observe(elapsed.Seconds())
}
