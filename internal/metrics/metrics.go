// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeDenied   = "denied"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	gatherer            prometheus.Gatherer
	httpRequestDuration *prometheus.HistogramVec
	taskTransitions     *prometheus.CounterVec
	membershipChanges   *prometheus.CounterVec
	logins              *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry registers the collectors on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "earth_fighter_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		taskTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earth_fighter_task_transitions_total",
				Help: "Task lifecycle actions by outcome",
			},
			[]string{"action", "outcome"},
		),
		membershipChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earth_fighter_membership_changes_total",
				Help: "Organization create, join, leave and delete operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "earth_fighter_login_attempts_total",
				Help: "Login attempts by success",
			},
			[]string{"success"},
		),
	}
	reg.MustRegister(m.httpRequestDuration, m.taskTransitions, m.membershipChanges, m.logins)
	return m
}

// RecordTaskTransition counts one lifecycle action.
func (m *Metrics) RecordTaskTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.taskTransitions.WithLabelValues(action, outcome).Inc()
}

// RecordMembershipChange counts one organization membership operation.
func (m *Metrics) RecordMembershipChange(operation, outcome string) {
	if m == nil {
		return
	}
	m.membershipChanges.WithLabelValues(operation, outcome).Inc()
}

// RecordLogin counts one login attempt.
func (m *Metrics) RecordLogin(success bool) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(strconv.FormatBool(success)).Inc()
}

// TaskTransitions exposes the task transition counter.
func (m *Metrics) TaskTransitions() *prometheus.CounterVec {
	return m.taskTransitions
}

// MembershipChanges exposes the membership change counter.
func (m *Metrics) MembershipChanges() *prometheus.CounterVec {
	return m.membershipChanges
}

// Middleware records request duration by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
