// Package metrics groups the Prometheus instruments exported on /metrics.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spartan"

// Metrics groups all Prometheus instruments used by the service. Each instance
// owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	ActiveSessions  prometheus.Gauge
	ChatMessages    *prometheus.CounterVec
	QuotesRendered  prometheus.Counter
	LeadSubmissions *prometheus.CounterVec
	IntakeRequests  *prometheus.CounterVec
	SinkFailures    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

// New creates the instrument set on a fresh registry that also carries the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chat_active_sessions",
			Help:      "Number of open estimate chat sessions.",
		}),
		ChatMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat transcript messages by role.",
		}, []string{"role"}),
		QuotesRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_rendered_total",
			Help:      "Estimate summaries rendered into the chat.",
		}),
		LeadSubmissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_submissions_total",
			Help:      "Chat lead submissions by outcome.",
		}, []string{"outcome"}),
		IntakeRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_intake_requests_total",
			Help:      "Lead intake responses by status code.",
		}, []string{"status"}),
		SinkFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lead_sink_failures_total",
			Help:      "Downstream lead sink failures by sink.",
		}, []string{"sink"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}, []string{"method", "route", "status"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request latency by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
			route := c.FullPath()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPDuration.
				WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
				Observe(v * 1000)
		}))
		c.Next()
		timer.ObserveDuration()
	}
}

// ObserveIntake counts one lead intake response.
func (m *Metrics) ObserveIntake(status int) {
	if m == nil {
		return
	}
	m.IntakeRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// ObserveSubmission counts one settled chat lead submission.
func (m *Metrics) ObserveSubmission(success bool) {
	if m == nil {
		return
	}
	m.LeadSubmissions.WithLabelValues(SubmissionOutcome(success)).Inc()
}

// ObserveMessage counts one transcript message for role.
func (m *Metrics) ObserveMessage(role string) {
	if m == nil {
		return
	}
	m.ChatMessages.WithLabelValues(role).Inc()
}

// ObserveQuote counts one rendered estimate summary.
func (m *Metrics) ObserveQuote() {
	if m == nil {
		return
	}
	m.QuotesRendered.Inc()
}

// ObserveSinkFailure counts one failed downstream lead sink.
func (m *Metrics) ObserveSinkFailure(sink string) {
	if m == nil {
		return
	}
	m.SinkFailures.WithLabelValues(sink).Inc()
}

// SessionOpened and SessionClosed track the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// SubmissionOutcome maps a settled submission to its label value.
func SubmissionOutcome(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
