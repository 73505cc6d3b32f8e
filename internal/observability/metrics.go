package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Metrics exposes Prometheus collectors for HTTP traffic and ticket activity.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	ticketsCreated  prometheus.Counter
	ticketEvents    *prometheus.CounterVec
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP errors by error code",
		}, []string{"method", "route", "code"}),
		ticketsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_tickets_created_total",
			Help: "Tickets created",
		}),
		ticketEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_ticket_events_total",
			Help: "Ticket events appended, by change type",
		}, []string{"change_type"}),
	}
	m.registry.MustRegister(
		m.requestCount,
		m.requestDuration,
		m.errorCount,
		m.ticketsCreated,
		m.ticketEvents,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry to expose over HTTP.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest observes one completed request.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError counts an error response by code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(method, route, code).Inc()
}

// TicketCreated counts a committed ticket creation.
func (m *Metrics) TicketCreated() {
	if m == nil {
		return
	}
	m.ticketsCreated.Inc()
}

// TicketEvents counts committed audit events.
func (m *Metrics) TicketEvents(events []domain.TicketEvent) {
	if m == nil {
		return
	}
	for _, ev := range events {
		m.ticketEvents.WithLabelValues(string(ev.ChangeType)).Inc()
	}
}
