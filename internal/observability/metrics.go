package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	requestsTotal         *prometheus.CounterVec
	requestLatencySeconds *prometheus.HistogramVec
	requestErrorsTotal    *prometheus.CounterVec
	submissionsTotal      *prometheus.CounterVec
	csvImportsTotal       *prometheus.CounterVec
	csvRowsTotal          *prometheus.CounterVec
	lookupsTotal          *prometheus.CounterVec
	feedClientsActive     prometheus.Gauge
	eventsPublishedTotal  *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the portal.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of API requests served, split by public and admin surface.",
		}, []string{"surface", "method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"surface", "method", "route"})

		requestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_request_errors_total",
			Help: "Total number of error responses.",
		}, []string{"surface", "method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_submissions_total",
			Help: "Forms and verification requests accepted from the public site.",
		}, []string{"kind"})

		csvImportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_csv_imports_total",
			Help: "CSV uploads processed by outcome.",
		}, []string{"kind", "outcome"})

		csvRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_csv_rows_total",
			Help: "Rows loaded from applied CSV uploads.",
		}, []string{"kind"})

		lookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_lookups_total",
			Help: "Public status, result and certificate lookups by outcome.",
		}, []string{"kind", "outcome"})

		feedClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "portal_feed_clients_active",
			Help: "Admin live feed websocket connections currently open.",
		})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_events_published_total",
			Help: "Admin feed events published by type.",
		}, []string{"type"})

		prometheus.MustRegister(
			requestsTotal,
			requestLatencySeconds,
			requestErrorsTotal,
			submissionsTotal,
			csvImportsTotal,
			csvRowsTotal,
			lookupsTotal,
			feedClientsActive,
			eventsPublishedTotal,
		)
	})
}

// Requests exposes the request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the request latency histogram.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// Errors exposes the error response counter.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return requestErrorsTotal
}

// Submissions counts accepted public submissions.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// CSVImports counts processed uploads by kind and outcome.
func CSVImports() *prometheus.CounterVec {
	RegisterMetrics()
	return csvImportsTotal
}

// CSVRows counts rows committed by applied uploads.
func CSVRows() *prometheus.CounterVec {
	RegisterMetrics()
	return csvRowsTotal
}

// Lookups counts public lookups by kind and outcome.
func Lookups() *prometheus.CounterVec {
	RegisterMetrics()
	return lookupsTotal
}

// FeedClients tracks open live feed connections.
func FeedClients() prometheus.Gauge {
	RegisterMetrics()
	return feedClientsActive
}

// EventsPublished counts admin feed events.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}
