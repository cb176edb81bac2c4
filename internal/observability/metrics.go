// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ledger metrics
	TradesRecorded  prometheus.Counter
	DuplicateTrades prometheus.Counter

	// Price history metrics
	SnapshotsRecorded prometheus.Counter

	// Chat metrics
	ChatMessagesPosted prometheus.Counter
	ChatSubscribers    prometheus.Gauge

	// Auth metrics
	AuthRejections *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestDuration *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sames"
	}

	return &Metrics{
		TradesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "trades_recorded_total",
			Help:      "Total number of trades inserted into the ledger",
		}),
		DuplicateTrades: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "duplicate_trades_total",
			Help:      "Total number of trade submissions skipped as duplicates",
		}),
		SnapshotsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prices",
			Name:      "snapshots_recorded_total",
			Help:      "Total number of price snapshots recorded",
		}),
		ChatMessagesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "messages_posted_total",
			Help:      "Total number of chat messages posted",
		}),
		ChatSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "subscribers",
			Help:      "Current number of connected chat subscribers",
		}),
		AuthRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "rejections_total",
			Help:      "Total number of rejected requests by reason",
		}, []string{"reason"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTrade increments the trade counters. duplicate marks a submission
// that matched an already-recorded transaction signature.
func RecordTrade(duplicate bool) {
	if duplicate {
		DefaultMetrics.DuplicateTrades.Inc()
		return
	}
	DefaultMetrics.TradesRecorded.Inc()
}

// RecordSnapshot increments the snapshots recorded counter.
func RecordSnapshot() {
	DefaultMetrics.SnapshotsRecorded.Inc()
}

// RecordChatMessage increments the chat messages posted counter.
func RecordChatMessage() {
	DefaultMetrics.ChatMessagesPosted.Inc()
}

// RecordAuthRejection records a rejected request by reason.
func RecordAuthRejection(reason string) {
	DefaultMetrics.AuthRejections.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records HTTP request duration.
func RecordHTTPRequest(method, path, status string, seconds float64) {
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
