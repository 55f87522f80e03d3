package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dialog-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "dialog_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "dialog_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "endpoint"},
	)

	DialogsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "dialog_api",
			Name:      "dialogs_created_total",
			Help:      "Dialogs created",
		},
	)

	// Creation races resolved by re-reading the winning row
	DialogCreateConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "dialog_api",
			Name:      "dialog_create_conflicts_total",
			Help:      "Dialog creations that lost the uniqueness race",
		},
	)

	MessagesSentTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "dialog_api",
			Name:      "messages_sent_total",
			Help:      "Messages appended to dialogs",
		},
	)

	MessagesMarkedReadTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jan",
			Subsystem: "dialog_api",
			Name:      "messages_marked_read_total",
			Help:      "Messages flipped from unread to read",
		},
	)

	// DB query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jan",
			Subsystem: "dialog_api",
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"query_type", "status"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordDBQuery records a database query
func RecordDBQuery(queryType string, durationSec float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DBQueryDuration.WithLabelValues(queryType, status).Observe(durationSec)
}

func RecordDialogCreated() {
	DialogsCreatedTotal.Inc()
}

func RecordDialogCreateConflict() {
	DialogCreateConflictsTotal.Inc()
}

func RecordMessageSent() {
	MessagesSentTotal.Inc()
}

// RecordMessagesRead adds n to the read counter; zero is ignored.
func RecordMessagesRead(n int64) {
	if n > 0 {
		MessagesMarkedReadTotal.Add(float64(n))
	}
}
