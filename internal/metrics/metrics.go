// Package metrics provides Prometheus metrics for the media service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediastore_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediastore_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	listingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediastore_listings_total",
			Help: "Total directory listings",
		},
		[]string{"status"},
	)

	deletesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediastore_deletes_total",
			Help: "Total delete operations",
		},
		[]string{"status"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediastore_uploads_total",
			Help: "Total uploads",
		},
		[]string{"status"},
	)

	uploadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediastore_upload_bytes_total",
			Help: "Total bytes received by committed uploads",
		},
	)

	notifyFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediastore_notify_failures_total",
			Help: "Modification notifications that returned an error or panicked",
		},
	)

	authDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediastore_auth_decisions_total",
			Help: "Authorization gate decisions",
		},
		[]string{"result"},
	)

	sseClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediastore_sse_clients",
			Help: "Number of connected SSE clients",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordListing records a directory listing.
func RecordListing(success bool) {
	listingsTotal.WithLabelValues(status(success)).Inc()
}

// RecordDelete records a delete.
func RecordDelete(success bool) {
	deletesTotal.WithLabelValues(status(success)).Inc()
}

// RecordUpload records a finished upload. Only committed uploads count bytes.
func RecordUpload(bytes int64, success bool) {
	if success {
		uploadBytes.Add(float64(bytes))
	}
	uploadsTotal.WithLabelValues(status(success)).Inc()
}

// RecordNotifyFailure records a failed modification notification.
func RecordNotifyFailure() {
	notifyFailuresTotal.Inc()
}

// RecordAuthDecision records an authorization gate decision.
func RecordAuthDecision(authorized bool) {
	result := "allowed"
	if !authorized {
		result = "denied"
	}
	authDecisionsTotal.WithLabelValues(result).Inc()
}

// SetSSEClients sets the number of connected SSE clients.
func SetSSEClients(n int) {
	sseClients.Set(float64(n))
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
