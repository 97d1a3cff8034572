// Package metrics provides Prometheus metrics for the cardfs server.
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
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfs_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cardfs_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Transfer metrics
	bytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfs_bytes_downloaded_total",
			Help: "Total bytes streamed to clients",
		},
	)

	bytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfs_bytes_uploaded_total",
			Help: "Total bytes written to the volume by uploads",
		},
	)

	downloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfs_downloads_total",
			Help: "Total number of downloads",
		},
		[]string{"status"},
	)

	uploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cardfs_uploads_total",
			Help: "Total number of uploaded files",
		},
		[]string{"status"},
	)

	// Delete metrics
	deletesAttempted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfs_delete_attempted_total",
			Help: "Total paths submitted for deletion",
		},
	)

	deletesSucceeded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cardfs_delete_succeeded_total",
			Help: "Total paths fully deleted",
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

// RecordDownload records a finished download.
func RecordDownload(bytes int64, success bool) {
	bytesDownloaded.Add(float64(bytes))
	downloadsTotal.WithLabelValues(status(success)).Inc()
}

// RecordUpload records one uploaded file.
func RecordUpload(bytes uint64, success bool) {
	bytesUploaded.Add(float64(bytes))
	uploadsTotal.WithLabelValues(status(success)).Inc()
}

// RecordDelete records the outcome of a single or batch delete.
func RecordDelete(attempted, succeeded uint) {
	deletesAttempted.Add(float64(attempted))
	deletesSucceeded.Add(float64(succeeded))
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
