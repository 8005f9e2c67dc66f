// Waymark - Real-Time Location Sharing Backend
// Copyright 2026 Waymark Contributors
// SPDX-License-Identifier: MIT
// https://github.com/waymark-app/waymark

// Package metrics provides Prometheus instrumentation for Waymark:
// API endpoint latency and throughput, document store operations,
// media uploads, and push-channel connections. All collectors are
// registered on the default registry and exposed at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Document store metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of document store operations",
		},
		[]string{"operation", "collection", "status"},
	)

	// Media upload metrics
	MediaFilesSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_files_saved_total",
			Help: "Total number of uploaded media files persisted to disk",
		},
		[]string{"kind"}, // "photo" or "video"
	)

	MediaBytesSaved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_bytes_saved_total",
			Help: "Total bytes of uploaded media persisted to disk",
		},
	)

	// Push-channel metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of connected push-channel subscribers",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of push-channel messages broadcast",
		},
		[]string{"event"},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of push-channel messages dropped due to full buffers",
		},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the active request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreOperation records a document store operation outcome.
func RecordStoreOperation(operation, collection string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreOperations.WithLabelValues(operation, collection, status).Inc()
}

// RecordMediaSaved records a persisted upload.
func RecordMediaSaved(kind string, bytes int64) {
	MediaFilesSaved.WithLabelValues(kind).Inc()
	MediaBytesSaved.Add(float64(bytes))
}

// FormatStatusCode converts an HTTP status to its label form.
func FormatStatusCode(code int) string {
	return strconv.Itoa(code)
}
