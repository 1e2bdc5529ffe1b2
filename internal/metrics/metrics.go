// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics provides Prometheus metrics for pdfdesk.
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
	// Transformations
	transformationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfdesk_transformations_total",
			Help: "Total transformations by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	transformationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdfdesk_transformation_duration_seconds",
			Help:    "Time spent inside a tool adapter",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	inputBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfdesk_input_bytes_total",
			Help: "Bytes handed to tool adapters",
		},
		[]string{"tool"},
	)

	// Intake
	intakeRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfdesk_intake_rejections_total",
			Help: "Files rejected because of their type",
		},
		[]string{"tool"},
	)

	// Release gate
	gateEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfdesk_gate_events_total",
			Help: "Release modal transitions",
		},
		[]string{"tool", "event"},
	)

	releasedBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pdfdesk_released_bytes_total",
			Help: "Total bytes of released artifacts",
		},
	)

	// Server
	activeDesks = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pdfdesk_active_desks",
			Help: "Number of live desks held by the server",
		},
	)

	downloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfdesk_downloads_total",
			Help: "Download token redemptions",
		},
		[]string{"status"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pdfdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pdfdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Gate event labels.
const (
	GateOpened    = "opened"
	GateRejected  = "rejected"
	GateValidated = "validated"
	GateReleased  = "released"
	GateDismissed = "dismissed"
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordTransformation records one settled transformation. outcome is
// "success", "error" or "busy".
func RecordTransformation(tool, outcome string, bytesIn int, duration time.Duration) {
	transformationsTotal.WithLabelValues(tool, outcome).Inc()
	if outcome == "busy" {
		return
	}
	transformationDuration.WithLabelValues(tool).Observe(duration.Seconds())
	inputBytes.WithLabelValues(tool).Add(float64(bytesIn))
}

// RecordIntakeRejection records a file refused by a tool's type check.
func RecordIntakeRejection(tool string) {
	intakeRejectionsTotal.WithLabelValues(tool).Inc()
}

// RecordGateEvent records a release modal transition.
func RecordGateEvent(tool, event string) {
	gateEventsTotal.WithLabelValues(tool, event).Inc()
}

// RecordRelease records the size of a released artifact.
func RecordRelease(size int) {
	releasedBytes.Add(float64(size))
}

// SetActiveDesks sets the number of live desks.
func SetActiveDesks(n int) {
	activeDesks.Set(float64(n))
}

// RecordDownload records a download token redemption.
func RecordDownload(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	downloadsTotal.WithLabelValues(status).Inc()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
