// Package metrics declares the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route pattern, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studio",
		Name:      "http_requests_total",
		Help:      "HTTP requests handled, by route, method and status code.",
	}, []string{"route", "method", "status"})

	// HTTPDuration observes request latency by route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "studio",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency, by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	// UploadTickets counts upload ticket requests by result.
	UploadTickets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studio",
		Name:      "upload_tickets_total",
		Help:      "Presigned upload tickets requested, by result.",
	}, []string{"result"})

	// StorageCleanups counts best-effort object removals by outcome
	// (deleted, skipped, failed).
	StorageCleanups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "studio",
		Name:      "storage_cleanups_total",
		Help:      "Best-effort storage deletions triggered by gallery changes, by outcome.",
	}, []string{"outcome"})
)
