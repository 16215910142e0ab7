package logger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics shared across the engine and the API service.

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	ComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_compute_duration_seconds",
			Help:    "Duration of engine compute stages in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		},
		[]string{"stage"}, // "sessions", "status" or "composite"
	)

	DaysSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_days_skipped_total",
			Help: "Trading days dropped from output by cause",
		},
		[]string{"cause"}, // "no_bars" or "bad_open"
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_record_cache_hits_total",
			Help: "Record cache lookups by outcome",
		},
		[]string{"outcome"}, // "hit" or "miss"
	)

	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors",
		},
		[]string{"service", "error_type"},
	)
)
