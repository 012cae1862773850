// Package metrics defines the prometheus metrics emitted by batch and
// mcp: connection attempts, round-trip latency, and per-outcome
// counts. Grounded on the promauto package-level-var registration
// pattern used throughout m-lab-tcp-info/metrics/metrics.go.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectAttempts counts PLC connection attempts by outcome
	// ("ok" or "error").
	ConnectAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "melsec_connect_attempts_total",
			Help: "PLC connection attempts by outcome",
		},
		[]string{"outcome"},
	)

	// RoundTripLatency tracks one request/response cycle's latency, in
	// seconds, labeled by the command that made it ("bit", "word", or
	// "random").
	RoundTripLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "melsec_round_trip_latency_seconds",
			Help:    "PLC request/response round-trip latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"class"},
	)

	// ReadOutcomes counts individual device reads by device class and
	// success/error outcome.
	ReadOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "melsec_read_outcomes_total",
			Help: "device reads by class and outcome",
		},
		[]string{"class", "outcome"},
	)

	// BatchSize tracks how many device specs a single batch call
	// requested.
	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "melsec_batch_size",
			Help:    "number of device specs per batch read call",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512},
		},
	)
)
