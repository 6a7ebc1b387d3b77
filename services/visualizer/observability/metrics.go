// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the visualizer
// service.
//
// # Description
//
// Metrics cover the HTTP sorting endpoints and the WebSocket playback
// sessions:
//   - Sort requests by endpoint, algorithm and status
//   - Steps per run and request latency histograms
//   - Input size histogram and rejected input counter
//   - Active playback sessions, frames sent, commands received
//
// Metrics are exposed via the /metrics endpoint.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
// Every helper method is a no-op on a nil *Metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

const metricsNamespace = "visualizer"

const (
	sortSubsystem     = "sort"
	playbackSubsystem = "playback"
)

// Metrics holds all Prometheus metrics for the visualizer service.
type Metrics struct {
	// SortRequestsTotal counts sort runs served over HTTP.
	// Labels: endpoint (sort, compare), algorithm, status (success, error)
	SortRequestsTotal *prometheus.CounterVec

	// StepsPerRun observes trace length.
	// Labels: algorithm
	StepsPerRun *prometheus.HistogramVec

	// RequestDurationSeconds measures handler latency.
	// Labels: endpoint
	RequestDurationSeconds *prometheus.HistogramVec

	// InputSize observes the length of arrays accepted for sorting.
	// Labels: endpoint
	InputSize *prometheus.HistogramVec

	// RejectedInputsTotal counts requests refused before reaching the engine.
	// Labels: endpoint, reason (validation, unknown_algorithm, parse)
	RejectedInputsTotal *prometheus.CounterVec

	// ActiveSessions tracks open playback WebSocket sessions.
	ActiveSessions prometheus.Gauge

	// FramesSentTotal counts frames written to playback sessions.
	FramesSentTotal prometheus.Counter

	// CommandsTotal counts playback commands by action and outcome.
	// Labels: action, status (ok, error, rate_limited)
	CommandsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics on reg.
//
// # Description
//
// Pass prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
//
// # Limitations
//
//   - Panics if the same metrics are registered twice on one registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SortRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sortSubsystem,
				Name:      "requests_total",
				Help:      "Total number of sort runs by endpoint, algorithm and status",
			},
			[]string{"endpoint", "algorithm", "status"},
		),

		StepsPerRun: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: sortSubsystem,
				Name:      "steps_per_run",
				Help:      "Number of steps recorded per sort run",
				Buckets:   prometheus.ExponentialBuckets(4, 4, 8),
			},
			[]string{"algorithm"},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: sortSubsystem,
				Name:      "request_duration_seconds",
				Help:      "Sort request handling time in seconds",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"endpoint"},
		),

		InputSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: sortSubsystem,
				Name:      "input_size",
				Help:      "Length of arrays accepted for sorting",
				Buckets:   []float64{2, 5, 10, 25, 50, 75, 100},
			},
			[]string{"endpoint"},
		),

		RejectedInputsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: sortSubsystem,
				Name:      "rejected_inputs_total",
				Help:      "Requests refused before reaching the engine",
			},
			[]string{"endpoint", "reason"},
		),

		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: playbackSubsystem,
				Name:      "active_sessions",
				Help:      "Number of open playback sessions",
			},
		),

		FramesSentTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: playbackSubsystem,
				Name:      "frames_sent_total",
				Help:      "Frames written to playback sessions",
			},
		),

		CommandsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: playbackSubsystem,
				Name:      "commands_total",
				Help:      "Playback commands received by action and status",
			},
			[]string{"action", "status"},
		),
	}
}

// =============================================================================
// Label Values
// =============================================================================

// Endpoint labels the HTTP surface that ran the engine.
type Endpoint string

const (
	EndpointSort     Endpoint = "sort"
	EndpointCompare  Endpoint = "compare"
	EndpointParse    Endpoint = "parse"
	EndpointGenerate Endpoint = "generate"
	EndpointPlayback Endpoint = "playback"
)

// RejectReason labels why an input never reached the engine.
type RejectReason string

const (
	RejectValidation       RejectReason = "validation"
	RejectUnknownAlgorithm RejectReason = "unknown_algorithm"
	RejectParse            RejectReason = "parse"
)

// CommandStatus labels the outcome of a playback command.
type CommandStatus string

const (
	CommandOK          CommandStatus = "ok"
	CommandError       CommandStatus = "error"
	CommandRateLimited CommandStatus = "rate_limited"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRun records one engine run served by endpoint.
func (m *Metrics) RecordRun(endpoint Endpoint, algorithm string, inputLen, steps int) {
	if m == nil {
		return
	}
	m.SortRequestsTotal.WithLabelValues(string(endpoint), algorithm, "success").Inc()
	m.StepsPerRun.WithLabelValues(algorithm).Observe(float64(steps))
	m.InputSize.WithLabelValues(string(endpoint)).Observe(float64(inputLen))
}

// RecordRunError records a run that failed after validation passed.
func (m *Metrics) RecordRunError(endpoint Endpoint, algorithm string) {
	if m == nil {
		return
	}
	m.SortRequestsTotal.WithLabelValues(string(endpoint), algorithm, "error").Inc()
}

// RecordRejected records a refused input.
func (m *Metrics) RecordRejected(endpoint Endpoint, reason RejectReason) {
	if m == nil {
		return
	}
	m.RejectedInputsTotal.WithLabelValues(string(endpoint), string(reason)).Inc()
}

// ObserveDuration records handler latency in seconds.
func (m *Metrics) ObserveDuration(endpoint Endpoint, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDurationSeconds.WithLabelValues(string(endpoint)).Observe(seconds)
}

// SessionStarted increments the active sessions gauge.
func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

// SessionEnded decrements the active sessions gauge.
func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// FrameSent counts one frame written to a session.
func (m *Metrics) FrameSent() {
	if m == nil {
		return
	}
	m.FramesSentTotal.Inc()
}

// RecordCommand counts one playback command.
func (m *Metrics) RecordCommand(action string, status CommandStatus) {
	if m == nil {
		return
	}
	m.CommandsTotal.WithLabelValues(action, string(status)).Inc()
}
