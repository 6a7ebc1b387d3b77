// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EngineMetrics instruments sorting engine runs through the OTel metric API.
//
// # Description
//
// The engine itself stays free of observability code. Callers that run it
// (HTTP handlers, playback sessions) report each finished run here.
//
// # Thread Safety
//
// Safe for concurrent use. A nil *EngineMetrics records nothing.
type EngineMetrics struct {
	// StepsTotal counts recorded steps. Attributes: algorithm, kind.
	StepsTotal metric.Int64Counter

	// RunDuration records wall time of one engine run in seconds.
	// Attributes: algorithm.
	RunDuration metric.Float64Histogram

	// InputSize records the length of the array handed to the engine.
	// Attributes: algorithm.
	InputSize metric.Int64Histogram
}

// NewEngineMetrics creates the engine instruments on meter.
//
// # Example
//
//	m, err := telemetry.NewEngineMetrics(otel.Meter(telemetry.TracerName))
//	if err != nil {
//	    return fmt.Errorf("engine metrics: %w", err)
//	}
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	m := &EngineMetrics{}
	var err error

	m.StepsTotal, err = meter.Int64Counter(
		"visualizer_engine_steps_total",
		metric.WithDescription("Steps recorded by the sorting engine"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine_steps_total: %w", err)
	}

	m.RunDuration, err = meter.Float64Histogram(
		"visualizer_engine_run_duration_seconds",
		metric.WithDescription("Sorting engine run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.00001, 0.0001, 0.001, 0.01, 0.1, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine_run_duration_seconds: %w", err)
	}

	m.InputSize, err = meter.Int64Histogram(
		"visualizer_engine_input_size",
		metric.WithDescription("Length of arrays sorted by the engine"),
		metric.WithUnit("{element}"),
		metric.WithExplicitBucketBoundaries(2, 5, 10, 25, 50, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("create engine_input_size: %w", err)
	}

	return m, nil
}

// RecordRun reports one finished engine run.
func (m *EngineMetrics) RecordRun(ctx context.Context, algorithm sorting.Algorithm, inputLen int, run sorting.SortRun, elapsed time.Duration) {
	if m == nil {
		return
	}
	algo := attribute.String("algorithm", string(algorithm))

	counts := make(map[sorting.StepKind]int64)
	for _, s := range run.Steps {
		counts[s.Kind]++
	}
	for kind, n := range counts {
		m.StepsTotal.Add(ctx, n, metric.WithAttributes(algo, attribute.String("kind", kind.String())))
	}

	m.RunDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(algo))
	m.InputSize.Record(ctx, int64(inputLen), metric.WithAttributes(algo))
}
