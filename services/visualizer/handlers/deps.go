// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the visualizer's gin handlers.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mitchell-917/algorithm-visualizer/pkg/arraygen"
	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/config"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/datatypes"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/observability"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Deps carries what the handlers share. Nil metrics are allowed.
type Deps struct {
	Metrics  *observability.Metrics
	Engine   *telemetry.EngineMetrics
	Playback config.PlaybackConfig

	// Sessions tracks playback sockets for shutdown. Nil disables tracking.
	Sessions *Sessions

	// Delay overrides the playback speed-to-delay mapping. Nil uses
	// playback.SpeedToDelay.
	Delay func(speed int) time.Duration
}

// DefaultDeps returns Deps with default playback bounds and no metrics.
func DefaultDeps() Deps {
	return Deps{Playback: config.DefaultConfig().Playback}
}

// runEngine executes one algorithm inside a span and reports it to both
// metric layers.
func (d Deps) runEngine(ctx context.Context, endpoint observability.Endpoint, algo sorting.Algorithm, values []float64) (sorting.SortRun, time.Duration, error) {
	ctx, span := telemetry.StartSpan(ctx, "visualizer.engine.run",
		trace.WithAttributes(
			attribute.String("algorithm", string(algo)),
			attribute.Int("input.size", len(values)),
		))
	defer span.End()

	start := time.Now()
	run, err := sorting.Run(algo, values)
	elapsed := time.Since(start)
	if err != nil {
		telemetry.RecordError(span, err)
		d.Metrics.RecordRunError(endpoint, string(algo))
		return sorting.SortRun{}, elapsed, err
	}

	span.SetAttributes(attribute.Int("steps", len(run.Steps)))
	telemetry.SetSpanOK(span)
	d.Metrics.RecordRun(endpoint, string(algo), len(values), len(run.Steps))
	d.Engine.RecordRun(ctx, algo, len(values), run, elapsed)
	return run, elapsed, nil
}

// checkSize enforces the configured Playback.MaxSize on an input array.
func (d Deps) checkSize(values []float64) error {
	if len(values) > d.Playback.MaxSize {
		return fmt.Errorf("%w: %d values exceeds maximum %d", arraygen.ErrTooManyValues, len(values), d.Playback.MaxSize)
	}
	return nil
}

// reject writes a 400 and counts the refused input.
func (d Deps) reject(c *gin.Context, endpoint observability.Endpoint, reason observability.RejectReason, msg string, err error) {
	d.Metrics.RecordRejected(endpoint, reason)
	details := ""
	if err != nil {
		details = err.Error()
	}
	slog.Warn("Rejected request",
		"endpoint", string(endpoint),
		"reason", string(reason),
		"error", details,
		"trace_id", telemetry.TraceID(c.Request.Context()))
	c.JSON(http.StatusBadRequest, datatypes.NewErrorResponse(msg, details))
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
