// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/datatypes"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/observability"
	"golang.org/x/sync/errgroup"
)

// HandleSort records one algorithm run.
//
// # Description
//
// POST /v1/sort with {"algorithm": "...", "values": [...]}. The response
// carries the full step trace, the sorted array and trace statistics.
//
// # Outputs
//
//   - 200: datatypes.SortResponse
//   - 400: unknown algorithm, malformed body or out-of-bounds values
func HandleSort(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		const endpoint = observability.EndpointSort
		defer func() { deps.Metrics.ObserveDuration(endpoint, time.Since(start).Seconds()) }()

		var req datatypes.SortRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "invalid request body", err)
			return
		}
		algo, err := sorting.ParseAlgorithm(req.Algorithm)
		if err != nil {
			deps.reject(c, endpoint, observability.RejectUnknownAlgorithm, "unknown algorithm", err)
			return
		}
		if err := req.Validate(); err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "invalid request", err)
			return
		}
		if err := deps.checkSize(req.Values); err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "too many values", err)
			return
		}
		req.EnsureDefaults()

		run, elapsed, err := deps.runEngine(c.Request.Context(), endpoint, algo, req.Values)
		if err != nil {
			slog.Error("Sort run failed", "request_id", req.RequestID, "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.NewErrorResponse("sort failed", err.Error()))
			return
		}

		slog.Info("Sort run recorded",
			"request_id", req.RequestID,
			"algorithm", string(algo),
			"size", len(req.Values),
			"steps", len(run.Steps))

		c.JSON(http.StatusOK, datatypes.SortResponse{
			RequestID:   req.RequestID,
			Algorithm:   algo,
			Steps:       run.Steps,
			SortedArray: run.SortedArray,
			Stats:       sorting.Stats(run.Steps, len(run.Steps)),
			DurationMs:  millis(elapsed),
		})
	}
}

// HandleCompare runs several algorithms on one input concurrently.
//
// # Description
//
// POST /v1/sort/compare with {"values": [...], "algorithms": [...]}. An
// empty algorithm list runs all of them. Each run gets its own snapshot of
// the input, so the goroutines share nothing but the read-only request.
// Results come back in canonical order without full traces.
func HandleCompare(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		const endpoint = observability.EndpointCompare
		defer func() { deps.Metrics.ObserveDuration(endpoint, time.Since(start).Seconds()) }()

		var req datatypes.CompareRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "invalid request body", err)
			return
		}
		if err := req.Validate(); err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "invalid request", err)
			return
		}
		if err := deps.checkSize(req.Values); err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "too many values", err)
			return
		}

		algos, err := compareSet(req.Algorithms)
		if err != nil {
			deps.reject(c, endpoint, observability.RejectUnknownAlgorithm, "unknown algorithm", err)
			return
		}

		results := make([]datatypes.CompareResult, len(algos))
		var sorted []float64
		g, ctx := errgroup.WithContext(c.Request.Context())
		for i, algo := range algos {
			g.Go(func() error {
				run, elapsed, err := deps.runEngine(ctx, endpoint, algo, req.Values)
				if err != nil {
					return err
				}
				info, _ := sorting.Lookup(algo)
				results[i] = datatypes.CompareResult{
					Algorithm:  algo,
					Name:       info.Name,
					Stats:      sorting.Stats(run.Steps, len(run.Steps)),
					DurationMs: millis(elapsed),
				}
				if i == 0 {
					sorted = run.SortedArray
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			slog.Error("Compare run failed", "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.NewErrorResponse("compare failed", err.Error()))
			return
		}

		c.JSON(http.StatusOK, datatypes.CompareResponse{Results: results, SortedArray: sorted})
	}
}

// compareSet resolves requested names to canonical order. Empty means all.
func compareSet(names []string) ([]sorting.Algorithm, error) {
	if len(names) == 0 {
		return sorting.Algorithms(), nil
	}
	want := make(map[sorting.Algorithm]bool, len(names))
	for _, n := range names {
		a, err := sorting.ParseAlgorithm(n)
		if err != nil {
			return nil, err
		}
		want[a] = true
	}
	out := make([]sorting.Algorithm, 0, len(want))
	for _, a := range sorting.Algorithms() {
		if want[a] {
			out = append(out, a)
		}
	}
	return out, nil
}
