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
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mitchell-917/algorithm-visualizer/pkg/arraygen"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/datatypes"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/observability"
)

// HandleGenerate returns a generated input array.
//
// POST /v1/arrays/generate with {"preset": "...", "size": n, "seed": s}.
// No preset gives the fresh-session array (random values in 5..100); size
// 0 gives the configured default size. A seed makes the output repeatable.
func HandleGenerate(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		const endpoint = observability.EndpointGenerate

		var req datatypes.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "invalid request body", err)
			return
		}
		if err := req.Validate(); err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "invalid request", err)
			return
		}

		var rng *rand.Rand
		if req.Seed != nil {
			rng = rand.New(rand.NewPCG(*req.Seed, *req.Seed))
		}
		values, err := deps.generate(arraygen.NewGenerator(rng), arraygen.Preset(req.Preset), req.Size)
		if err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "cannot generate array", err)
			return
		}
		c.JSON(http.StatusOK, datatypes.ArrayResponse{Values: values, Preset: req.Preset})
	}
}

// HandleParse turns user-typed text into an array, or a 400 whose error
// is the message to show the user.
func HandleParse(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		const endpoint = observability.EndpointParse

		var req datatypes.ParseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "invalid request body", err)
			return
		}
		if err := req.Validate(); err != nil {
			deps.reject(c, endpoint, observability.RejectValidation, "invalid request", err)
			return
		}

		values, err := arraygen.Parse(req.Input)
		if err != nil {
			deps.reject(c, endpoint, observability.RejectParse, err.Error(), nil)
			return
		}
		c.JSON(http.StatusOK, datatypes.ArrayResponse{Values: values})
	}
}

// generate applies the playback size bounds and the fresh-array default.
func (d Deps) generate(g *arraygen.Generator, preset arraygen.Preset, size int) ([]float64, error) {
	if size == 0 {
		size = d.Playback.DefaultSize
	}
	if size > d.Playback.MaxSize {
		return nil, fmt.Errorf("%w: %d exceeds maximum %d", arraygen.ErrInvalidSize, size, d.Playback.MaxSize)
	}
	if preset == "" {
		return g.Random(size, arraygen.DefaultMin, arraygen.DefaultMax)
	}
	return g.Preset(preset, size)
}
