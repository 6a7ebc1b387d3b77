// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes holds the wire types of the visualizer HTTP and
// WebSocket API.
package datatypes

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mitchell-917/algorithm-visualizer/pkg/arraygen"
	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
)

// validate is shared by every request type. Custom tags:
//   - algorithm: a name sorting.ParseAlgorithm accepts
//   - preset: an arraygen preset name
//   - finite: a float that is neither NaN nor infinite
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("algorithm", validateAlgorithm)
	_ = validate.RegisterValidation("preset", validatePreset)
	_ = validate.RegisterValidation("finite", validateFinite)
}

func validateAlgorithm(fl validator.FieldLevel) bool {
	_, err := sorting.ParseAlgorithm(fl.Field().String())
	return err == nil
}

func validatePreset(fl validator.FieldLevel) bool {
	name := arraygen.Preset(fl.Field().String())
	for _, p := range arraygen.Presets() {
		if p == name {
			return true
		}
	}
	return false
}

func validateFinite(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// =============================================================================
// Sorting
// =============================================================================

// SortRequest asks for one recorded run.
type SortRequest struct {
	RequestID string    `json:"request_id" validate:"omitempty,uuid4"`
	Algorithm string    `json:"algorithm" validate:"required,algorithm"`
	Values    []float64 `json:"values" validate:"required,min=2,max=100,dive,finite"`
}

// Validate checks the request against its struct tags.
func (r *SortRequest) Validate() error {
	return validate.Struct(r)
}

// EnsureDefaults fills in a RequestID when the client sent none.
func (r *SortRequest) EnsureDefaults() {
	if r.RequestID == "" {
		r.RequestID = uuid.NewString()
	}
}

// SortResponse is a recorded run plus its summary.
type SortResponse struct {
	RequestID   string             `json:"request_id"`
	Algorithm   sorting.Algorithm  `json:"algorithm"`
	Steps       []sorting.Step     `json:"steps"`
	SortedArray []float64          `json:"sortedArray"`
	Stats       sorting.TraceStats `json:"stats"`
	DurationMs  float64            `json:"duration_ms"`
}

// CompareRequest runs several algorithms on the same input.
// An empty Algorithms list means every registered algorithm.
type CompareRequest struct {
	Algorithms []string  `json:"algorithms" validate:"omitempty,max=6,unique,dive,algorithm"`
	Values     []float64 `json:"values" validate:"required,min=2,max=100,dive,finite"`
}

// Validate checks the request against its struct tags.
func (r *CompareRequest) Validate() error {
	return validate.Struct(r)
}

// CompareResult summarises one algorithm's run without the full trace.
type CompareResult struct {
	Algorithm  sorting.Algorithm  `json:"algorithm"`
	Name       string             `json:"name"`
	Stats      sorting.TraceStats `json:"stats"`
	DurationMs float64            `json:"duration_ms"`
}

// CompareResponse lists results in canonical algorithm order.
type CompareResponse struct {
	Results     []CompareResult `json:"results"`
	SortedArray []float64       `json:"sortedArray"`
}

// =============================================================================
// Arrays
// =============================================================================

// GenerateRequest asks for a generated input array. Size 0 means the
// default size; an empty Preset means random.
type GenerateRequest struct {
	Preset string  `json:"preset" validate:"omitempty,preset"`
	Size   int     `json:"size" validate:"gte=0,lte=100"`
	Seed   *uint64 `json:"seed,omitempty"`
}

// Validate checks the request against its struct tags.
func (r *GenerateRequest) Validate() error {
	return validate.Struct(r)
}

// ParseRequest carries user-typed custom input.
type ParseRequest struct {
	Input string `json:"input" validate:"max=4096"`
}

// Validate checks the request against its struct tags.
func (r *ParseRequest) Validate() error {
	return validate.Struct(r)
}

// ArrayResponse returns a generated or parsed array.
type ArrayResponse struct {
	Values []float64 `json:"values"`
	Preset string    `json:"preset,omitempty"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Details   string `json:"details,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewErrorResponse stamps msg with the current time.
func NewErrorResponse(msg, details string) ErrorResponse {
	return ErrorResponse{Error: msg, Details: details, Timestamp: time.Now().UnixMilli()}
}
