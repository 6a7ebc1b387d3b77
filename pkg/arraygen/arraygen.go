// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package arraygen produces and validates the arrays handed to the sorting
// engine.
//
// # Description
//
// The sorting engine accepts any finite input and never fails. Everything
// that can be wrong with user input is caught here instead: unparsable
// numbers, non-finite values, and arrays that are too short or too long for
// the visualizer.
package arraygen

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// Size bounds for user supplied arrays.
const (
	MinCustomValues = 2
	MaxCustomValues = 100

	// DefaultSize matches the initial array of a fresh visualizer session.
	DefaultSize = 50

	// Default inclusive value range for random arrays.
	DefaultMin = 5
	DefaultMax = 100
)

var (
	// ErrEmptyInput is returned when no values were supplied.
	ErrEmptyInput = errors.New("please enter some values")
	// ErrTooFewValues is returned for fewer than MinCustomValues values.
	ErrTooFewValues = fmt.Errorf("please enter at least %d values", MinCustomValues)
	// ErrTooManyValues is returned for more than MaxCustomValues values.
	ErrTooManyValues = fmt.Errorf("maximum %d values allowed", MaxCustomValues)
	// ErrInvalidNumber is returned for a token that is not a finite integer.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidSize is returned when a generator is asked for a bad size.
	ErrInvalidSize = errors.New("invalid array size")
	// ErrUnknownPreset is returned for an unrecognised preset name.
	ErrUnknownPreset = errors.New("unknown preset")
)

// Preset names a shape of generated input.
type Preset string

const (
	PresetRandom    Preset = "random"
	PresetSorted    Preset = "sorted"
	PresetReverse   Preset = "reverse"
	PresetNearly    Preset = "nearly"
	PresetFewUnique Preset = "few-unique"
)

// Presets returns every preset in display order.
func Presets() []Preset {
	return []Preset{PresetRandom, PresetSorted, PresetReverse, PresetNearly, PresetFewUnique}
}

// fewUniqueValues is the pool the few-unique preset draws from.
var fewUniqueValues = []float64{10, 20, 30, 40, 50}

// =============================================================================
// Generator
// =============================================================================

// Generator creates input arrays from an injectable random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a Generator. A nil rng uses a randomly seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

// Random returns size values drawn uniformly from [min, max].
func (g *Generator) Random(size, min, max int) ([]float64, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if min > max {
		return nil, fmt.Errorf("%w: min %d exceeds max %d", ErrInvalidSize, min, max)
	}
	out := make([]float64, size)
	for i := range out {
		out[i] = float64(g.rng.IntN(max-min+1) + min)
	}
	return out, nil
}

// Preset returns size values shaped by p.
//
// # Description
//
// Presets exercise the best and worst cases of the algorithms:
//   - random: values in [1, 100]
//   - sorted: 1..size ascending
//   - reverse: size..1 descending
//   - nearly: sorted, then floor(size*0.1) random pair swaps
//   - few-unique: values drawn from {10, 20, 30, 40, 50}
func (g *Generator) Preset(p Preset, size int) ([]float64, error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	out := make([]float64, size)
	switch p {
	case PresetRandom:
		return g.Random(size, 1, 100)
	case PresetSorted:
		for i := range out {
			out[i] = float64(i + 1)
		}
	case PresetReverse:
		for i := range out {
			out[i] = float64(size - i)
		}
	case PresetNearly:
		for i := range out {
			out[i] = float64(i + 1)
		}
		for i := 0; i < size/10; i++ {
			a, b := g.rng.IntN(size), g.rng.IntN(size)
			out[a], out[b] = out[b], out[a]
		}
	case PresetFewUnique:
		for i := range out {
			out[i] = fewUniqueValues[g.rng.IntN(len(fewUniqueValues))]
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, string(p))
	}
	return out, nil
}

// =============================================================================
// Parsing and Validation
// =============================================================================

// Parse reads a comma or whitespace separated list of integers.
//
// # Description
//
// Parse is the custom-array entry point. It rejects anything the engine
// should never see and returns the user-facing reason.
//
// # Outputs
//
//   - []float64: Parsed values in input order.
//   - error: ErrEmptyInput, ErrInvalidNumber, ErrTooFewValues or
//     ErrTooManyValues (possibly wrapped).
func Parse(input string) ([]float64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, ErrEmptyInput
	}

	fields := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	values := make([]float64, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidNumber, f)
		}
		values = append(values, float64(n))
	}

	if err := ValidateCustom(values); err != nil {
		return nil, err
	}
	return values, nil
}

// ValidateCustom checks a custom array's size and that every value is finite.
func ValidateCustom(values []float64) error {
	if len(values) < MinCustomValues {
		return ErrTooFewValues
	}
	if len(values) > MaxCustomValues {
		return ErrTooManyValues
	}
	return ValidateFinite(values)
}

// ValidateFinite rejects NaN and infinite values.
func ValidateFinite(values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w at position %d", ErrInvalidNumber, i)
		}
	}
	return nil
}
