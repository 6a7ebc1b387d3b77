// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package playback

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
)

var (
	// ErrNoTrace is returned by cursor operations before anything is loaded.
	ErrNoTrace = errors.New("no trace loaded")
	// ErrClosed is returned once the player has been closed.
	ErrClosed = errors.New("player closed")
)

// Speed bounds. Speed 1 waits a second between steps, speed 10 waits 10ms.
const (
	MinSpeed     = 1
	MaxSpeed     = 10
	DefaultSpeed = 5
)

// =============================================================================
// Elements
// =============================================================================

// ElementState is the display state of one bar.
type ElementState string

const (
	StateDefault   ElementState = "default"
	StateComparing ElementState = "comparing"
	StateSwapping  ElementState = "swapping"
	StateSorted    ElementState = "sorted"
	StatePivot     ElementState = "pivot"
	StateActive    ElementState = "active"
)

// Element pairs a value with a stable identity and a display state.
//
// When two slots are exchanged the whole Element moves, so a front end keyed
// by ID animates the bar to its new position instead of redrawing it.
type Element struct {
	ID    string       `json:"id"`
	Value float64      `json:"value"`
	State ElementState `json:"state"`
}

// NewElements wraps values in fresh elements with unique IDs.
func NewElements(values []float64) []Element {
	out := make([]Element, len(values))
	for i, v := range values {
		out[i] = Element{ID: uuid.NewString(), Value: v, State: StateDefault}
	}
	return out
}

// Values strips identity and state, leaving the engine's input snapshot.
func Values(elements []Element) []float64 {
	out := make([]float64, len(elements))
	for i, e := range elements {
		out[i] = e.Value
	}
	return out
}

// stateFor maps a step to the highlight of the elements it names. A
// single-index compare is a scan cursor rather than a pairwise comparison.
func stateFor(step sorting.Step) ElementState {
	switch step.Kind {
	case sorting.KindCompare:
		if len(step.Indices) == 1 {
			return StateActive
		}
		return StateComparing
	case sorting.KindSwap:
		return StateSwapping
	case sorting.KindPivot:
		return StatePivot
	case sorting.KindSorted:
		return StateSorted
	default:
		return StateDefault
	}
}

// materialize applies one step to the visual array in place.
//
// Values follow the replay rule. Elements named by the step take its
// highlight; every other element falls back to default unless it is already
// sorted.
func materialize(elements []Element, step sorting.Step) {
	if step.Kind == sorting.KindSwap {
		switch {
		case len(step.Indices) == 2:
			i, j := step.Indices[0], step.Indices[1]
			if inRange(elements, i) && inRange(elements, j) {
				elements[i], elements[j] = elements[j], elements[i]
			}
		case step.IsWrite():
			if k := step.Indices[0]; inRange(elements, k) {
				elements[k].Value = *step.Value
			}
		}
	}

	highlight := stateFor(step)
	for idx := range elements {
		if containsIndex(step.Indices, idx) {
			elements[idx].State = highlight
			continue
		}
		if elements[idx].State != StateSorted {
			elements[idx].State = StateDefault
		}
	}
}

func inRange(elements []Element, i int) bool {
	return i >= 0 && i < len(elements)
}

func containsIndex(indices []int, idx int) bool {
	for _, i := range indices {
		if i == idx {
			return true
		}
	}
	return false
}

// =============================================================================
// Frames
// =============================================================================

// Tone is an audio cue for one element touched by a step. Synthesis happens
// in the front end; the driver only decides pitch and length.
type Tone struct {
	Index      int     `json:"index"`
	Frequency  float64 `json:"frequency"`
	DurationMs int     `json:"durationMs"`
}

// tonesFor returns cues for compare and swap steps, read after the step has
// been applied.
func tonesFor(step sorting.Step, elements []Element) []Tone {
	var base, perUnit float64
	var dur int
	switch step.Kind {
	case sorting.KindCompare:
		base, perUnit, dur = 200, 8, 40
	case sorting.KindSwap:
		base, perUnit, dur = 200, 10, 50
	default:
		return nil
	}

	tones := make([]Tone, 0, len(step.Indices))
	for _, idx := range step.Indices {
		if !inRange(elements, idx) {
			continue
		}
		tones = append(tones, Tone{
			Index:      idx,
			Frequency:  base + elements[idx].Value*perUnit,
			DurationMs: dur,
		})
	}
	return tones
}

// Frame is the materialized view of a trace at one cursor position.
type Frame struct {
	TraceID   string             `json:"traceId"`
	Algorithm sorting.Algorithm  `json:"algorithm"`
	Cursor    int                `json:"cursor"`
	Total     int                `json:"total"`
	Playing   bool               `json:"playing"`
	Complete  bool               `json:"complete"`
	Speed     int                `json:"speed"`
	Step      *sorting.Step      `json:"step,omitempty"`
	Elements  []Element          `json:"elements"`
	Stats     sorting.TraceStats `json:"stats"`
	Progress  float64            `json:"progress"`
	Tones     []Tone             `json:"tones,omitempty"`
}

// =============================================================================
// Speed
// =============================================================================

// ClampSpeed bounds a speed setting to [MinSpeed, MaxSpeed].
func ClampSpeed(speed int) int {
	if speed < MinSpeed {
		return MinSpeed
	}
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}

// SpeedToDelay converts a speed setting to the wait between steps:
// max(10ms, 1000ms - speed*100ms).
func SpeedToDelay(speed int) time.Duration {
	d := time.Duration(1000-ClampSpeed(speed)*100) * time.Millisecond
	if d < 10*time.Millisecond {
		return 10 * time.Millisecond
	}
	return d
}
