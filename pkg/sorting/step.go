// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sorting

import (
	"fmt"
	"strconv"
)

// =============================================================================
// Step Kinds
// =============================================================================

// StepKind identifies the atomic operation a Step records.
type StepKind int

const (
	// KindCompare marks a comparison (or a scan cursor) over the named indices.
	KindCompare StepKind = iota
	// KindSwap exchanges two indices, or writes a value into one index.
	KindSwap
	// KindPivot marks the pivot chosen for a partition.
	KindPivot
	// KindSorted marks an index as finalized.
	KindSorted
	// KindVisit belongs to the grid vocabulary. Never emitted by this package.
	KindVisit
	// KindPath belongs to the grid vocabulary. Never emitted by this package.
	KindPath
)

var kindNames = map[StepKind]string{
	KindCompare: "compare",
	KindSwap:    "swap",
	KindPivot:   "pivot",
	KindSorted:  "sorted",
	KindVisit:   "visit",
	KindPath:    "path",
}

// String returns the wire name of the kind, or "unknown".
func (k StepKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind as its wire name.
func (k StepKind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown step kind %d", int(k))
	}
	return []byte(name), nil
}

// UnmarshalText decodes a wire name into a kind.
func (k *StepKind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown step kind %q", string(text))
}

// =============================================================================
// Step and SortRun
// =============================================================================

// Step is one recorded operation of a sort.
//
// Indices are positions in the working array and are valid at the moment
// the step is emitted. Value is set only on single-index Swap steps, where it
// holds the value written into that slot.
type Step struct {
	Kind        StepKind `json:"type"`
	Indices     []int    `json:"indices"`
	Description string   `json:"description"`
	Value       *float64 `json:"value,omitempty"`
}

// IsWrite reports whether the step overwrites a single slot.
func (s Step) IsWrite() bool {
	return s.Kind == KindSwap && len(s.Indices) == 1 && s.Value != nil
}

// SortRun is the result of executing one algorithm on one input.
type SortRun struct {
	Steps       []Step    `json:"steps"`
	SortedArray []float64 `json:"sortedArray"`
}

// =============================================================================
// Recorder
// =============================================================================

// recorder is the append-only step sink handed explicitly through every
// algorithm, including recursive helpers.
type recorder struct {
	steps []Step
}

func newRecorder(n int) *recorder {
	// Most traces land within a small multiple of n log n.
	return &recorder{steps: make([]Step, 0, 4*n+8)}
}

func (r *recorder) emit(kind StepKind, desc string, indices ...int) {
	idx := make([]int, len(indices))
	copy(idx, indices)
	r.steps = append(r.steps, Step{Kind: kind, Indices: idx, Description: desc})
}

func (r *recorder) compare(desc string, indices ...int) {
	r.emit(KindCompare, desc, indices...)
}

func (r *recorder) swap(desc string, i, j int) {
	r.emit(KindSwap, desc, i, j)
}

func (r *recorder) write(desc string, k int, value float64) {
	v := value
	r.steps = append(r.steps, Step{
		Kind:        KindSwap,
		Indices:     []int{k},
		Description: desc,
		Value:       &v,
	})
}

func (r *recorder) pivot(desc string, i int) {
	r.emit(KindPivot, desc, i)
}

func (r *recorder) sorted(desc string, i int) {
	r.emit(KindSorted, desc, i)
}

func (r *recorder) finish(arr []float64) SortRun {
	return SortRun{Steps: r.steps, SortedArray: arr}
}

// =============================================================================
// Helpers
// =============================================================================

// cloneValues returns the private working copy every algorithm sorts.
func cloneValues(values []float64) []float64 {
	arr := make([]float64, len(values))
	copy(arr, values)
	return arr
}

// num formats a value the way descriptions print it: 64, not 64.000000.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
