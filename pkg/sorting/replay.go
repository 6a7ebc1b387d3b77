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

// Apply mutates arr according to the replay rule for one step.
//
// A two-index Swap exchanges the named values. A single-index Swap that
// carries a value writes it. Every other step leaves arr untouched. Indices
// outside arr are ignored.
func Apply(arr []float64, step Step) {
	if step.Kind != KindSwap {
		return
	}
	switch {
	case len(step.Indices) == 2:
		i, j := step.Indices[0], step.Indices[1]
		if !inRange(arr, i) || !inRange(arr, j) {
			return
		}
		arr[i], arr[j] = arr[j], arr[i]
	case step.IsWrite():
		k := step.Indices[0]
		if !inRange(arr, k) {
			return
		}
		arr[k] = *step.Value
	}
}

// Replay returns the working array after applying steps[:upTo] to a copy of
// initial.
//
// # Description
//
// Replay is how scrubbing and backward stepping recover intermediate state:
// there is no per-step snapshot, only the original input and the trace.
// upTo is clamped to [0, len(steps)].
//
// # Inputs
//
//   - initial: The input the trace was recorded from. Never mutated.
//   - steps: The recorded trace.
//   - upTo: Number of leading steps to apply.
//
// # Outputs
//
//   - []float64: A fresh slice holding the reconstructed state.
func Replay(initial []float64, steps []Step, upTo int) []float64 {
	arr := cloneValues(initial)
	upTo = clampIndex(upTo, len(steps))
	for _, step := range steps[:upTo] {
		Apply(arr, step)
	}
	return arr
}

func inRange(arr []float64, i int) bool {
	return i >= 0 && i < len(arr)
}

func clampIndex(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}
