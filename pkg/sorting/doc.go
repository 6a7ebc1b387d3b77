// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sorting implements step-recording sorting algorithms.
//
// # Overview
//
// Every algorithm in this package sorts a private copy of its input and
// returns a SortRun: the sorted values plus the ordered trace of every atomic
// operation performed along the way. The trace is the substrate for
// animation, scrubbing, statistics and audio cues in the playback layer.
//
//	run := sorting.QuickSort([]float64{64, 34, 25, 12, 22, 11, 90})
//	for _, step := range run.Steps {
//	    fmt.Println(step.Kind, step.Indices, step.Description)
//	}
//
// # Algorithms
//
//   - BubbleSort, InsertionSort, SelectionSort: O(n²)
//   - MergeSort, HeapSort: O(n log n)
//   - QuickSort: O(n log n) average, O(n²) worst (Lomuto partition)
//
// # Replay
//
// Applying Apply to steps 0..k against a copy of the original input
// reconstructs the working array the algorithm observed at step k. Two-index
// Swap steps exchange values; single-index Swap steps are writes and carry the
// written value. Compare, Pivot and Sorted steps never mutate the array.
//
// # Thread Safety
//
// All functions are pure. Concurrent calls share no state.
package sorting
