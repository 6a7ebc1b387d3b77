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

import "fmt"

// BubbleSort sorts a copy of values by repeatedly swapping adjacent
// out-of-order pairs.
//
// Each pass ends with a Sorted marker for the slot it finalized. A pass with
// no swaps stops the sort early; the trace then closes with a Sorted marker
// for every index, so markers may repeat.
func BubbleSort(values []float64) SortRun {
	arr := cloneValues(values)
	n := len(arr)
	rec := newRecorder(n)

	for i := 0; i < n-1; i++ {
		swapped := false

		for j := 0; j < n-i-1; j++ {
			rec.compare(fmt.Sprintf("Comparing %s and %s", num(arr[j]), num(arr[j+1])), j, j+1)

			if arr[j] > arr[j+1] {
				arr[j], arr[j+1] = arr[j+1], arr[j]
				swapped = true
				rec.swap(fmt.Sprintf("Swapping %s and %s", num(arr[j+1]), num(arr[j])), j, j+1)
			}
		}

		last := n - i - 1
		rec.sorted(fmt.Sprintf("Element %s is now in its final position", num(arr[last])), last)

		if !swapped {
			break
		}
	}

	for i := 0; i < n; i++ {
		rec.sorted("Sorting complete", i)
	}

	return rec.finish(arr)
}

// SelectionSort sorts a copy of values by moving the minimum of the unsorted
// suffix to its front on every pass.
func SelectionSort(values []float64) SortRun {
	arr := cloneValues(values)
	n := len(arr)
	rec := newRecorder(n)
	if n == 0 {
		return rec.finish(arr)
	}

	for i := 0; i < n-1; i++ {
		minIdx := i
		rec.compare(fmt.Sprintf("Finding minimum element from position %d", i), i)

		for j := i + 1; j < n; j++ {
			rec.compare(fmt.Sprintf("Comparing %s and %s", num(arr[minIdx]), num(arr[j])), minIdx, j)

			if arr[j] < arr[minIdx] {
				minIdx = j
				rec.compare(fmt.Sprintf("New minimum found: %s", num(arr[minIdx])), minIdx)
			}
		}

		if minIdx != i {
			arr[i], arr[minIdx] = arr[minIdx], arr[i]
			rec.swap(fmt.Sprintf("Swapping %s with %s", num(arr[minIdx]), num(arr[i])), i, minIdx)
		}

		rec.sorted(fmt.Sprintf("Element %s is now in its final position", num(arr[i])), i)
	}

	rec.sorted("Last element is now sorted", n-1)
	return rec.finish(arr)
}

// InsertionSort sorts a copy of values by growing a sorted prefix one
// element at a time.
//
// Shifts and the final placement of each key are single-index Swap steps
// that carry the written value.
func InsertionSort(values []float64) SortRun {
	arr := cloneValues(values)
	n := len(arr)
	rec := newRecorder(n)
	if n == 0 {
		return rec.finish(arr)
	}

	rec.sorted("First element is considered sorted", 0)

	for i := 1; i < n; i++ {
		key := arr[i]
		j := i - 1

		rec.compare(fmt.Sprintf("Inserting %s into sorted portion", num(key)), i)

		for j >= 0 && arr[j] > key {
			rec.compare(fmt.Sprintf("%s > %s, shifting right", num(arr[j]), num(key)), j, j+1)

			arr[j+1] = arr[j]
			rec.write(fmt.Sprintf("Moving %s to position %d", num(arr[j]), j+1), j+1, arr[j])
			j--
		}

		arr[j+1] = key
		rec.write(fmt.Sprintf("Inserting %s at position %d", num(key), j+1), j+1, key)

		rec.sorted(fmt.Sprintf("Elements up to position %d are now sorted", i), i)
	}

	return rec.finish(arr)
}
