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

// =============================================================================
// Merge Sort
// =============================================================================

// MergeSort sorts a copy of values by recursive halving and merging.
//
// Every slot written during a merge is a single-index Swap step carrying the
// written value. A completed merge of [left, right] emits one Sorted marker
// per index of that range, ascending.
func MergeSort(values []float64) SortRun {
	arr := cloneValues(values)
	rec := newRecorder(len(arr))

	mergeSortRange(arr, rec, 0, len(arr)-1)

	return rec.finish(arr)
}

func mergeSortRange(arr []float64, rec *recorder, left, right int) {
	if left >= right {
		return
	}
	mid := (left + right) / 2
	mergeSortRange(arr, rec, left, mid)
	mergeSortRange(arr, rec, mid+1, right)
	merge(arr, rec, left, mid, right)
}

func merge(arr []float64, rec *recorder, left, mid, right int) {
	leftArr := cloneValues(arr[left : mid+1])
	rightArr := cloneValues(arr[mid+1 : right+1])

	i, j, k := 0, 0, left

	for i < len(leftArr) && j < len(rightArr) {
		rec.compare(fmt.Sprintf("Comparing %s and %s", num(leftArr[i]), num(rightArr[j])), left+i, mid+1+j)

		if leftArr[i] <= rightArr[j] {
			arr[k] = leftArr[i]
			rec.write(fmt.Sprintf("Placing %s at position %d", num(leftArr[i]), k), k, leftArr[i])
			i++
		} else {
			arr[k] = rightArr[j]
			rec.write(fmt.Sprintf("Placing %s at position %d", num(rightArr[j]), k), k, rightArr[j])
			j++
		}
		k++
	}

	for ; i < len(leftArr); i, k = i+1, k+1 {
		arr[k] = leftArr[i]
		rec.write(fmt.Sprintf("Placing remaining %s at position %d", num(leftArr[i]), k), k, leftArr[i])
	}

	for ; j < len(rightArr); j, k = j+1, k+1 {
		arr[k] = rightArr[j]
		rec.write(fmt.Sprintf("Placing remaining %s at position %d", num(rightArr[j]), k), k, rightArr[j])
	}

	for idx := left; idx <= right; idx++ {
		rec.sorted(fmt.Sprintf("Merged section [%d, %d]", left, right), idx)
	}
}

// =============================================================================
// Quick Sort
// =============================================================================

// QuickSort sorts a copy of values with Lomuto partitioning, using the last
// element of each range as the pivot.
//
// The pivot placement is always reported as a Swap, even when the pivot is
// already in place.
func QuickSort(values []float64) SortRun {
	arr := cloneValues(values)
	rec := newRecorder(len(arr))

	quickSortRange(arr, rec, 0, len(arr)-1)

	return rec.finish(arr)
}

func quickSortRange(arr []float64, rec *recorder, low, high int) {
	switch {
	case low < high:
		p := partition(arr, rec, low, high)
		quickSortRange(arr, rec, low, p-1)
		quickSortRange(arr, rec, p+1, high)
	case low == high:
		rec.sorted(fmt.Sprintf("Single element at position %d is sorted", low), low)
	}
}

func partition(arr []float64, rec *recorder, low, high int) int {
	pivot := arr[high]
	rec.pivot(fmt.Sprintf("Pivot selected: %s", num(pivot)), high)

	i := low - 1
	for j := low; j < high; j++ {
		rec.compare(fmt.Sprintf("Comparing %s with pivot %s", num(arr[j]), num(pivot)), j, high)

		if arr[j] < pivot {
			i++
			if i != j {
				arr[i], arr[j] = arr[j], arr[i]
				rec.swap(fmt.Sprintf("Swapping %s and %s", num(arr[i]), num(arr[j])), i, j)
			}
		}
	}

	p := i + 1
	arr[p], arr[high] = arr[high], arr[p]
	rec.swap(fmt.Sprintf("Placing pivot %s at position %d", num(pivot), p), p, high)
	rec.sorted(fmt.Sprintf("Pivot %s is now in its final position", num(pivot)), p)

	return p
}

// =============================================================================
// Heap Sort
// =============================================================================

// HeapSort sorts a copy of values by building a max-heap and repeatedly
// moving its root behind the shrinking heap.
func HeapSort(values []float64) SortRun {
	arr := cloneValues(values)
	n := len(arr)
	rec := newRecorder(n)
	if n == 0 {
		return rec.finish(arr)
	}

	for i := n/2 - 1; i >= 0; i-- {
		rec.compare(fmt.Sprintf("Building max heap from node %d", i), i)
		heapify(arr, rec, n, i)
	}

	for i := n - 1; i > 0; i-- {
		arr[0], arr[i] = arr[i], arr[0]
		rec.swap(fmt.Sprintf("Moving maximum %s to position %d", num(arr[i]), i), 0, i)
		rec.sorted(fmt.Sprintf("Element %s is now in its final position", num(arr[i])), i)

		heapify(arr, rec, i, 0)
	}

	rec.sorted("Sorting complete", 0)
	return rec.finish(arr)
}

// heapify sifts arr[i] down within the heap arr[:size].
func heapify(arr []float64, rec *recorder, size, i int) {
	for {
		largest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < size {
			rec.compare(fmt.Sprintf("Comparing parent %s with left child %s", num(arr[largest]), num(arr[left])), largest, left)
			if arr[left] > arr[largest] {
				largest = left
			}
		}

		if right < size {
			rec.compare(fmt.Sprintf("Comparing %s with right child %s", num(arr[largest]), num(arr[right])), largest, right)
			if arr[right] > arr[largest] {
				largest = right
			}
		}

		if largest == i {
			return
		}

		arr[i], arr[largest] = arr[largest], arr[i]
		rec.swap(fmt.Sprintf("Swapping %s with %s to maintain heap property", num(arr[largest]), num(arr[i])), i, largest)
		i = largest
	}
}
