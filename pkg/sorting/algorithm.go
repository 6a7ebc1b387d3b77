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
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAlgorithm is returned when an identifier names no algorithm.
var ErrUnknownAlgorithm = errors.New("unknown sorting algorithm")

// Algorithm identifies one of the sorting algorithms for dispatch.
type Algorithm string

const (
	Bubble    Algorithm = "bubble"
	Quick     Algorithm = "quick"
	Merge     Algorithm = "merge"
	Heap      Algorithm = "heap"
	Insertion Algorithm = "insertion"
	Selection Algorithm = "selection"
)

// Complexity holds the asymptotic time bounds of an algorithm.
type Complexity struct {
	Best    string `json:"best" yaml:"best"`
	Average string `json:"average" yaml:"average"`
	Worst   string `json:"worst" yaml:"worst"`
}

// Info is the presentational metadata of an algorithm.
type Info struct {
	ID              Algorithm  `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	TimeComplexity  Complexity `json:"timeComplexity"`
	SpaceComplexity string     `json:"spaceComplexity"`
}

type entry struct {
	info Info
	sort func([]float64) SortRun
}

// registry is in canonical display order.
var registry = []entry{
	{
		info: Info{
			ID:   Bubble,
			Name: "Bubble Sort",
			Description: "Repeatedly steps through the list, compares adjacent elements and swaps them " +
				"if they are in wrong order. The pass through the list is repeated until the list is sorted.",
			TimeComplexity:  Complexity{Best: "O(n)", Average: "O(n²)", Worst: "O(n²)"},
			SpaceComplexity: "O(1)",
		},
		sort: BubbleSort,
	},
	{
		info: Info{
			ID:   Quick,
			Name: "Quick Sort",
			Description: "Picks an element as pivot and partitions the array around the picked pivot. " +
				"Places the pivot at its correct position and recursively sorts the sub-arrays.",
			TimeComplexity:  Complexity{Best: "O(n log n)", Average: "O(n log n)", Worst: "O(n²)"},
			SpaceComplexity: "O(log n)",
		},
		sort: QuickSort,
	},
	{
		info: Info{
			ID:   Merge,
			Name: "Merge Sort",
			Description: "Divides the array into two halves, recursively sorts them, and then merges " +
				"the two sorted halves into a single sorted array.",
			TimeComplexity:  Complexity{Best: "O(n log n)", Average: "O(n log n)", Worst: "O(n log n)"},
			SpaceComplexity: "O(n)",
		},
		sort: MergeSort,
	},
	{
		info: Info{
			ID:   Heap,
			Name: "Heap Sort",
			Description: "Builds a max heap from the input data, then repeatedly extracts the maximum " +
				"element from the heap and reconstructs the heap until all elements are sorted.",
			TimeComplexity:  Complexity{Best: "O(n log n)", Average: "O(n log n)", Worst: "O(n log n)"},
			SpaceComplexity: "O(1)",
		},
		sort: HeapSort,
	},
	{
		info: Info{
			ID:   Insertion,
			Name: "Insertion Sort",
			Description: "Builds the final sorted array one item at a time by inserting each element " +
				"into its proper position relative to elements already sorted.",
			TimeComplexity:  Complexity{Best: "O(n)", Average: "O(n²)", Worst: "O(n²)"},
			SpaceComplexity: "O(1)",
		},
		sort: InsertionSort,
	},
	{
		info: Info{
			ID:   Selection,
			Name: "Selection Sort",
			Description: "Divides the array into sorted and unsorted regions. Repeatedly finds the " +
				"minimum element from the unsorted region and moves it to the sorted region.",
			TimeComplexity:  Complexity{Best: "O(n²)", Average: "O(n²)", Worst: "O(n²)"},
			SpaceComplexity: "O(1)",
		},
		sort: SelectionSort,
	},
}

// Algorithms returns every algorithm identifier in canonical order.
func Algorithms() []Algorithm {
	out := make([]Algorithm, len(registry))
	for i, e := range registry {
		out[i] = e.info.ID
	}
	return out
}

// Infos returns the metadata of every algorithm in canonical order.
func Infos() []Info {
	out := make([]Info, len(registry))
	for i, e := range registry {
		out[i] = e.info
	}
	return out
}

// ParseAlgorithm resolves a case-insensitive identifier such as "quick".
// The long forms "quicksort" and "quick_sort" are accepted too.
func ParseAlgorithm(s string) (Algorithm, error) {
	id := strings.ToLower(strings.TrimSpace(s))
	id = strings.TrimSuffix(strings.TrimSuffix(id, "sort"), "_")
	for _, e := range registry {
		if string(e.info.ID) == id {
			return e.info.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Lookup returns the metadata for an algorithm.
func Lookup(a Algorithm) (Info, error) {
	e, err := find(a)
	if err != nil {
		return Info{}, err
	}
	return e.info, nil
}

// Run executes the named algorithm against values.
//
// # Description
//
// Run is the dispatch point used by the service and CLI: the caller holds an
// identifier selected by the user and a snapshot of the working array.
//
// # Inputs
//
//   - a: Algorithm identifier.
//   - values: Input snapshot. Never mutated.
//
// # Outputs
//
//   - SortRun: Sorted copy plus step trace.
//   - error: ErrUnknownAlgorithm (wrapped) if a names no algorithm.
func Run(a Algorithm, values []float64) (SortRun, error) {
	e, err := find(a)
	if err != nil {
		return SortRun{}, err
	}
	return e.sort(values), nil
}

func find(a Algorithm) (entry, error) {
	for _, e := range registry {
		if e.info.ID == a {
			return e, nil
		}
	}
	return entry{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(a))
}
