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

// TraceStats counts the operations in a prefix of a trace.
type TraceStats struct {
	Comparisons int `json:"comparisons"`
	Swaps       int `json:"swaps"`
	Pivots      int `json:"pivots"`
	SortedMarks int `json:"sortedMarks"`
	CurrentStep int `json:"currentStep"`
	TotalSteps  int `json:"totalSteps"`
}

// Stats counts the steps in steps[:upTo]. upTo is clamped to the trace.
func Stats(steps []Step, upTo int) TraceStats {
	upTo = clampIndex(upTo, len(steps))
	st := TraceStats{CurrentStep: upTo, TotalSteps: len(steps)}
	for _, step := range steps[:upTo] {
		switch step.Kind {
		case KindCompare:
			st.Comparisons++
		case KindSwap:
			st.Swaps++
		case KindPivot:
			st.Pivots++
		case KindSorted:
			st.SortedMarks++
		}
	}
	return st
}

// Progress returns the percentage of the trace consumed, 0 for an empty trace.
func (s TraceStats) Progress() float64 {
	if s.TotalSteps == 0 {
		return 0
	}
	return float64(s.CurrentStep) / float64(s.TotalSteps) * 100
}
