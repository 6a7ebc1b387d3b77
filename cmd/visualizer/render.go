// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mitchell-917/algorithm-visualizer/pkg/arraygen"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/playback"
)

// maxBarWidth is the width of the tallest bar, in cells.
const maxBarWidth = 40

var (
	colorDefault   = lipgloss.Color("#20B9B4")
	colorComparing = lipgloss.Color("#F4D03F")
	colorSwapping  = lipgloss.Color("#E74C3C")
	colorSorted    = lipgloss.Color("#2ECC71")
	colorPivot     = lipgloss.Color("#9B59B6")
	colorActive    = lipgloss.Color("#3498DB")
	colorMuted     = lipgloss.Color("#2C4A54")
)

var styles = struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorDefault),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Success: lipgloss.NewStyle().Foreground(colorSorted),
	Error:   lipgloss.NewStyle().Foreground(colorSwapping),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(0, 1),
}

var barStyles = map[playback.ElementState]lipgloss.Style{
	playback.StateDefault:   lipgloss.NewStyle().Foreground(colorDefault),
	playback.StateComparing: lipgloss.NewStyle().Foreground(colorComparing),
	playback.StateSwapping:  lipgloss.NewStyle().Foreground(colorSwapping),
	playback.StateSorted:    lipgloss.NewStyle().Foreground(colorSorted),
	playback.StatePivot:     lipgloss.NewStyle().Foreground(colorPivot),
	playback.StateActive:    lipgloss.NewStyle().Foreground(colorActive),
}

// renderFrame draws the header and bars of f inside a box.
func renderFrame(f playback.Frame) string {
	body := renderHeader(f)
	if bars := renderBars(f); bars != "" {
		body += "\n" + bars
	}
	return styles.Box.Render(body)
}

// renderHeader is the status block: algorithm, cursor, counters and the
// description of the last applied step.
func renderHeader(f playback.Frame) string {
	status := "paused"
	switch {
	case f.Complete:
		status = "complete"
	case f.Playing:
		status = "playing"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  step %d/%d  %s  speed %d\n",
		styles.Title.Render(string(f.Algorithm)), f.Cursor, f.Total, status, f.Speed)
	fmt.Fprintf(&b, "comparisons %d  swaps %d  pivots %d  %.0f%%",
		f.Stats.Comparisons, f.Stats.Swaps, f.Stats.Pivots, f.Progress)
	if f.Step != nil {
		b.WriteByte('\n')
		b.WriteString(styles.Muted.Render(f.Step.Description))
	}
	return b.String()
}

// renderBars draws one horizontal bar per element, scaled between the
// smallest and largest value.
func renderBars(f playback.Frame) string {
	if len(f.Elements) == 0 {
		return ""
	}

	values := playback.Values(f.Elements)
	lo, hi := slices.Min(values), slices.Max(values)
	lines := make([]string, len(f.Elements))
	for i, e := range f.Elements {
		width := maxBarWidth
		if hi > lo {
			width = 1 + int((e.Value-lo)/(hi-lo)*float64(maxBarWidth-1))
		}
		style, ok := barStyles[e.State]
		if !ok {
			style = barStyles[playback.StateDefault]
		}
		lines[i] = fmt.Sprintf("%6g %s", e.Value, style.Render(strings.Repeat("█", width)))
	}
	return strings.Join(lines, "\n")
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newGenerator returns a seeded generator, or a randomly seeded one for 0.
func newGenerator(seed uint64) *arraygen.Generator {
	if seed == 0 {
		return arraygen.NewGenerator(nil)
	}
	return arraygen.NewGenerator(rand.New(rand.NewPCG(seed, seed)))
}
