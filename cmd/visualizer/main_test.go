// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchell-917/algorithm-visualizer/pkg/arraygen"
	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/config"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/playback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"sorted", []string{"generate", "--preset", "sorted", "--size", "5"}, "1, 2, 3, 4, 5\n"},
		{"reverse", []string{"generate", "--preset", "reverse", "--size", "3"}, "3, 2, 1\n"},
		{"empty", []string{"generate", "--preset", "sorted", "--size", "0"}, "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := execute(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateCmd_SeedIsDeterministic(t *testing.T) {
	a, err := execute(t, "generate", "--size", "10", "--seed", "7")
	require.NoError(t, err)
	b, err := execute(t, "generate", "--size", "10", "--seed", "7")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, strings.Split(strings.TrimSpace(a), ", "), 10)
}

func TestGenerateCmd_Errors(t *testing.T) {
	_, err := execute(t, "generate", "--preset", "zigzag")
	assert.ErrorIs(t, err, arraygen.ErrUnknownPreset)

	_, err = execute(t, "generate", "--size", "101")
	assert.ErrorIs(t, err, arraygen.ErrInvalidSize)
}

func TestAlgorithmsCmd(t *testing.T) {
	out, err := execute(t, "algorithms")
	require.NoError(t, err)
	for _, info := range sorting.Infos() {
		assert.Contains(t, out, info.Name)
	}

	out, err = execute(t, "algorithms", "--json")
	require.NoError(t, err)
	var infos []sorting.Info
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	assert.Len(t, infos, len(sorting.Algorithms()))
}

func TestSortCmd(t *testing.T) {
	out, err := execute(t, "sort", "--algorithm", "bubble", "--values", "2,1", "--trace")
	require.NoError(t, err)
	assert.Contains(t, out, "bubble")
	assert.Contains(t, out, "5 steps")
	assert.Contains(t, out, "sorted 1, 2")
	assert.Contains(t, out, "compare")
}

func TestSortCmd_JSON(t *testing.T) {
	out, err := execute(t, "sort", "-a", "QuickSort", "--values", "3 1 2", "--json")
	require.NoError(t, err)

	var got struct {
		Algorithm   string             `json:"algorithm"`
		Input       []float64          `json:"input"`
		Steps       []sorting.Step     `json:"steps"`
		SortedArray []float64          `json:"sortedArray"`
		Stats       sorting.TraceStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "quick", got.Algorithm)
	assert.Equal(t, []float64{3, 1, 2}, got.Input)
	assert.Equal(t, []float64{1, 2, 3}, got.SortedArray)
	assert.Len(t, got.Steps, 8)
	assert.Equal(t, 2, got.Stats.Swaps)
}

func TestSortCmd_Errors(t *testing.T) {
	_, err := execute(t, "sort", "--algorithm", "bogo", "--values", "1,2")
	assert.ErrorIs(t, err, sorting.ErrUnknownAlgorithm)

	_, err = execute(t, "sort", "--values", "7")
	assert.ErrorIs(t, err, arraygen.ErrTooFewValues)
}

func TestPlayCmd_RunsToCompletion(t *testing.T) {
	out, err := execute(t, "play", "--algorithm", "bubble", "--values", "2,1")
	require.NoError(t, err)
	assert.Contains(t, out, "step 5/5")
	assert.Contains(t, out, "complete")
	assert.NotContains(t, out, "step 0/5")
	assert.NotContains(t, out, "\033[2J")
}

func TestPlay_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := play(ctx, &out, sorting.Merge, []float64{5, 4, 3, 2, 1}, playback.MinSpeed)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestConfigInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "visualizer.yaml")
	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Server.Port, cfg.Server.Port)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])

	buf.Reset()
	newLogger(config.LoggingConfig{Level: "debug", Format: "text"}, &buf).Debug("plain")
	assert.Contains(t, buf.String(), "msg=plain")
	assert.True(t, newLogger(config.LoggingConfig{Level: "debug"}, &buf).Enabled(context.Background(), slog.LevelDebug))
}

func TestRenderFrame(t *testing.T) {
	p := playback.NewPlayer(playback.WithDelay(func(int) time.Duration { return 0 }))
	_, err := p.Load(sorting.Bubble, []float64{30, 10, 20})
	require.NoError(t, err)
	f, err := p.StepForward()
	require.NoError(t, err)

	out := renderFrame(f)
	assert.Contains(t, out, "step 1/")
	assert.Contains(t, out, "paused")
	assert.Contains(t, out, f.Step.Description)
	assert.Equal(t, maxBarWidth, strings.Count(lineFor(out, "30"), "█"))
	assert.Equal(t, 1, strings.Count(lineFor(out, "10"), "█"))
}

func TestRenderFrame_EqualValues(t *testing.T) {
	out := renderFrame(playback.Frame{Elements: playback.NewElements([]float64{4, 4})})
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "█") {
			assert.Equal(t, maxBarWidth, strings.Count(line, "█"))
		}
	}
}

func TestIsTerminal_NonFile(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f))
}

// lineFor returns the first bar line whose label is value.
func lineFor(out, value string) string {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(strings.Trim(line, "│ "))
		if len(fields) > 0 && fields[0] == value && strings.Contains(line, "█") {
			return line
		}
	}
	return ""
}
