// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestSortRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SortRequest
		wantErr bool
	}{
		{"valid", SortRequest{Algorithm: "quick", Values: []float64{3, 1, 2}}, false},
		{"alias accepted", SortRequest{Algorithm: "BubbleSort", Values: []float64{2, 1}}, false},
		{"with request id", SortRequest{RequestID: uuid.NewString(), Algorithm: "heap", Values: []float64{2, 1}}, false},
		{"missing algorithm", SortRequest{Values: []float64{2, 1}}, true},
		{"unknown algorithm", SortRequest{Algorithm: "bogo", Values: []float64{2, 1}}, true},
		{"too few values", SortRequest{Algorithm: "merge", Values: []float64{1}}, true},
		{"too many values", SortRequest{Algorithm: "merge", Values: make([]float64, 101)}, true},
		{"non-finite value", SortRequest{Algorithm: "merge", Values: []float64{1, math.Inf(1)}}, true},
		{"bad request id", SortRequest{RequestID: "abc", Algorithm: "merge", Values: []float64{1, 2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSortRequest_EnsureDefaults(t *testing.T) {
	req := SortRequest{Algorithm: "quick", Values: []float64{2, 1}}
	req.EnsureDefaults()
	_, err := uuid.Parse(req.RequestID)
	require.NoError(t, err)
	require.NoError(t, req.Validate())

	kept := SortRequest{RequestID: "fixed"}
	kept.EnsureDefaults()
	assert.Equal(t, "fixed", kept.RequestID)
}

func TestCompareRequest_Validate(t *testing.T) {
	assert.NoError(t, (&CompareRequest{Values: []float64{2, 1}}).Validate())
	assert.NoError(t, (&CompareRequest{Algorithms: []string{"quick", "heap"}, Values: []float64{2, 1}}).Validate())
	assert.Error(t, (&CompareRequest{Algorithms: []string{"quick", "quick"}, Values: []float64{2, 1}}).Validate())
	assert.Error(t, (&CompareRequest{Algorithms: []string{"shell"}, Values: []float64{2, 1}}).Validate())
	assert.Error(t, (&CompareRequest{Algorithms: []string{"quick"}}).Validate())
}

func TestGenerateRequest_Validate(t *testing.T) {
	assert.NoError(t, (&GenerateRequest{}).Validate())
	assert.NoError(t, (&GenerateRequest{Preset: "few-unique", Size: 20}).Validate())
	assert.Error(t, (&GenerateRequest{Preset: "zigzag"}).Validate())
	assert.Error(t, (&GenerateRequest{Size: 101}).Validate())
	assert.Error(t, (&GenerateRequest{Size: -1}).Validate())
}

func TestPlaybackCommand_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     PlaybackCommand
		wantErr bool
	}{
		{"play", PlaybackCommand{Action: CommandPlay}, false},
		{"speed up", PlaybackCommand{Action: CommandSpeedUp}, false},
		{"load values", PlaybackCommand{Action: CommandLoad, Algorithm: "merge", Values: []float64{3, 1}}, false},
		{"load preset", PlaybackCommand{Action: CommandLoad, Algorithm: "merge", Preset: "reverse", Size: 10}, false},
		{"load without algorithm", PlaybackCommand{Action: CommandLoad, Values: []float64{3, 1}}, true},
		{"load unknown algorithm", PlaybackCommand{Action: CommandLoad, Algorithm: "bogo"}, true},
		{"load one value", PlaybackCommand{Action: CommandLoad, Algorithm: "quick", Values: []float64{3}}, true},
		{"seek", PlaybackCommand{Action: CommandSeek, Index: intPtr(0)}, false},
		{"seek without index", PlaybackCommand{Action: CommandSeek}, true},
		{"set speed", PlaybackCommand{Action: CommandSetSpeed, Speed: intPtr(3)}, false},
		{"set speed without speed", PlaybackCommand{Action: CommandSetSpeed}, true},
		{"unknown action", PlaybackCommand{Action: "rewind"}, true},
		{"empty action", PlaybackCommand{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlaybackCommand_Decode(t *testing.T) {
	var cmd PlaybackCommand
	require.NoError(t, json.Unmarshal([]byte(`{"action":"seek","index":12}`), &cmd))
	assert.Equal(t, CommandSeek, cmd.Action)
	require.NotNil(t, cmd.Index)
	assert.Equal(t, 12, *cmd.Index)
	assert.NoError(t, cmd.Validate())
}
