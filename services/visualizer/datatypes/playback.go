// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"errors"

	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/playback"
)

// ErrLoadWithoutAlgorithm is returned for a load command that names no
// algorithm.
var ErrLoadWithoutAlgorithm = errors.New("load requires an algorithm")

// Command is a playback control sent by the client. The set mirrors the
// visualizer's keyboard shortcuts plus the cursor and load operations.
type Command string

const (
	CommandPlay         Command = "play"
	CommandPause        Command = "pause"
	CommandReset        Command = "reset"
	CommandSpeedUp      Command = "speed_up"
	CommandSpeedDown    Command = "speed_down"
	CommandStepForward  Command = "step_forward"
	CommandStepBackward Command = "step_backward"
	CommandLoad         Command = "load"
	CommandSeek         Command = "seek"
	CommandSetSpeed     Command = "set_speed"
)

// PlaybackCommand is one client message on the playback socket.
//
// Load uses Algorithm and either Values or Preset/Size. Seek uses Index.
// SetSpeed uses Speed. The other actions take no arguments.
type PlaybackCommand struct {
	Action    Command   `json:"action" validate:"required,oneof=play pause reset speed_up speed_down step_forward step_backward load seek set_speed"`
	Algorithm string    `json:"algorithm,omitempty" validate:"omitempty,algorithm"`
	Values    []float64 `json:"values,omitempty" validate:"omitempty,min=2,max=100,dive,finite"`
	Preset    string    `json:"preset,omitempty" validate:"omitempty,preset"`
	Size      int       `json:"size,omitempty" validate:"gte=0,lte=100"`
	Index     *int      `json:"index,omitempty" validate:"required_if=Action seek"`
	Speed     *int      `json:"speed,omitempty" validate:"required_if=Action set_speed"`
}

// Validate checks the command against its struct tags.
func (c *PlaybackCommand) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Action == CommandLoad && c.Algorithm == "" {
		return ErrLoadWithoutAlgorithm
	}
	return nil
}

// Server message actions.
const (
	ActionSessionCreated = "session_created"
	ActionFrame          = "frame"
	ActionError          = "error"
)

// PlaybackMessage is one server message on the playback socket.
type PlaybackMessage struct {
	Action    string          `json:"action"`
	SessionID string          `json:"sessionId,omitempty"`
	Frame     *playback.Frame `json:"frame,omitempty"`
	Error     string          `json:"error,omitempty"`
	Command   Command         `json:"command,omitempty"`
}
