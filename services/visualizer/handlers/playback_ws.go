// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mitchell-917/algorithm-visualizer/pkg/arraygen"
	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/datatypes"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/observability"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/playback"
	"golang.org/x/time/rate"
)

const (
	writeWait       = 10 * time.Second
	pongWait        = 60 * time.Second
	pingPeriod      = (pongWait * 9) / 10
	maxCommandBytes = 16 * 1024
	sendBuffer      = 64
)

// ErrRateLimited is reported to a client that sends commands too fast.
var ErrRateLimited = errors.New("rate limit exceeded")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 64 * 1024,
}

// HandlePlaybackWebSocket serves one playback session per connection.
//
// # Description
//
// The server sends {"action":"session_created"} and the initial frame of a
// fresh session (a random array of the default size, bubble sort). After
// that every state change arrives as {"action":"frame"}. The client drives
// playback with datatypes.PlaybackCommand messages; a rejected command is
// answered with {"action":"error"} and the session stays open.
//
// # Limitations
//
//   - Commands are rate limited per session (Playback.CommandsPerSecond).
//   - A slow client slows its own playback; frames are never dropped.
//   - Once deps.Sessions is closed new connections get 503 and live
//     sessions receive a normal close frame.
func HandlePlaybackWebSocket(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()
		release, err := deps.Sessions.join(cancel)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, datatypes.NewErrorResponse("playback unavailable", err.Error()))
			return
		}
		defer release()

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		s := newPlaybackSession(ctx, cancel, conn, deps)
		s.run()
	}
}

// playbackSession owns one connection and its player.
//
// The reader goroutine (run) handles commands. writePump is the only
// writer on the connection. The player's sink hands frames to writePump
// through send.
type playbackSession struct {
	id      string
	conn    *websocket.Conn
	deps    Deps
	player  *playback.Player
	limiter *rate.Limiter
	gen     *arraygen.Generator

	send   chan datatypes.PlaybackMessage
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newPlaybackSession(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, deps Deps) *playbackSession {
	s := &playbackSession{
		id:      uuid.NewString(),
		conn:    conn,
		deps:    deps,
		limiter: rate.NewLimiter(rate.Limit(deps.Playback.CommandsPerSecond), deps.Playback.CommandBurst),
		gen:     arraygen.NewGenerator(nil),
		send:    make(chan datatypes.PlaybackMessage, sendBuffer),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.player = playback.NewPlayer(
		playback.WithSink(s.publish),
		playback.WithSpeed(deps.Playback.DefaultSpeed),
		playback.WithDelay(deps.Delay),
	)
	return s
}

func (s *playbackSession) run() {
	s.deps.Metrics.SessionStarted()
	slog.Info("Playback session started", "session_id", s.id)
	go s.writePump()

	defer func() {
		s.cancel()
		s.player.Close()
		<-s.done
		s.deps.Metrics.SessionEnded()
		slog.Info("Playback session ended", "session_id", s.id)
	}()

	if !s.enqueue(datatypes.PlaybackMessage{Action: datatypes.ActionSessionCreated, SessionID: s.id}) {
		return
	}
	if err := s.load(datatypes.PlaybackCommand{Action: datatypes.CommandLoad, Algorithm: string(sorting.Bubble)}); err != nil {
		slog.Error("Failed to load initial trace", "session_id", s.id, "error", err)
		return
	}

	s.conn.SetReadLimit(maxCommandBytes)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("Playback session read failed", "session_id", s.id, "error", err)
			}
			return
		}

		var cmd datatypes.PlaybackCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.deps.Metrics.RecordCommand("invalid", observability.CommandError)
			s.sendError("", fmt.Errorf("malformed command: %w", err))
			continue
		}
		if !s.limiter.Allow() {
			s.deps.Metrics.RecordCommand(string(cmd.Action), observability.CommandRateLimited)
			s.sendError(cmd.Action, ErrRateLimited)
			continue
		}
		if err := s.handle(cmd); err != nil {
			s.deps.Metrics.RecordCommand(string(cmd.Action), observability.CommandError)
			s.sendError(cmd.Action, err)
			continue
		}
		s.deps.Metrics.RecordCommand(string(cmd.Action), observability.CommandOK)
	}
}

// handle applies one command. The resulting frame reaches the client
// through the player's sink.
func (s *playbackSession) handle(cmd datatypes.PlaybackCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	var err error
	switch cmd.Action {
	case datatypes.CommandLoad:
		return s.load(cmd)
	case datatypes.CommandPlay:
		_, err = s.player.Play(s.ctx)
	case datatypes.CommandPause:
		_, err = s.player.Pause()
	case datatypes.CommandReset:
		_, err = s.player.Reset()
	case datatypes.CommandSpeedUp:
		_, err = s.player.SpeedUp()
	case datatypes.CommandSpeedDown:
		_, err = s.player.SpeedDown()
	case datatypes.CommandStepForward:
		_, err = s.player.StepForward()
	case datatypes.CommandStepBackward:
		_, err = s.player.StepBackward()
	case datatypes.CommandSeek:
		_, err = s.player.Seek(*cmd.Index)
	case datatypes.CommandSetSpeed:
		_, err = s.player.SetSpeed(*cmd.Speed)
	default:
		err = fmt.Errorf("unsupported action %q", cmd.Action)
	}
	return err
}

// load resolves the command's input, records the run and hands it to the
// player. Explicit values win over a preset.
func (s *playbackSession) load(cmd datatypes.PlaybackCommand) error {
	algo, err := sorting.ParseAlgorithm(cmd.Algorithm)
	if err != nil {
		return err
	}

	values := cmd.Values
	if len(values) == 0 {
		values, err = s.deps.generate(s.gen, arraygen.Preset(cmd.Preset), cmd.Size)
		if err != nil {
			return err
		}
	}
	if err := s.deps.checkSize(values); err != nil {
		return err
	}

	run, _, err := s.deps.runEngine(s.ctx, observability.EndpointPlayback, algo, values)
	if err != nil {
		return err
	}
	_, err = s.player.LoadRun(algo, values, run)
	return err
}

// publish is the player's sink.
func (s *playbackSession) publish(f playback.Frame) {
	s.enqueue(datatypes.PlaybackMessage{Action: datatypes.ActionFrame, Frame: &f})
}

func (s *playbackSession) sendError(action datatypes.Command, err error) {
	slog.Debug("Playback command rejected", "session_id", s.id, "action", string(action), "error", err)
	s.enqueue(datatypes.PlaybackMessage{Action: datatypes.ActionError, Command: action, Error: err.Error()})
}

// enqueue blocks until writePump takes msg or the session ends.
func (s *playbackSession) enqueue(msg datatypes.PlaybackMessage) bool {
	select {
	case s.send <- msg:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func (s *playbackSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.cancel()
		_ = s.conn.Close()
		close(s.done)
	}()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				slog.Info("Playback session write failed", "session_id", s.id, "error", err)
				return
			}
			if msg.Action == datatypes.ActionFrame {
				s.deps.Metrics.FrameSent()
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.ctx.Done():
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
