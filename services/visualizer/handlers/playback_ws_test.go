// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/datatypes"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/playback"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playbackURL serves the playback socket and returns its ws:// URL.
func playbackURL(t *testing.T, deps Deps) string {
	t.Helper()
	r := gin.New()
	r.GET("/ws", HandlePlaybackWebSocket(deps))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func startPlaybackServer(t *testing.T, deps Deps) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(playbackURL(t, deps), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) datatypes.PlaybackMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var msg datatypes.PlaybackMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readFrame(t *testing.T, conn *websocket.Conn) playback.Frame {
	t.Helper()
	msg := readMsg(t, conn)
	require.Equal(t, datatypes.ActionFrame, msg.Action, "got %+v", msg)
	require.NotNil(t, msg.Frame)
	return *msg.Frame
}

func send(t *testing.T, conn *websocket.Conn, cmd any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(cmd))
}

// handshake consumes session_created and the initial frame.
func handshake(t *testing.T, conn *websocket.Conn) playback.Frame {
	t.Helper()
	created := readMsg(t, conn)
	require.Equal(t, datatypes.ActionSessionCreated, created.Action)
	assert.NotEmpty(t, created.SessionID)
	return readFrame(t, conn)
}

func TestPlaybackWS_InitialSession(t *testing.T) {
	conn := startPlaybackServer(t, testDeps())
	initial := handshake(t, conn)

	assert.Equal(t, "bubble", string(initial.Algorithm))
	assert.Len(t, initial.Elements, 50)
	assert.Equal(t, 0, initial.Cursor)
	assert.Positive(t, initial.Total)
	assert.False(t, initial.Playing)
	assert.Equal(t, playback.DefaultSpeed, initial.Speed)
}

func TestPlaybackWS_LoadAndStep(t *testing.T) {
	conn := startPlaybackServer(t, testDeps())
	handshake(t, conn)

	send(t, conn, datatypes.PlaybackCommand{Action: datatypes.CommandLoad, Algorithm: "bubble", Values: []float64{2, 1}})
	loaded := readFrame(t, conn)
	assert.Equal(t, 5, loaded.Total)
	assert.Equal(t, []float64{2, 1}, playback.Values(loaded.Elements))

	send(t, conn, map[string]string{"action": "step_forward"})
	f := readFrame(t, conn)
	assert.Equal(t, 1, f.Cursor)
	assert.Equal(t, loaded.TraceID, f.TraceID)

	send(t, conn, map[string]string{"action": "step_forward"})
	f = readFrame(t, conn)
	assert.Equal(t, []float64{1, 2}, playback.Values(f.Elements))
	assert.Equal(t, loaded.Elements[0].ID, f.Elements[1].ID, "identity travels with the value")

	send(t, conn, map[string]string{"action": "step_backward"})
	f = readFrame(t, conn)
	assert.Equal(t, 1, f.Cursor)
	assert.Equal(t, []float64{2, 1}, playback.Values(f.Elements))

	send(t, conn, map[string]any{"action": "seek", "index": 99})
	f = readFrame(t, conn)
	assert.Equal(t, 5, f.Cursor)
	assert.True(t, f.Complete)

	send(t, conn, map[string]string{"action": "reset"})
	f = readFrame(t, conn)
	assert.Equal(t, 0, f.Cursor)
}

func TestPlaybackWS_LoadPreset(t *testing.T) {
	conn := startPlaybackServer(t, testDeps())
	handshake(t, conn)

	send(t, conn, map[string]any{"action": "load", "algorithm": "merge", "preset": "reverse", "size": 6})
	f := readFrame(t, conn)
	assert.Equal(t, "merge", string(f.Algorithm))
	assert.Equal(t, []float64{6, 5, 4, 3, 2, 1}, playback.Values(f.Elements))
}

func TestPlaybackWS_PlayToCompletion(t *testing.T) {
	deps := testDeps()
	deps.Delay = func(int) time.Duration { return time.Millisecond }
	conn := startPlaybackServer(t, deps)
	handshake(t, conn)

	send(t, conn, datatypes.PlaybackCommand{Action: datatypes.CommandLoad, Algorithm: "insertion", Values: []float64{3, 2, 1}})
	loaded := readFrame(t, conn)

	send(t, conn, map[string]string{"action": "play"})
	started := readFrame(t, conn)
	assert.True(t, started.Playing)

	cursor := 0
	for {
		f := readFrame(t, conn)
		require.Equal(t, cursor+1, f.Cursor, "frames arrive in order")
		cursor = f.Cursor
		if f.Complete {
			assert.False(t, f.Playing)
			assert.Equal(t, []float64{1, 2, 3}, playback.Values(f.Elements))
			break
		}
	}
	assert.Equal(t, loaded.Total, cursor)
	assert.Positive(t, testutil.ToFloat64(deps.Metrics.FramesSentTotal))
}

func TestPlaybackWS_Speed(t *testing.T) {
	conn := startPlaybackServer(t, testDeps())
	handshake(t, conn)

	send(t, conn, map[string]string{"action": "speed_up"})
	assert.Equal(t, playback.DefaultSpeed+1, readFrame(t, conn).Speed)

	send(t, conn, map[string]any{"action": "set_speed", "speed": 42})
	assert.Equal(t, playback.MaxSpeed, readFrame(t, conn).Speed)

	send(t, conn, map[string]string{"action": "speed_down"})
	assert.Equal(t, playback.MaxSpeed-1, readFrame(t, conn).Speed)
}

func TestPlaybackWS_Errors(t *testing.T) {
	conn := startPlaybackServer(t, testDeps())
	handshake(t, conn)

	tests := []struct {
		name string
		raw  string
	}{
		{"malformed json", `{"action":`},
		{"unknown action", `{"action":"rewind"}`},
		{"load unknown algorithm", `{"action":"load","algorithm":"bogo","values":[2,1]}`},
		{"seek without index", `{"action":"seek"}`},
		{"load too many values", `{"action":"load","algorithm":"quick","size":101}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.raw)))
			msg := readMsg(t, conn)
			assert.Equal(t, datatypes.ActionError, msg.Action)
			assert.NotEmpty(t, msg.Error)
		})
	}

	// the session survives rejected commands
	send(t, conn, map[string]string{"action": "step_forward"})
	assert.Equal(t, 1, readFrame(t, conn).Cursor)
}

func TestPlaybackWS_RateLimit(t *testing.T) {
	deps := testDeps()
	deps.Playback.CommandsPerSecond = 0.001
	deps.Playback.CommandBurst = 1
	conn := startPlaybackServer(t, deps)
	handshake(t, conn)

	send(t, conn, map[string]string{"action": "step_forward"})
	assert.Equal(t, 1, readFrame(t, conn).Cursor)

	send(t, conn, map[string]string{"action": "step_forward"})
	msg := readMsg(t, conn)
	assert.Equal(t, datatypes.ActionError, msg.Action)
	assert.Equal(t, ErrRateLimited.Error(), msg.Error)
	assert.Equal(t, datatypes.CommandStepForward, msg.Command)
}

func TestPlaybackWS_DisconnectEndsSession(t *testing.T) {
	deps := testDeps()
	deps.Delay = func(int) time.Duration { return 5 * time.Millisecond }
	conn := startPlaybackServer(t, deps)
	handshake(t, conn)

	send(t, conn, map[string]string{"action": "play"})
	readFrame(t, conn)
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.ActiveSessions))

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(deps.Metrics.ActiveSessions) == 0
	}, 3*time.Second, 10*time.Millisecond)
}

func TestPlaybackWS_SessionsCloseOnShutdown(t *testing.T) {
	deps := testDeps()
	deps.Sessions = NewSessions()
	url := playbackURL(t, deps)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	handshake(t, conn)
	assert.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.ActiveSessions))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, deps.Sessions.Close(ctx))
	assert.Equal(t, 0.0, testutil.ToFloat64(deps.Metrics.ActiveSessions))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestSessions_NilAndIdleClose(t *testing.T) {
	var nilSessions *Sessions
	release, err := nilSessions.join(func() {})
	require.NoError(t, err)
	release()
	assert.NoError(t, nilSessions.Close(context.Background()))

	s := NewSessions()
	require.NoError(t, s.Close(context.Background()))
	_, err = s.join(func() {})
	assert.ErrorIs(t, err, ErrShuttingDown)
}
