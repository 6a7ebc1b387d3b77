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
	"errors"
	"sync"
)

// ErrShuttingDown is returned once Sessions has been closed.
var ErrShuttingDown = errors.New("server is shutting down")

// Sessions tracks live playback sessions.
//
// # Description
//
// http.Server.Shutdown does not wait for hijacked connections, so the
// service closes its WebSocket sessions through Sessions instead. Close
// cancels every session (each sends a close frame to its client) and waits
// for them to finish.
//
// # Thread Safety
//
// All methods are safe for concurrent use. A nil *Sessions tracks nothing.
type Sessions struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewSessions returns an open tracker.
func NewSessions() *Sessions {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sessions{ctx: ctx, cancel: cancel}
}

// join registers a session whose cancel runs when the tracker closes. The
// returned release must be called when the session ends.
func (s *Sessions) join(cancel context.CancelFunc) (release func(), err error) {
	if s == nil {
		return func() {}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrShuttingDown
	}
	s.wg.Add(1)
	stop := context.AfterFunc(s.ctx, cancel)
	return func() {
		stop()
		s.wg.Done()
	}, nil
}

// Close cancels all sessions and waits for them until ctx is done.
func (s *Sessions) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
