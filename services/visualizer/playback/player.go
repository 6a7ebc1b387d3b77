// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package playback drives a cursor through a recorded sorting trace.
//
// # Description
//
// The sorting engine computes a whole trace up front. A Player turns that
// trace into a sequence of Frames over time: it applies one step per tick,
// materializes the step into a visual array of identity-stable Elements, and
// hands each Frame to a Sink (a WebSocket writer, a terminal renderer).
//
// # Controls
//
//   - Play/Resume, Pause: start and stop the timer-driven advance
//   - StepForward, StepBackward, Seek: move the cursor manually (pauses)
//   - Reset: back to the initial array (pauses)
//   - SetSpeed, SpeedUp, SpeedDown: 1..10, see SpeedToDelay
//   - Load, LoadRun: replace the trace
//
// # Thread Safety
//
// All methods are safe for concurrent use. A state change and the
// publication of its Frame are atomic with respect to other state changes:
// once Load, Pause or Reset returns, no Frame computed from the previous
// state reaches the Sink. The Sink must not call back into the Player.
package playback

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
)

// Sink receives every Frame the player publishes, in order.
type Sink func(Frame)

// Option configures a Player.
type Option func(*Player)

// WithSink sets the frame consumer.
func WithSink(sink Sink) Option {
	return func(p *Player) {
		p.sink = sink
	}
}

// WithSpeed sets the initial speed (clamped to 1..10).
func WithSpeed(speed int) Option {
	return func(p *Player) {
		p.speed = ClampSpeed(speed)
	}
}

// WithDelay overrides the speed-to-delay mapping. Used by tests and by the
// CLI when it renders without a terminal.
func WithDelay(fn func(speed int) time.Duration) Option {
	return func(p *Player) {
		if fn != nil {
			p.delay = fn
		}
	}
}

// Player is the playback driver for one visualizer session.
type Player struct {
	// pubMu serializes a state change with the publication of its frame.
	// Lock order: pubMu, then mu.
	pubMu sync.Mutex
	mu    sync.Mutex

	sink  Sink
	delay func(speed int) time.Duration

	traceID   string
	algorithm sorting.Algorithm
	initial   []Element
	steps     []sorting.Step
	elements  []Element
	cursor    int
	speed     int
	loaded    bool

	playing    bool
	cancel     context.CancelFunc
	generation uint64
	closed     bool
}

// NewPlayer creates an empty player. Load a trace before playing it.
func NewPlayer(opts ...Option) *Player {
	p := &Player{
		speed: DefaultSpeed,
		delay: SpeedToDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// =============================================================================
// Loading
// =============================================================================

// Load runs algorithm a on a snapshot of values and replaces the current
// trace with the result.
//
// # Description
//
// Any running playback is stopped and its pending advance discarded. The new
// trace starts at cursor 0 with fresh element identities.
//
// # Outputs
//
//   - Frame: The initial frame of the new trace.
//   - error: sorting.ErrUnknownAlgorithm (wrapped), or ErrClosed.
func (p *Player) Load(a sorting.Algorithm, values []float64) (Frame, error) {
	run, err := sorting.Run(a, values)
	if err != nil {
		return Frame{}, fmt.Errorf("load trace: %w", err)
	}
	return p.LoadRun(a, values, run)
}

// LoadRun replaces the current trace with a precomputed run. values must be
// the input the run was recorded from.
func (p *Player) LoadRun(a sorting.Algorithm, values []float64, run sorting.SortRun) (Frame, error) {
	return p.mutate(func() error {
		if p.closed {
			return ErrClosed
		}
		p.stopLocked()
		p.traceID = uuid.NewString()
		p.algorithm = a
		p.initial = NewElements(values)
		p.steps = run.Steps
		p.loaded = true
		p.rebuildLocked(0)
		return nil
	})
}

// =============================================================================
// Playback Controls
// =============================================================================

// Play starts advancing one step per tick until the trace ends, Pause is
// called, the trace is replaced, or ctx is cancelled. Playing a finished
// trace is a no-op.
func (p *Player) Play(ctx context.Context) (Frame, error) {
	return p.mutate(func() error {
		if err := p.readyLocked(); err != nil {
			return err
		}
		if p.playing || p.cursor >= len(p.steps) {
			return nil
		}

		runCtx, cancel := context.WithCancel(ctx)
		p.generation++
		p.playing = true
		p.cancel = cancel
		go p.loop(runCtx, p.generation)
		return nil
	})
}

// Resume is Play under the name the controls use after a pause.
func (p *Player) Resume(ctx context.Context) (Frame, error) {
	return p.Play(ctx)
}

// Pause stops playback. The cursor stays where it is.
func (p *Player) Pause() (Frame, error) {
	return p.mutate(func() error {
		if err := p.readyLocked(); err != nil {
			return err
		}
		p.stopLocked()
		return nil
	})
}

// StepForward pauses and applies the next step, if any.
func (p *Player) StepForward() (Frame, error) {
	return p.mutate(func() error {
		if err := p.readyLocked(); err != nil {
			return err
		}
		p.stopLocked()
		p.advanceLocked()
		return nil
	})
}

// StepBackward pauses and moves the cursor back one step.
func (p *Player) StepBackward() (Frame, error) {
	return p.mutate(func() error {
		if err := p.readyLocked(); err != nil {
			return err
		}
		p.stopLocked()
		if p.cursor > 0 {
			p.rebuildLocked(p.cursor - 1)
		}
		return nil
	})
}

// Seek pauses and moves the cursor to k applied steps, clamped to the trace.
func (p *Player) Seek(k int) (Frame, error) {
	return p.mutate(func() error {
		if err := p.readyLocked(); err != nil {
			return err
		}
		p.stopLocked()
		k = max(0, min(k, len(p.steps)))
		if k >= p.cursor {
			for p.cursor < k {
				p.advanceLocked()
			}
			return nil
		}
		p.rebuildLocked(k)
		return nil
	})
}

// Reset pauses and restores the initial array.
func (p *Player) Reset() (Frame, error) {
	return p.mutate(func() error {
		if err := p.readyLocked(); err != nil {
			return err
		}
		p.stopLocked()
		p.rebuildLocked(0)
		return nil
	})
}

// SetSpeed changes the speed, clamped to 1..10. A running playback picks it
// up on its next tick.
func (p *Player) SetSpeed(speed int) (Frame, error) {
	return p.mutate(func() error {
		if p.closed {
			return ErrClosed
		}
		p.speed = ClampSpeed(speed)
		return nil
	})
}

// SpeedUp raises the speed by one.
func (p *Player) SpeedUp() (Frame, error) {
	return p.SetSpeed(p.Speed() + 1)
}

// SpeedDown lowers the speed by one.
func (p *Player) SpeedDown() (Frame, error) {
	return p.SetSpeed(p.Speed() - 1)
}

// Speed returns the current speed setting.
func (p *Player) Speed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// Snapshot returns the current frame without publishing it.
func (p *Player) Snapshot() (Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.readyLocked(); err != nil {
		return Frame{}, err
	}
	return p.frameLocked(), nil
}

// Close stops playback for good. Later calls return ErrClosed.
func (p *Player) Close() {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.closed = true
}

// =============================================================================
// Internals
// =============================================================================

// mutate runs fn under both locks and publishes the resulting frame.
func (p *Player) mutate(fn func() error) (Frame, error) {
	p.pubMu.Lock()
	defer p.pubMu.Unlock()

	p.mu.Lock()
	if err := fn(); err != nil {
		p.mu.Unlock()
		return Frame{}, err
	}
	var frame Frame
	publish := p.loaded
	if publish {
		frame = p.frameLocked()
	}
	p.mu.Unlock()

	if publish {
		p.publish(frame)
	}
	return frame, nil
}

// loop is the timer-driven advance. It exits when its generation is
// superseded, the trace ends, or ctx is cancelled.
func (p *Player) loop(ctx context.Context, gen uint64) {
	for {
		p.pubMu.Lock()
		p.mu.Lock()
		if gen != p.generation || p.closed {
			p.mu.Unlock()
			p.pubMu.Unlock()
			return
		}

		p.advanceLocked()
		done := p.cursor >= len(p.steps)
		if done {
			p.stopLocked()
		}
		frame := p.frameLocked()
		wait := p.delay(p.speed)
		p.mu.Unlock()

		p.publish(frame)
		p.pubMu.Unlock()

		if done {
			return
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.pubMu.Lock()
			p.mu.Lock()
			if gen != p.generation || p.closed {
				p.mu.Unlock()
				p.pubMu.Unlock()
				return
			}
			p.stopLocked()
			frame := p.frameLocked()
			p.mu.Unlock()
			p.publish(frame)
			p.pubMu.Unlock()
			return
		case <-timer.C:
		}
	}
}

func (p *Player) readyLocked() error {
	if p.closed {
		return ErrClosed
	}
	if !p.loaded {
		return ErrNoTrace
	}
	return nil
}

// stopLocked cancels any running loop and invalidates its pending advance.
func (p *Player) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.playing = false
	p.generation++
}

func (p *Player) advanceLocked() bool {
	if p.cursor >= len(p.steps) {
		return false
	}
	materialize(p.elements, p.steps[p.cursor])
	p.cursor++
	return true
}

// rebuildLocked replays the first k steps from the initial array. Element
// states depend on the whole history, so moving backwards always replays.
func (p *Player) rebuildLocked(k int) {
	p.elements = slices.Clone(p.initial)
	p.cursor = 0
	for p.cursor < k && p.advanceLocked() {
	}
}

func (p *Player) frameLocked() Frame {
	stats := sorting.Stats(p.steps, p.cursor)
	frame := Frame{
		TraceID:   p.traceID,
		Algorithm: p.algorithm,
		Cursor:    p.cursor,
		Total:     len(p.steps),
		Playing:   p.playing,
		Complete:  len(p.steps) > 0 && p.cursor >= len(p.steps),
		Speed:     p.speed,
		Elements:  slices.Clone(p.elements),
		Stats:     stats,
		Progress:  stats.Progress(),
	}
	if p.cursor > 0 {
		step := p.steps[p.cursor-1]
		frame.Step = &step
		frame.Tones = tonesFor(step, frame.Elements)
	}
	return frame
}

func (p *Player) publish(frame Frame) {
	if p.sink != nil {
		p.sink(frame)
	}
}
