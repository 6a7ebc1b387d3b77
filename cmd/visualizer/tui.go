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
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/mitchell-917/algorithm-visualizer/pkg/arraygen"
	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/playback"
	"github.com/spf13/cobra"
)

// ErrNoTerminal is returned when the interactive player has no terminal.
var ErrNoTerminal = errors.New("interactive mode requires a terminal; use `visualizer play`")

// headerLines is the height of renderHeader plus its box padding.
const headerLines = 4

// =============================================================================
// Key Bindings
// =============================================================================

// playerKeys mirrors the visualizer's keyboard shortcuts.
type playerKeys struct {
	PlayPause key.Binding
	Reset     key.Binding
	Forward   key.Binding
	Backward  key.Binding
	Faster    key.Binding
	Slower    key.Binding
	End       key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultPlayerKeys() playerKeys {
	return playerKeys{
		PlayPause: key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/pause")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Forward:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "step")),
		Backward:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "back")),
		Faster:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		End:       key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "jump to end")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k playerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Forward, k.Backward, k.Reset, k.Help, k.Quit}
}

func (k playerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Reset, k.End},
		{k.Forward, k.Backward},
		{k.Faster, k.Slower},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// Model
// =============================================================================

// frameMsg carries a frame published by the player.
type frameMsg playback.Frame

// playerModel is the bubbletea model around a playback.Player.
//
// The player's sink keeps only the newest unread frame, so a slow redraw
// never blocks playback and never shows a frame older than the last one
// published.
type playerModel struct {
	ctx      context.Context
	player   *playback.Player
	frames   chan playback.Frame
	frame    playback.Frame
	keys     playerKeys
	help     help.Model
	viewport viewport.Model
	ready    bool
	err      error
}

func newPlayerModel(ctx context.Context, speed int, opts ...playback.Option) *playerModel {
	m := &playerModel{
		ctx:    ctx,
		frames: make(chan playback.Frame, 1),
		keys:   defaultPlayerKeys(),
		help:   help.New(),
	}
	opts = append([]playback.Option{playback.WithSpeed(speed), playback.WithSink(m.offer)}, opts...)
	m.player = playback.NewPlayer(opts...)
	return m
}

// offer replaces any unread frame with f. The player serializes sink calls,
// so after the drain the send cannot block.
func (m *playerModel) offer(f playback.Frame) {
	select {
	case m.frames <- f:
	default:
		select {
		case <-m.frames:
		default:
		}
		m.frames <- f
	}
}

func (m *playerModel) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		f, ok := <-m.frames
		if !ok {
			return nil
		}
		return frameMsg(f)
	}
}

// close stops the player. No frame is offered after it returns.
func (m *playerModel) close() {
	m.player.Close()
	close(m.frames)
}

func (m *playerModel) Init() tea.Cmd {
	return m.waitForFrame()
}

func (m *playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		height := max(1, msg.Height-headerLines-2)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(renderBars(m.frame))
		return m, nil

	case frameMsg:
		m.frame = playback.Frame(msg)
		m.viewport.SetContent(renderBars(m.frame))
		return m, m.waitForFrame()

	case tea.KeyMsg:
		if handled, cmd := m.handleKey(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleKey applies a playback shortcut. Keys it does not own fall through
// to the viewport for scrolling.
func (m *playerModel) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	var err error
	switch {
	case key.Matches(msg, m.keys.Quit):
		return true, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	case key.Matches(msg, m.keys.PlayPause):
		err = m.togglePlay()
	case key.Matches(msg, m.keys.Reset):
		_, err = m.player.Reset()
	case key.Matches(msg, m.keys.Forward):
		_, err = m.player.StepForward()
	case key.Matches(msg, m.keys.Backward):
		_, err = m.player.StepBackward()
	case key.Matches(msg, m.keys.Faster):
		_, err = m.player.SpeedUp()
	case key.Matches(msg, m.keys.Slower):
		_, err = m.player.SpeedDown()
	case key.Matches(msg, m.keys.End):
		_, err = m.player.Seek(m.frame.Total)
	default:
		return false, nil
	}
	m.err = err
	return true, nil
}

// togglePlay pauses a running trace, restarts a finished one, and plays
// otherwise.
func (m *playerModel) togglePlay() error {
	f, err := m.player.Snapshot()
	if err != nil {
		return err
	}
	switch {
	case f.Playing:
		_, err = m.player.Pause()
	case f.Complete:
		if _, err = m.player.Reset(); err == nil {
			_, err = m.player.Play(m.ctx)
		}
	default:
		_, err = m.player.Play(m.ctx)
	}
	return err
}

func (m *playerModel) View() string {
	view := styles.Box.Render(renderHeader(m.frame)) + "\n" + m.viewport.View() + "\n" + m.help.View(m.keys)
	if m.err != nil {
		view += "\n" + styles.Error.Render(m.err.Error())
	}
	return view
}

// =============================================================================
// Command
// =============================================================================

func newTUICmd() *cobra.Command {
	var (
		input     inputFlags
		algorithm string
		speed     int
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Step through a trace interactively",
		Long: `Step through a trace interactively.

Without --algorithm a picker asks for the algorithm and input shape.
Keys: space play/pause, ←/→ step, r reset, +/- speed, G end, ? help, q quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdout) {
				return ErrNoTerminal
			}
			if !cmd.Flags().Changed("algorithm") && input.values == "" {
				if err := pickInput(&algorithm, &input.preset); err != nil {
					return err
				}
			}

			algo, err := sorting.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			values, err := input.resolve()
			if err != nil {
				return err
			}

			m := newPlayerModel(cmd.Context(), speed)
			defer m.close()
			if _, err := m.player.Load(algo, values); err != nil {
				return err
			}

			_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
	input.register(cmd)
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(sorting.Bubble), "algorithm id")
	cmd.Flags().IntVar(&speed, "speed", playback.DefaultSpeed, "initial playback speed 1..10")
	return cmd
}

// pickInput asks for an algorithm and a preset.
func pickInput(algorithm, preset *string) error {
	algoOpts := make([]huh.Option[string], 0, len(sorting.Algorithms()))
	for _, info := range sorting.Infos() {
		algoOpts = append(algoOpts, huh.NewOption(info.Name, string(info.ID)))
	}
	presetOpts := make([]huh.Option[string], 0, len(arraygen.Presets()))
	for _, p := range arraygen.Presets() {
		presetOpts = append(presetOpts, huh.NewOption(string(p), string(p)))
	}

	form := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Algorithm").Options(algoOpts...).Value(algorithm),
		huh.NewSelect[string]().Title("Input").Options(presetOpts...).Value(preset),
	))
	if err := form.Run(); err != nil {
		return fmt.Errorf("input picker: %w", err)
	}
	return nil
}
