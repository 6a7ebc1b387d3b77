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
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mitchell-917/algorithm-visualizer/pkg/arraygen"
	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/config"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/playback"
	"github.com/spf13/cobra"
)

// inputFlags selects the array a command sorts.
type inputFlags struct {
	values string
	preset string
	size   int
	seed   uint64
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.values, "values", "", "comma or space separated integers (overrides --preset)")
	cmd.Flags().StringVar(&f.preset, "preset", "", "random, sorted, reverse, nearly or few-unique")
	cmd.Flags().IntVar(&f.size, "size", arraygen.DefaultSize, "array size for generated input")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "seed for generated input (0 picks one)")
}

// resolve parses --values, or generates from --preset/--size.
func (f *inputFlags) resolve() ([]float64, error) {
	if strings.TrimSpace(f.values) != "" {
		return arraygen.Parse(f.values)
	}
	if f.size < 0 || f.size > arraygen.MaxCustomValues {
		return nil, fmt.Errorf("%w: size must be between 0 and %d", arraygen.ErrInvalidSize, arraygen.MaxCustomValues)
	}

	gen := newGenerator(f.seed)
	if f.preset == "" {
		return gen.Random(f.size, arraygen.DefaultMin, arraygen.DefaultMax)
	}
	return gen.Preset(arraygen.Preset(f.preset), f.size)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "visualizer",
		Short:         "Step-recording sorting engine and playback server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newConfigCmd(),
		newAlgorithmsCmd(),
		newSortCmd(),
		newGenerateCmd(),
		newPlayCmd(),
		newTUICmd(),
	)
	return root
}

// =============================================================================
// serve
// =============================================================================

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			slog.SetDefault(newLogger(cfg.Logging, os.Stderr))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := visualizer.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to create service: %w", err)
			}
			return svc.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	return cmd
}

// newLogger builds the process logger from the logging config.
func newLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the service configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to path (default visualizer.yaml)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "visualizer.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", styles.Success.Render("✓"), path)
			return nil
		},
	})
	return cmd
}

// =============================================================================
// algorithms
// =============================================================================

func newAlgorithmsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "algorithms",
		Short: "List the available sorting algorithms",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, sorting.Infos())
			}
			for _, info := range sorting.Infos() {
				fmt.Fprintf(out, "%s %s\n", styles.Title.Render(fmt.Sprintf("%-10s", info.ID)), info.Name)
				fmt.Fprintf(out, "  %s\n", styles.Muted.Render(info.Description))
				fmt.Fprintf(out, "  best %s  average %s  worst %s  space %s\n",
					info.TimeComplexity.Best, info.TimeComplexity.Average,
					info.TimeComplexity.Worst, info.SpaceComplexity)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

// =============================================================================
// sort
// =============================================================================

func newSortCmd() *cobra.Command {
	var (
		input     inputFlags
		algorithm string
		trace     bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Record the step trace of one algorithm",
		RunE: func(cmd *cobra.Command, args []string) error {
			algo, err := sorting.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			values, err := input.resolve()
			if err != nil {
				return err
			}

			start := time.Now()
			run, err := sorting.Run(algo, values)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, struct {
					Algorithm sorting.Algorithm  `json:"algorithm"`
					Input     []float64          `json:"input"`
					Stats     sorting.TraceStats `json:"stats"`
					sorting.SortRun
				}{algo, values, sorting.Stats(run.Steps, len(run.Steps)), run})
			}

			if trace {
				for i, step := range run.Steps {
					fmt.Fprintf(out, "%5d %-8s %s\n", i+1, step.Kind, step.Description)
				}
			}
			stats := sorting.Stats(run.Steps, len(run.Steps))
			fmt.Fprintf(out, "%s %d steps in %s\n", styles.Title.Render(string(algo)), len(run.Steps), elapsed.Round(time.Microsecond))
			fmt.Fprintf(out, "  comparisons %d  swaps %d  pivots %d\n", stats.Comparisons, stats.Swaps, stats.Pivots)
			fmt.Fprintf(out, "  input  %s\n", formatValues(values))
			fmt.Fprintf(out, "  sorted %s\n", formatValues(run.SortedArray))
			return nil
		},
	}
	input.register(cmd)
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(sorting.Bubble), "algorithm id")
	cmd.Flags().BoolVar(&trace, "trace", false, "print every step")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the full run as JSON")
	return cmd
}

// =============================================================================
// generate
// =============================================================================

func newGenerateCmd() *cobra.Command {
	var input inputFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a generated input array",
		RunE: func(cmd *cobra.Command, args []string) error {
			input.values = ""
			values, err := input.resolve()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatValues(values))
			return nil
		},
	}
	input.register(cmd)
	return cmd
}

// =============================================================================
// play
// =============================================================================

func newPlayCmd() *cobra.Command {
	var (
		input     inputFlags
		algorithm string
		speed     int
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Animate a trace in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			algo, err := sorting.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			values, err := input.resolve()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return play(ctx, cmd.OutOrStdout(), algo, values, speed)
		},
	}
	input.register(cmd)
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", string(sorting.Bubble), "algorithm id")
	cmd.Flags().IntVar(&speed, "speed", playback.DefaultSpeed, "playback speed 1..10")
	return cmd
}

// play drives a Player to completion, redrawing every frame on a terminal.
// Output that is not a terminal runs without delay and gets the final frame
// only.
func play(ctx context.Context, out io.Writer, algo sorting.Algorithm, values []float64, speed int) error {
	tty := isTerminal(out)
	done := make(chan struct{})
	var closed bool

	opts := []playback.Option{
		playback.WithSpeed(speed),
		playback.WithSink(func(f playback.Frame) {
			switch {
			case tty:
				fmt.Fprint(out, "\033[H\033[2J")
				fmt.Fprintln(out, renderFrame(f))
			case f.Complete:
				fmt.Fprintln(out, renderFrame(f))
			}
			if f.Complete && !closed {
				closed = true
				close(done)
			}
		}),
	}
	if !tty {
		opts = append(opts, playback.WithDelay(func(int) time.Duration { return 0 }))
	}

	player := playback.NewPlayer(opts...)
	defer player.Close()

	frame, err := player.Load(algo, values)
	if err != nil {
		return err
	}
	if frame.Total == 0 {
		return nil
	}
	if _, err := player.Play(ctx); err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// =============================================================================
// Helpers
// =============================================================================

func formatValues(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
