// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package telemetry

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// =============================================================================
// Init
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "")
	t.Setenv("OTEL_METRICS_EXPORTER", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg := DefaultConfig()
	assert.Equal(t, "algorithm-visualizer", cfg.ServiceName)
	assert.Equal(t, ExporterNone, cfg.TraceExporter)
	assert.Equal(t, ExporterPrometheus, cfg.MetricExporter)
	assert.Equal(t, "collector:4317", cfg.OTLPEndpoint)
}

func TestInit_NilContext(t *testing.T) {
	//nolint:staticcheck // nil context is the case under test
	_, err := Init(nil, DefaultConfig())
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestInit_Exporters(t *testing.T) {
	tests := []struct {
		name    string
		traces  string
		metrics string
		wantErr error
	}{
		{"all off", ExporterNone, ExporterNone, nil},
		{"stdout traces", ExporterStdout, ExporterNone, nil},
		{"stdout metrics", ExporterNone, ExporterStdout, nil},
		{"prometheus metrics", ExporterNone, ExporterPrometheus, nil},
		{"otlp traces connect lazily", ExporterOTLP, ExporterNone, nil},
		{"unknown trace exporter", "zipkin", ExporterNone, ErrUnknownExporter},
		{"unknown metric exporter", ExporterNone, "statsd", ErrUnknownExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.TraceExporter = tt.traces
			cfg.MetricExporter = tt.metrics
			cfg.OTLPEndpoint = "127.0.0.1:4317"
			cfg.Registerer = prometheus.NewRegistry()

			shutdown, err := Init(context.Background(), cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, shutdown)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = shutdown(ctx)
		})
	}
}

func TestInit_PrometheusRegistersEngineMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := DefaultConfig()
	cfg.TraceExporter = ExporterNone
	cfg.MetricExporter = ExporterPrometheus
	cfg.Registerer = reg

	shutdown, err := Init(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	m, err := NewEngineMetrics(otel.Meter(TracerName))
	require.NoError(t, err)
	run := sorting.BubbleSort([]float64{2, 1})
	m.RecordRun(context.Background(), sorting.Bubble, 2, run, time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.True(t, containsPrefix(names, "visualizer_engine_steps"), "got %v", names)
}

func containsPrefix(names []string, prefix string) bool {
	for _, n := range names {
		if strings.HasPrefix(n, prefix) {
			return true
		}
	}
	return false
}

// =============================================================================
// Engine Metrics
// =============================================================================

func TestEngineMetrics_RecordRun(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewEngineMetrics(mp.Meter("test"))
	require.NoError(t, err)

	// Compare, Swap, Sorted, Sorted, Sorted
	run := sorting.BubbleSort([]float64{2, 1})
	m.RecordRun(context.Background(), sorting.Bubble, 2, run, 3*time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byKind := map[string]int64{}
	var sawDuration, sawSize bool
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch md.Name {
			case "visualizer_engine_steps_total":
				sum, ok := md.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				for _, dp := range sum.DataPoints {
					kind, _ := dp.Attributes.Value(attribute.Key("kind"))
					algo, _ := dp.Attributes.Value(attribute.Key("algorithm"))
					assert.Equal(t, "bubble", algo.AsString())
					byKind[kind.AsString()] += dp.Value
				}
			case "visualizer_engine_run_duration_seconds":
				sawDuration = true
			case "visualizer_engine_input_size":
				sawSize = true
			}
		}
	}

	assert.Equal(t, map[string]int64{"compare": 1, "swap": 1, "sorted": 3}, byKind)
	assert.True(t, sawDuration)
	assert.True(t, sawSize)
}

func TestEngineMetrics_NilIsNoop(t *testing.T) {
	var m *EngineMetrics
	assert.NotPanics(t, func() {
		m.RecordRun(context.Background(), sorting.Quick, 0, sorting.SortRun{}, 0)
	})
}

// =============================================================================
// Tracing Helpers
// =============================================================================

func TestSpanHelpers(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	ctx, span := StartSpan(context.Background(), "sort.run")
	assert.NotEmpty(t, TraceID(ctx))
	RecordError(span, errors.New("boom"), attribute.String("algorithm", "bogo"))
	span.End()

	_, ok := StartSpan(context.Background(), "sort.ok")
	SetSpanOK(ok)
	ok.End()

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "boom", ended[0].Status().Description)
	assert.Equal(t, codes.Ok, ended[1].Status().Code)

	assert.Empty(t, TraceID(context.Background()))
	assert.NotPanics(t, func() {
		RecordError(nil, errors.New("x"))
		SetSpanOK(nil)
	})
}
