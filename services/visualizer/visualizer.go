// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package visualizer is the algorithm visualizer HTTP service.
//
// It serves recorded sorting traces over REST and drives interactive
// playback over a WebSocket, with OpenTelemetry tracing and Prometheus
// metrics around both.
//
// # Usage
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    return err
//	}
//	svc, err := visualizer.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	return svc.Run(ctx)
package visualizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/config"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/handlers"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/middleware"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/observability"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/routes"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service is the visualizer service lifecycle.
//
// # Thread Safety
//
// Run blocks and should be called once per instance.
type Service interface {
	// Run serves HTTP until ctx is cancelled or the listener fails, then
	// shuts down gracefully and releases telemetry.
	Run(ctx context.Context) error

	// Router returns the configured gin engine, for tests.
	Router() *gin.Engine
}

// =============================================================================
// Implementation
// =============================================================================

type service struct {
	config            config.Config
	router            *gin.Engine
	registry          *prometheus.Registry
	metrics           *observability.Metrics
	engine            *telemetry.EngineMetrics
	sessions          *handlers.Sessions
	telemetryShutdown func(context.Context) error
}

// New builds the service from a validated configuration.
//
// # Description
//
// New initializes, in order:
//  1. OpenTelemetry tracing and engine metrics (exporters per cfg.Telemetry)
//  2. Prometheus metrics on a dedicated registry with Go and process collectors
//  3. The gin router with otelgin middleware and all routes
//
// # Outputs
//
//   - Service: Ready to Run.
//   - error: Invalid configuration or telemetry setup failure.
func New(ctx context.Context, cfg config.Config) (Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &service{
		config:   cfg,
		registry: prometheus.NewRegistry(),
		sessions: handlers.NewSessions(),
	}

	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if err := s.initTelemetry(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	if cfg.Server.EnableMetrics {
		s.metrics = observability.NewMetrics(s.registry)
		slog.Info("Initialized Prometheus metrics")
	}

	s.initRouter()
	return s, nil
}

// Run serves until ctx is done.
func (s *service) Run(ctx context.Context) error {
	defer s.cleanup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting visualizer server", "port", s.config.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down visualizer server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if cerr := s.sessions.Close(shutdownCtx); cerr != nil {
		slog.Warn("Playback sessions did not close in time", "error", cerr)
	}
	if err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func (s *service) Router() *gin.Engine {
	return s.router
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

func (s *service) initTelemetry(ctx context.Context) error {
	tcfg := telemetry.DefaultConfig()
	tcfg.TraceExporter = s.config.Telemetry.TraceExporter
	tcfg.MetricExporter = s.config.Telemetry.MetricExporter
	tcfg.OTLPEndpoint = s.config.Telemetry.OTLPEndpoint
	tcfg.Registerer = s.registry

	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return err
	}
	s.telemetryShutdown = shutdown

	engine, err := telemetry.NewEngineMetrics(otel.Meter(telemetry.TracerName))
	if err != nil {
		_ = shutdown(ctx)
		return err
	}
	s.engine = engine
	return nil
}

func (s *service) initRouter() {
	gin.SetMode(s.config.Server.GinMode)
	s.router = gin.New()
	// RequestLogger runs inside otelgin so the request context still holds
	// the server span when the line is written.
	s.router.Use(
		gin.Recovery(),
		otelgin.Middleware(telemetry.TracerName),
		middleware.RequestID(),
		middleware.RequestLogger(nil),
	)

	deps := handlers.Deps{
		Metrics:  s.metrics,
		Engine:   s.engine,
		Playback: s.config.Playback,
		Sessions: s.sessions,
	}

	var metricsHandler http.Handler
	if s.config.Server.EnableMetrics {
		metricsHandler = promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
	}
	routes.SetupRoutes(s.router, deps, metricsHandler)
}

// cleanup flushes telemetry. Called when Run returns.
func (s *service) cleanup() {
	if s.telemetryShutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.telemetryShutdown(ctx); err != nil {
		slog.Error("failed to shutdown telemetry", "error", err)
	}
}
