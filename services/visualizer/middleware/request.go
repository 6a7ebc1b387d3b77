// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides request-scoped gin middleware for the
// visualizer service.
//
//	Request
//	   │
//	   ▼
//	RequestID     ─► reuse or mint X-Request-ID, store in context
//	   │
//	   ▼
//	RequestLogger ─► one slog line after the handler returns
//	   │
//	   ▼
//	Handler (retrieves via GetRequestID)
package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/telemetry"
)

// =============================================================================
// Context Keys
// =============================================================================

// HeaderRequestID is echoed on every response.
const HeaderRequestID = "X-Request-ID"

const requestIDKey = "visualizer_request_id"

// maxRequestIDLen bounds a client supplied ID before it reaches the logs.
const maxRequestIDLen = 64

// =============================================================================
// Middleware
// =============================================================================

// RequestID assigns each request an ID.
//
// # Description
//
// A client supplied X-Request-ID of at most 64 bytes is kept. Anything else
// is replaced with a fresh UUID. The ID is stored in the gin context and
// set on the response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// GetRequestID returns the ID set by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// RequestLogger writes one structured line per request to logger. A nil
// logger uses slog.Default at call time.
//
// Server errors log at error level, client errors at warn, the rest at info.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := logger
		if l == nil {
			l = slog.Default()
		}

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		l.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			slog.String("request_id", GetRequestID(c)),
			slog.String("trace_id", telemetry.TraceID(c.Request.Context())),
		)
	}
}
