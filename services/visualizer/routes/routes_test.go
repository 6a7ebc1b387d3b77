// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/handlers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func registered(router *gin.Engine, method, path string) bool {
	for _, r := range router.Routes() {
		if r.Method == method && r.Path == path {
			return true
		}
	}
	return false
}

func TestSetupRoutes(t *testing.T) {
	router := gin.New()
	reg := prometheus.NewRegistry()
	SetupRoutes(router, handlers.DefaultDeps(), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	expected := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"GET", "/v1/algorithms"},
		{"GET", "/v1/algorithms/:id"},
		{"POST", "/v1/sort"},
		{"POST", "/v1/sort/compare"},
		{"POST", "/v1/arrays/generate"},
		{"POST", "/v1/arrays/parse"},
		{"GET", "/v1/playback/ws"},
	}
	for _, e := range expected {
		assert.True(t, registered(router, e.method, e.path), "route %s %s not registered", e.method, e.path)
	}
}

func TestSetupRoutes_WithoutMetrics(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, handlers.DefaultDeps(), nil)

	assert.False(t, registered(router, "GET", "/metrics"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRoutes_SortEndToEnd(t *testing.T) {
	router := gin.New()
	SetupRoutes(router, handlers.DefaultDeps(), nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/sort",
		strings.NewReader(`{"algorithm":"selection","values":[4,2,3]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sortedArray":[2,3,4]`)
}
