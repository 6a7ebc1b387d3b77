// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/handlers"
)

// SetupRoutes registers the visualizer API on router. metrics may be nil,
// in which case /metrics is not served.
func SetupRoutes(router *gin.Engine, deps handlers.Deps, metrics http.Handler) {
	router.GET("/health", handlers.HealthCheck)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/algorithms", handlers.ListAlgorithms())
		v1.GET("/algorithms/:id", handlers.GetAlgorithm())

		v1.POST("/sort", handlers.HandleSort(deps))
		v1.POST("/sort/compare", handlers.HandleCompare(deps))

		arrays := v1.Group("/arrays")
		{
			arrays.POST("/generate", handlers.HandleGenerate(deps))
			arrays.POST("/parse", handlers.HandleParse(deps))
		}

		v1.GET("/playback/ws", handlers.HandlePlaybackWebSocket(deps))
	}
}
