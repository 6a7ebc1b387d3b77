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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mitchell-917/algorithm-visualizer/pkg/sorting"
	"github.com/mitchell-917/algorithm-visualizer/services/visualizer/datatypes"
)

// ListAlgorithms returns every algorithm's metadata in canonical order.
func ListAlgorithms() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"algorithms": sorting.Infos()})
	}
}

// GetAlgorithm returns one algorithm's metadata. The id accepts the same
// spellings as sorting.ParseAlgorithm.
func GetAlgorithm() gin.HandlerFunc {
	return func(c *gin.Context) {
		algo, err := sorting.ParseAlgorithm(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, datatypes.NewErrorResponse("algorithm not found", err.Error()))
			return
		}
		info, err := sorting.Lookup(algo)
		if err != nil {
			c.JSON(http.StatusNotFound, datatypes.NewErrorResponse("algorithm not found", err.Error()))
			return
		}
		c.JSON(http.StatusOK, info)
	}
}
