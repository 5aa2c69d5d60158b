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
	"log/slog"
	"net/http"

	"github.com/AleutianAI/AleutianIntranet/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianIntranet/services/resources"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ResourceSearcher is the federation capability behind the search widget.
type ResourceSearcher interface {
	Search(ctx context.Context, source, q string) ([]resources.Result, error)
}

// HandleResourceSearch serves GET /api/resources/search?source=…&q=….
// A request without a query or source is an empty result, not an error;
// the widget fires on every keystroke and empty input is normal.
func HandleResourceSearch(searcher ResourceSearcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := jiraTracer.Start(c.Request.Context(), "HandleResourceSearch")
		defer span.End()

		source := c.Query("source")
		q := c.Query("q")
		if source == "" || q == "" {
			c.JSON(http.StatusOK, datatypes.SearchResponse{
				Success: true, Results: []resources.Result{}})
			return
		}
		span.SetAttributes(attribute.String("search.source", source))

		results, err := searcher.Search(ctx, source, q)
		if err != nil {
			slog.Warn("Resource search rejected", "source", source, "error", err)
			c.JSON(http.StatusBadRequest, datatypes.SearchResponse{
				Success: false, Results: []resources.Result{}, Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, datatypes.SearchResponse{Success: true, Results: results})
	}
}
