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
	"errors"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/AleutianIntranet/services/gateway/config"
	"github.com/AleutianAI/AleutianIntranet/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianIntranet/services/jira"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var jiraTracer = otel.Tracer("aleutian.intranet.gateway.handlers")

// SprintViewer is the slice of the aggregation engine the sprint handler
// consumes.
type SprintViewer interface {
	BuildSprintView(ctx context.Context, boardID int, kind jira.BoardKind) ([]jira.Issue, error)
}

// RoadmapProvider yields a project's epics with rollup progress. Satisfied
// by *jira.RoadmapCache.
type RoadmapProvider interface {
	Roadmap(ctx context.Context, projectKey string) ([]jira.Epic, error)
}

// HandleSprint serves GET /api/jira/sprint?board=<name|id>. The board
// defaults to the main dashboard. A board without an open sprint is a 404,
// not a server error; upstream failures answer with a generic message and
// keep the details in the log.
func HandleSprint(viewer SprintViewer, boards config.BoardRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := jiraTracer.Start(c.Request.Context(), "HandleSprint")
		defer span.End()

		param := c.DefaultQuery("board", "main")
		span.SetAttributes(attribute.String("board", param))
		board, ok := boards.Resolve(param)
		if !ok {
			c.JSON(http.StatusBadRequest, datatypes.SprintResponse{
				Success: false, Error: "unknown board"})
			return
		}

		issues, err := viewer.BuildSprintView(ctx, board.ID, board.Kind)
		if errors.Is(err, jira.ErrNoActiveSprint) {
			c.JSON(http.StatusNotFound, datatypes.SprintResponse{
				Success: false, Error: "No active sprint found"})
			return
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Sprint fetch failed", "board", param, "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.SprintResponse{
				Success: false, Error: "Jira sprint fetch failed"})
			return
		}
		c.JSON(http.StatusOK, datatypes.SprintResponse{Success: true, Issues: issues})
	}
}

// HandleRoadmap serves GET /api/jira/roadmap?project=<key>. The project
// defaults to the configured roadmap project. The frontend decides what to
// render on failure (typically labeled sample data); this handler only
// reports it.
func HandleRoadmap(provider RoadmapProvider, defaultProject string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := jiraTracer.Start(c.Request.Context(), "HandleRoadmap")
		defer span.End()

		project := c.DefaultQuery("project", defaultProject)
		span.SetAttributes(attribute.String("project", project))

		epics, err := provider.Roadmap(ctx, project)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Roadmap fetch failed", "project", project, "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.RoadmapResponse{
				Success: false, Error: "Jira roadmap fetch failed"})
			return
		}
		c.JSON(http.StatusOK, datatypes.RoadmapResponse{Success: true, Issues: epics})
	}
}
