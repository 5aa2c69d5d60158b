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
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
)

// StandupPoster is the webhook capability the standup handler needs.
// Satisfied by *workspace.ChatWebhook.
type StandupPoster interface {
	Post(ctx context.Context, text string) error
}

// HandleStandup serves POST /api/chat/standup: one webhook delivery per
// submission, no retries. The poster may be nil when no webhook URL is
// configured.
func HandleStandup(poster StandupPoster) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := jiraTracer.Start(c.Request.Context(), "HandleStandup")
		defer span.End()

		if poster == nil {
			c.JSON(http.StatusServiceUnavailable, datatypes.StandupResponse{
				Success: false, Error: "Google Chat webhook not configured"})
			return
		}
		var request datatypes.StandupRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.StandupResponse{
				Success: false, Error: "Invalid payload"})
			return
		}

		text := request.SubmittedBy + "\n\n" + request.Message
		if err := poster.Post(ctx, text); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Standup webhook failed", "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.StandupResponse{
				Success: false, Error: "Failed to post standup to Google Chat"})
			return
		}
		c.JSON(http.StatusOK, datatypes.StandupResponse{Success: true})
	}
}
