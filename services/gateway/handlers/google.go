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
	"errors"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/AleutianIntranet/services/gateway/datatypes"
	"github.com/AleutianAI/AleutianIntranet/services/workspace"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// HandleAppsScriptProxy serves GET /api/google?endpoint=…&query=…, keeping
// the Apps Script URL out of the browser. The JSON reply is passed through
// byte-for-byte; non-JSON upstream bodies become a 502 rather than being
// forwarded.
func HandleAppsScriptProxy(client *workspace.AppsScriptClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := jiraTracer.Start(c.Request.Context(), "HandleAppsScriptProxy")
		defer span.End()

		if client == nil {
			c.JSON(http.StatusServiceUnavailable, datatypes.ErrorResponse{
				Error: "Apps Script backend not configured"})
			return
		}
		endpoint := c.Query("endpoint")
		if endpoint == "" {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{
				Error: "Missing endpoint parameter"})
			return
		}
		span.SetAttributes(attribute.String("gas.endpoint", endpoint))

		raw, err := client.Call(ctx, endpoint, c.Query("query"))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			slog.Error("Apps Script proxy failed", "endpoint", endpoint, "error", err)
			msg := "Google proxy failed"
			if errors.Is(err, workspace.ErrNonJSON) {
				msg = "Invalid JSON from Apps Script"
			}
			c.JSON(http.StatusBadGateway, datatypes.ErrorResponse{Error: msg})
			return
		}
		c.Data(http.StatusOK, "application/json", raw)
	}
}
