// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes holds the request and response shapes the gateway
// exchanges with the dashboard frontend.
package datatypes

import (
	"github.com/AleutianAI/AleutianIntranet/services/jira"
	"github.com/AleutianAI/AleutianIntranet/services/resources"
)

// SprintResponse is the envelope of GET /api/jira/sprint. Issues is always
// present on success, even when the sprint is empty.
type SprintResponse struct {
	Success bool         `json:"success"`
	Issues  []jira.Issue `json:"issues"`
	Error   string       `json:"error,omitempty"`
}

// RoadmapResponse is the envelope of GET /api/jira/roadmap. The frontend
// reads epics from the same "issues" field the sprint endpoint uses.
type RoadmapResponse struct {
	Success bool        `json:"success"`
	Issues  []jira.Epic `json:"issues"`
	Error   string      `json:"error,omitempty"`
}

// StandupRequest is the payload of POST /api/chat/standup. Both fields are
// mandatory; gin's binding layer rejects the request otherwise.
type StandupRequest struct {
	SubmittedBy string `json:"submittedBy" binding:"required"`
	Message     string `json:"message" binding:"required"`
}

// StandupResponse acknowledges a standup post.
type StandupResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SearchResponse is the envelope of GET /api/resources/search. Results is
// always present, even when empty, so the widget can render without nil
// checks.
type SearchResponse struct {
	Success bool               `json:"success"`
	Results []resources.Result `json:"results"`
	Error   string             `json:"error,omitempty"`
}

// ErrorResponse is the generic failure envelope for endpoints without a
// richer shape.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
