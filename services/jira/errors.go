// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package jira

import (
	"errors"
	"fmt"
)

var (
	// ErrNoActiveSprint is returned when a board has no open sprint.
	// This is a legitimate terminal outcome, not an upstream failure;
	// callers should surface it as "not found" rather than a 500.
	ErrNoActiveSprint = errors.New("no active sprint for board")

	// ErrMalformedResponse is returned when the tracker's body is not valid
	// JSON or lacks the expected shape. Malformed bodies are never coerced
	// to empty results.
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrRoadmapFetch wraps any failure during the two-step epic/children
	// fetch. The caller decides whether to present cached or sample data.
	ErrRoadmapFetch = errors.New("roadmap fetch failed")
)

// UpstreamError is a non-2xx response from the tracker. The raw body is kept
// for diagnostics; request credentials are never part of it.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256] + "..."
	}
	return fmt.Sprintf("upstream request failed: status %d: %s", e.StatusCode, body)
}
