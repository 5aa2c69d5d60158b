// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workspace talks to the Google-side collaborators of the intranet:
// the Apps Script web app that fronts the team spreadsheet (users, leaves,
// availability, drive search) and the Google Chat incoming webhook used for
// daily standups. Both keep their URLs server-side; the browser never sees
// them.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("aleutian.intranet.workspace")

var (
	// ErrNotConfigured is returned when the Apps Script or webhook URL is
	// absent from the configuration.
	ErrNotConfigured = errors.New("workspace upstream not configured")

	// ErrNonJSON is returned when the Apps Script replies with a body that
	// is not valid JSON (usually an HTML error page). The body is never
	// forwarded as-is.
	ErrNonJSON = errors.New("apps script returned non-JSON body")
)

// HTTPDoer allows injecting mock HTTP clients for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AppsScriptClient calls the published /exec endpoint of the Apps Script
// web app. The script multiplexes on an "endpoint" parameter; this client
// forwards it plus an optional query term and passes the JSON reply through
// untouched.
type AppsScriptClient struct {
	httpClient HTTPDoer
	execURL    string
}

// NewAppsScriptClient builds a client for the given /exec URL.
func NewAppsScriptClient(execURL string) (*AppsScriptClient, error) {
	if execURL == "" {
		return nil, ErrNotConfigured
	}
	return &AppsScriptClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		execURL:    strings.TrimSuffix(execURL, "/"),
	}, nil
}

// Call performs one GET against the script and returns the raw JSON body.
// Bodies that fail to parse as JSON surface as ErrNonJSON rather than being
// coerced into an empty result.
func (c *AppsScriptClient) Call(ctx context.Context, endpoint, query string) (json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "AppsScriptClient.Call")
	defer span.End()
	span.SetAttributes(attribute.String("gas.endpoint", endpoint))

	params := url.Values{}
	params.Set("endpoint", endpoint)
	if query != "" {
		params.Set("query", query)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.execURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build apps script request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("apps script request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read apps script body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("Apps Script request failed", "endpoint", endpoint,
			"status", resp.StatusCode)
		return nil, fmt.Errorf("apps script status %d", resp.StatusCode)
	}
	if !json.Valid(body) {
		slog.Error("Apps Script returned non-JSON", "endpoint", endpoint,
			"body_len", len(body))
		return nil, ErrNonJSON
	}
	return json.RawMessage(body), nil
}
