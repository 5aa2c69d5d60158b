// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package jira implements the issue fetch client and the aggregation and
// normalization engine behind the intranet sprint and roadmap views.
//
// The client executes single search requests against a Jira-compatible
// tracker and shields callers from transport and authentication details.
// The engine (see roadmap.go) reshapes raw results into the stable internal
// Issue/Epic form and computes rollup progress.
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("aleutian.intranet.jira")

// maxResultsCeiling caps any single search; the tracker truncates beyond it
// anyway, so asking for more just hides the truncation.
const maxResultsCeiling = 200

// HTTPDoer allows injecting mock HTTP clients for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig carries the upstream coordinates and credentials. It is built
// once at process start and handed to NewClient; nothing in this package
// reads the environment ad hoc.
type ClientConfig struct {
	// BaseURL is the tracker root, e.g. "https://company.atlassian.net".
	BaseURL string

	// Email and APIToken form the basic-auth pair.
	Email    string
	APIToken string

	// Timeout bounds each upstream call. Default: 30s.
	Timeout time.Duration

	// RequestsPerSecond throttles calls against the shared tenant.
	// Zero disables throttling.
	RequestsPerSecond float64
}

// Client is the issue fetch client. It is read-only with respect to the
// tracker, performs no retries, and is safe for concurrent use.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	authHeader string
	limiter    *rate.Limiter

	// RequestHook, when set, is invoked after every upstream call with the
	// operation name, the response status (0 on transport error) and the
	// elapsed time. Used to feed proxy metrics without coupling this
	// package to the metrics registry.
	RequestHook func(op string, status int, elapsed time.Duration)
}

// NewClient builds a Client from cfg. The authorization header is encoded
// once here; credentials are never logged and never exposed to callers.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("jira base URL is required")
	}
	if cfg.Email == "" || cfg.APIToken == "" {
		return nil, fmt.Errorf("jira credentials are required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	token := base64.StdEncoding.EncodeToString([]byte(cfg.Email + ":" + cfg.APIToken))
	slog.Info("Initializing Jira client", "base_url", cfg.BaseURL,
		"credentials_present", true)
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		authHeader: "Basic " + token,
		limiter:    limiter,
	}, nil
}

// BaseURL returns the configured tracker root, used to derive browse URLs.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search executes one JQL search via POST /rest/api/3/search/jql and returns
// the raw issues unmodified. maxResults is clamped to the 200 ceiling.
// Non-2xx responses surface as *UpstreamError; undecodable bodies as
// ErrMalformedResponse. There are no retries.
func (c *Client) Search(ctx context.Context, jql string, fields []string, maxResults int) ([]RawIssue, error) {
	ctx, span := tracer.Start(ctx, "Client.Search")
	defer span.End()
	span.SetAttributes(attribute.Int("jira.max_results", maxResults))

	if maxResults <= 0 || maxResults > maxResultsCeiling {
		maxResults = maxResultsCeiling
	}
	body, err := json.Marshal(searchRequest{
		JQL:        jql,
		Fields:     fields,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	var out searchResponse
	if err := c.do(ctx, "search", http.MethodPost, "/rest/api/3/search/jql", body, &out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out.Issues, nil
}

// ActiveSprint resolves the currently open sprint for a board. A board with
// no open sprint yields ErrNoActiveSprint, and callers are expected to skip
// the follow-up issue fetch entirely.
func (c *Client) ActiveSprint(ctx context.Context, boardID int) (Sprint, error) {
	ctx, span := tracer.Start(ctx, "Client.ActiveSprint")
	defer span.End()
	span.SetAttributes(attribute.Int("jira.board_id", boardID))

	var out sprintListResponse
	path := fmt.Sprintf("/rest/agile/1.0/board/%d/sprint?state=active", boardID)
	if err := c.do(ctx, "active_sprint", http.MethodGet, path, nil, &out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Sprint{}, err
	}
	if len(out.Values) == 0 {
		return Sprint{}, ErrNoActiveSprint
	}
	return out.Values[0], nil
}

// SprintIssues fetches the issues of one sprint.
func (c *Client) SprintIssues(ctx context.Context, sprintID int) ([]RawIssue, error) {
	ctx, span := tracer.Start(ctx, "Client.SprintIssues")
	defer span.End()
	span.SetAttributes(attribute.Int("jira.sprint_id", sprintID))

	var out searchResponse
	path := fmt.Sprintf("/rest/agile/1.0/sprint/%d/issue", sprintID)
	if err := c.do(ctx, "sprint_issues", http.MethodGet, path, nil, &out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out.Issues, nil
}

// BoardIssues fetches a board's issues directly, for kanban-style boards
// that never carry sprints.
func (c *Client) BoardIssues(ctx context.Context, boardID int) ([]RawIssue, error) {
	ctx, span := tracer.Start(ctx, "Client.BoardIssues")
	defer span.End()
	span.SetAttributes(attribute.Int("jira.board_id", boardID))

	var out searchResponse
	path := fmt.Sprintf("/rest/agile/1.0/board/%d/issue", boardID)
	if err := c.do(ctx, "board_issues", http.MethodGet, path, nil, &out); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out.Issues, nil
}

// BoardSprintIssues is the sequential two-step chain: resolve the active
// sprint, then fetch its issues. The second call is skipped entirely when
// the first finds no open sprint.
func (c *Client) BoardSprintIssues(ctx context.Context, boardID int) ([]RawIssue, error) {
	sprint, err := c.ActiveSprint(ctx, boardID)
	if err != nil {
		return nil, err
	}
	slog.Debug("Resolved active sprint", "board_id", boardID,
		"sprint_id", sprint.ID, "sprint_name", sprint.Name)
	return c.SprintIssues(ctx, sprint.ID)
}

// do performs one upstream call and decodes the JSON body into out.
func (c *Client) do(ctx context.Context, op, method, path string, body []byte, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, 0, start)
		return fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()
	c.observe(op, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		slog.Error("Jira request failed", "op", op, "status", resp.StatusCode)
		return &UpstreamError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s body: %v", ErrMalformedResponse, op, err)
	}
	return nil
}

func (c *Client) observe(op string, status int, start time.Time) {
	if c.RequestHook != nil {
		c.RequestHook(op, status, time.Since(start))
	}
}
