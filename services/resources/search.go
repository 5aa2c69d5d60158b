// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package resources implements the federated resource search behind the
// dashboard's search widget: Confluence pages, Google Drive files (through
// the Apps Script proxy) and a static Figma pointer. A failing source
// degrades to an empty slice so a single flaky upstream never blanks the
// whole widget.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianIntranet/pkg/validation"
	"github.com/AleutianAI/AleutianIntranet/services/workspace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("aleutian.intranet.resources")

// Result is one search hit, whatever the source.
type Result struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Source names accepted by Federation.Search.
const (
	SourceConfluence = "confluence"
	SourceDrive      = "drive"
	SourceFigma      = "figma"
	SourceAll        = "all"
)

// HTTPDoer allows injecting mock HTTP clients for testing.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ConfluenceConfig holds the wiki search coordinates. The base URL is the
// same Atlassian tenant the Jira client talks to.
type ConfluenceConfig struct {
	BaseURL  string
	Email    string
	APIToken string
}

// Federation searches the configured sources. Sources left unconfigured
// simply return nothing.
type Federation struct {
	httpClient HTTPDoer
	confluence ConfluenceConfig
	drive      *workspace.AppsScriptClient
}

// NewFederation wires the search sources together. drive may be nil when no
// Apps Script URL is configured.
func NewFederation(confluence ConfluenceConfig, drive *workspace.AppsScriptClient) *Federation {
	return &Federation{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		confluence: confluence,
		drive:      drive,
	}
}

// Search runs the query against one named source, or fans out across all of
// them concurrently when source is "all". Per-source failures are logged and
// reduced to empty results; Search itself fails only on an unknown source.
func (f *Federation) Search(ctx context.Context, source, q string) ([]Result, error) {
	ctx, span := tracer.Start(ctx, "Federation.Search")
	defer span.End()
	span.SetAttributes(attribute.String("search.source", source))

	q = validation.SanitizeSearchTerm(q)
	if q == "" {
		return []Result{}, nil
	}

	switch source {
	case SourceConfluence:
		return f.searchConfluence(ctx, q), nil
	case SourceDrive:
		return f.searchDrive(ctx, q), nil
	case SourceFigma:
		return searchFigma(q), nil
	case SourceAll:
		return f.searchAll(ctx, q), nil
	default:
		return nil, fmt.Errorf("unknown search source %q", source)
	}
}

// searchAll queries every source in parallel and concatenates the hits in a
// stable confluence, drive, figma order.
func (f *Federation) searchAll(ctx context.Context, q string) []Result {
	var confluence, drive, figma []Result
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		confluence = f.searchConfluence(ctx, q)
		return nil
	})
	g.Go(func() error {
		drive = f.searchDrive(ctx, q)
		return nil
	})
	g.Go(func() error {
		figma = searchFigma(q)
		return nil
	})
	// Sources never return errors, only empty slices.
	_ = g.Wait()

	combined := make([]Result, 0, len(confluence)+len(drive)+len(figma))
	combined = append(combined, confluence...)
	combined = append(combined, drive...)
	combined = append(combined, figma...)
	return combined
}

// confluenceSearchResponse is the subset of the CQL search envelope we read.
type confluenceSearchResponse struct {
	Results []struct {
		Title string `json:"title"`
		Links struct {
			WebUI string `json:"webui"`
		} `json:"_links"`
	} `json:"results"`
}

func (f *Federation) searchConfluence(ctx context.Context, q string) []Result {
	if f.confluence.BaseURL == "" || f.confluence.Email == "" || f.confluence.APIToken == "" {
		return []Result{}
	}

	cql := fmt.Sprintf(`text~"%s"`, q)
	endpoint := fmt.Sprintf("%s/wiki/rest/api/content/search?cql=%s&limit=10",
		strings.TrimSuffix(f.confluence.BaseURL, "/"), url.QueryEscape(cql))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return []Result{}
	}
	req.SetBasicAuth(f.confluence.Email, f.confluence.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		slog.Warn("Confluence search failed", "error", err)
		return []Result{}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		slog.Warn("Confluence search rejected", "status", resp.StatusCode)
		return []Result{}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []Result{}
	}
	var parsed confluenceSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		slog.Warn("Confluence search returned malformed body", "error", err)
		return []Result{}
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, item := range parsed.Results {
		results = append(results, Result{
			Title:  item.Title,
			URL:    f.confluence.BaseURL + item.Links.WebUI,
			Source: SourceConfluence,
		})
	}
	return results
}

// driveSearchResponse is the Apps Script reply for endpoint=resources.
type driveSearchResponse struct {
	Success bool `json:"success"`
	Files   []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"files"`
}

func (f *Federation) searchDrive(ctx context.Context, q string) []Result {
	if f.drive == nil {
		return []Result{}
	}

	raw, err := f.drive.Call(ctx, "resources", q)
	if err != nil {
		slog.Warn("Drive search failed", "error", err)
		return []Result{}
	}
	var parsed driveSearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || !parsed.Success {
		return []Result{}
	}

	results := make([]Result, 0, len(parsed.Files))
	for _, file := range parsed.Files {
		results = append(results, Result{
			Title:  file.Name,
			URL:    file.URL,
			Source: SourceDrive,
		})
	}
	return results
}

// Figma has no practical search API for this use case, so the widget gets a
// deep-link into the Figma search UI instead.
func searchFigma(q string) []Result {
	return []Result{{
		Title:  fmt.Sprintf("Search %q in Figma", q),
		URL:    "https://www.figma.com",
		Source: SourceFigma,
	}}
}
