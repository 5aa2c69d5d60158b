// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package resources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AleutianAI/AleutianIntranet/services/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConfluenceServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		user, _, ok := r.BasicAuth()
		require.True(t, ok, "confluence search must be authenticated")
		assert.Equal(t, "bot@example.com", user)
		assert.Contains(t, r.URL.RawQuery, "cql=")
		w.Write([]byte(`{"results":[{"title":"Onboarding Guide","_links":{"webui":"/wiki/spaces/HR/pages/1"}}]}`))
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestSearch_Confluence(t *testing.T) {
	server, _ := newConfluenceServer(t)
	fed := NewFederation(ConfluenceConfig{
		BaseURL:  server.URL,
		Email:    "bot@example.com",
		APIToken: "token",
	}, nil)

	results, err := fed.Search(context.Background(), SourceConfluence, "onboarding")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Onboarding Guide", results[0].Title)
	assert.Equal(t, server.URL+"/wiki/spaces/HR/pages/1", results[0].URL)
	assert.Equal(t, SourceConfluence, results[0].Source)
}

func TestSearch_ConfluenceUnconfigured(t *testing.T) {
	fed := NewFederation(ConfluenceConfig{}, nil)

	results, err := fed.Search(context.Background(), SourceConfluence, "anything")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_ConfluenceFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)
	fed := NewFederation(ConfluenceConfig{
		BaseURL: server.URL, Email: "bot@example.com", APIToken: "token",
	}, nil)

	results, err := fed.Search(context.Background(), SourceConfluence, "anything")
	require.NoError(t, err, "a failing source degrades, it does not error")
	assert.Empty(t, results)
}

func TestSearch_Drive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "resources", r.URL.Query().Get("endpoint"))
		assert.Equal(t, "roadmap deck", r.URL.Query().Get("query"))
		w.Write([]byte(`{"success":true,"files":[{"name":"Roadmap Deck","url":"https://drive.example.com/d/1"}]}`))
	}))
	t.Cleanup(server.Close)
	drive, err := workspace.NewAppsScriptClient(server.URL)
	require.NoError(t, err)
	fed := NewFederation(ConfluenceConfig{}, drive)

	results, err := fed.Search(context.Background(), SourceDrive, "roadmap deck")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Roadmap Deck", results[0].Title)
	assert.Equal(t, SourceDrive, results[0].Source)
}

func TestSearch_Figma(t *testing.T) {
	fed := NewFederation(ConfluenceConfig{}, nil)

	results, err := fed.Search(context.Background(), SourceFigma, "login screen")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results[0].Title, "login screen")
	assert.Equal(t, SourceFigma, results[0].Source)
}

func TestSearch_All(t *testing.T) {
	confluenceServer, confluenceCalls := newConfluenceServer(t)
	driveServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"files":[{"name":"File","url":"u"}]}`))
	}))
	t.Cleanup(driveServer.Close)
	drive, err := workspace.NewAppsScriptClient(driveServer.URL)
	require.NoError(t, err)
	fed := NewFederation(ConfluenceConfig{
		BaseURL: confluenceServer.URL, Email: "bot@example.com", APIToken: "token",
	}, drive)

	results, err := fed.Search(context.Background(), SourceAll, "everything")
	require.NoError(t, err)
	assert.Equal(t, 1, *confluenceCalls)
	require.Len(t, results, 3)
	// Stable source order regardless of which fan-out finishes first.
	assert.Equal(t, SourceConfluence, results[0].Source)
	assert.Equal(t, SourceDrive, results[1].Source)
	assert.Equal(t, SourceFigma, results[2].Source)
}

func TestSearch_EmptyQuery(t *testing.T) {
	fed := NewFederation(ConfluenceConfig{}, nil)

	results, err := fed.Search(context.Background(), SourceAll, "   ")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_UnknownSource(t *testing.T) {
	fed := NewFederation(ConfluenceConfig{}, nil)

	_, err := fed.Search(context.Background(), "gopher", "q")
	assert.Error(t, err)
}

func TestSearch_StripsQuoteBreakout(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("cql")
		w.Write([]byte(`{"results":[]}`))
	}))
	t.Cleanup(server.Close)
	fed := NewFederation(ConfluenceConfig{
		BaseURL: server.URL, Email: "bot@example.com", APIToken: "token",
	}, nil)

	_, err := fed.Search(context.Background(), SourceConfluence, `x" OR type=page`)
	require.NoError(t, err)
	assert.NotContains(t, gotQuery, `x"`, "quotes must be stripped before CQL interpolation")
}
