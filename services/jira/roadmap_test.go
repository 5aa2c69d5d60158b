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
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource records every call so tests can assert on query counts and
// short-circuit behavior.
type fakeSource struct {
	searchJQLs    []string
	searchResults [][]RawIssue
	searchErrs    []error

	activeSprintCalls int
	sprint            Sprint
	sprintErr         error

	sprintIssueCalls int
	sprintIssues     []RawIssue

	boardIssueCalls int
	boardIssues     []RawIssue
}

func (f *fakeSource) Search(_ context.Context, jql string, _ []string, _ int) ([]RawIssue, error) {
	call := len(f.searchJQLs)
	f.searchJQLs = append(f.searchJQLs, jql)
	if call < len(f.searchErrs) && f.searchErrs[call] != nil {
		return nil, f.searchErrs[call]
	}
	if call < len(f.searchResults) {
		return f.searchResults[call], nil
	}
	return nil, nil
}

func (f *fakeSource) ActiveSprint(context.Context, int) (Sprint, error) {
	f.activeSprintCalls++
	if f.sprintErr != nil {
		return Sprint{}, f.sprintErr
	}
	return f.sprint, nil
}

func (f *fakeSource) SprintIssues(context.Context, int) ([]RawIssue, error) {
	f.sprintIssueCalls++
	return f.sprintIssues, nil
}

func (f *fakeSource) BoardIssues(context.Context, int) ([]RawIssue, error) {
	f.boardIssueCalls++
	return f.boardIssues, nil
}

func (f *fakeSource) BaseURL() string { return "https://tracker.example.com" }

func rawEpic(key string) RawIssue {
	return RawIssue{
		Key: key,
		Fields: IssueFields{
			Summary: "Epic " + key,
			Status:  &IssueStatus{Name: "In Progress"},
			Updated: "2026-08-01T10:00:00.000+0000",
		},
	}
}

func rawChild(key, parent, status string) RawIssue {
	return RawIssue{
		Key: key,
		Fields: IssueFields{
			Status: &IssueStatus{Name: status},
			Parent: &IssueParent{Key: parent},
		},
	}
}

func TestNormalizeIssue_Defaults(t *testing.T) {
	issue := NormalizeIssue(RawIssue{Key: "BZ-9"}, "https://tracker.example.com")

	assert.Equal(t, "BZ-9", issue.Key)
	assert.Equal(t, "", issue.Summary)
	assert.Equal(t, "", issue.Status)
	assert.Equal(t, "Unassigned", issue.Assignee)
	assert.Equal(t, "https://tracker.example.com/browse/BZ-9", issue.URL)
	assert.Empty(t, issue.ParentKey)
}

func TestNormalizeIssue_FullFields(t *testing.T) {
	raw := RawIssue{
		Key: "BZ-12",
		Fields: IssueFields{
			Summary:  "Ship the thing",
			Status:   &IssueStatus{Name: "In Review"},
			Assignee: &IssueUser{DisplayName: "Dana Cruz"},
			Updated:  "2026-08-20T09:30:00.000+0000",
			Parent:   &IssueParent{Key: "BZ-1"},
		},
	}
	issue := NormalizeIssue(raw, "https://tracker.example.com")

	assert.Equal(t, "Ship the thing", issue.Summary)
	assert.Equal(t, "In Review", issue.Status)
	assert.Equal(t, "Dana Cruz", issue.Assignee)
	assert.Equal(t, "2026-08-20T09:30:00.000+0000", issue.Updated)
	assert.Equal(t, "BZ-1", issue.ParentKey)
}

func TestBuildRoadmap_ExactlyTwoQueries(t *testing.T) {
	for _, n := range []int{1, 5, 50} {
		t.Run(fmt.Sprintf("epics_%d", n), func(t *testing.T) {
			epics := make([]RawIssue, 0, n)
			for i := 0; i < n; i++ {
				epics = append(epics, rawEpic(fmt.Sprintf("BZ-%d", i+1)))
			}
			source := &fakeSource{searchResults: [][]RawIssue{epics, nil}}
			engine := NewEngine(source)

			result, err := engine.BuildRoadmap(context.Background(), "BZ")
			require.NoError(t, err)
			assert.Len(t, result, n)
			assert.Len(t, source.searchJQLs, 2, "one epic query plus one batched children query")
			assert.Contains(t, source.searchJQLs[1], "parent IN (")
		})
	}
}

func TestBuildRoadmap_NoEpicsSkipsChildrenQuery(t *testing.T) {
	source := &fakeSource{searchResults: [][]RawIssue{{}}}
	engine := NewEngine(source)

	result, err := engine.BuildRoadmap(context.Background(), "BZ")
	require.NoError(t, err)
	assert.Equal(t, []Epic{}, result)
	assert.Len(t, source.searchJQLs, 1, "children query must not be issued")
}

func TestBuildRoadmap_BatchedChildrenJQL(t *testing.T) {
	source := &fakeSource{searchResults: [][]RawIssue{
		{rawEpic("BZ-1"), rawEpic("BZ-2"), rawEpic("BZ-3")},
		nil,
	}}
	engine := NewEngine(source)

	_, err := engine.BuildRoadmap(context.Background(), "BZ")
	require.NoError(t, err)
	require.Len(t, source.searchJQLs, 2)
	assert.Equal(t, "parent IN (BZ-1, BZ-2, BZ-3)", source.searchJQLs[1])
	assert.True(t, strings.Contains(source.searchJQLs[0], "ORDER BY updated DESC"))
}

func TestBuildRoadmap_ProgressScenarios(t *testing.T) {
	source := &fakeSource{searchResults: [][]RawIssue{
		{rawEpic("E-1"), rawEpic("E-2"), rawEpic("E-3")},
		{
			rawChild("E-10", "E-1", "Done"),
			rawChild("E-11", "E-1", "Done"),
			rawChild("E-12", "E-1", "In Progress"),
			rawChild("E-13", "E-1", "To Do"),
			rawChild("E-20", "E-2", "Done"),
			rawChild("E-21", "E-2", "Done"),
		},
	}}
	engine := NewEngine(source)

	result, err := engine.BuildRoadmap(context.Background(), "E")
	require.NoError(t, err)
	require.Len(t, result, 3)

	mixed := result[0]
	assert.Equal(t, Counts{Done: 2, InProgress: 1, Todo: 1, Total: 4}, mixed.Progress.Counts)
	assert.Equal(t, 50, mixed.Progress.Percentage)
	assert.Equal(t, ColorYellow, mixed.Progress.Color)

	complete := result[1]
	assert.Equal(t, 100, complete.Progress.Percentage)
	assert.Equal(t, ColorGreen, complete.Progress.Color)

	empty := result[2]
	assert.Equal(t, 0, empty.Progress.Percentage)
	assert.Equal(t, ColorNone, empty.Progress.Color)
	assert.Equal(t, []Child{}, empty.Children)
}

func TestBuildRoadmap_OrphanChildrenDiscarded(t *testing.T) {
	source := &fakeSource{searchResults: [][]RawIssue{
		{rawEpic("BZ-1")},
		{
			rawChild("BZ-10", "BZ-1", "Done"),
			rawChild("BZ-99", "BZ-404", "Done"), // parent never fetched
			{Key: "BZ-98", Fields: IssueFields{Status: &IssueStatus{Name: "Done"}}}, // no parent at all
		},
	}}
	engine := NewEngine(source)

	result, err := engine.BuildRoadmap(context.Background(), "BZ")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, []Child{{Key: "BZ-10", Status: "Done"}}, result[0].Children)
	assert.Equal(t, Counts{Done: 1, Total: 1}, result[0].Progress.Counts)
}

func TestBuildRoadmap_EpicSearchFailure(t *testing.T) {
	source := &fakeSource{searchErrs: []error{&UpstreamError{StatusCode: 502, Body: "bad gateway"}}}
	engine := NewEngine(source)

	_, err := engine.BuildRoadmap(context.Background(), "BZ")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRoadmapFetch)
	var upstream *UpstreamError
	assert.ErrorAs(t, err, &upstream)
}

func TestBuildRoadmap_ChildrenSearchFailure(t *testing.T) {
	source := &fakeSource{
		searchResults: [][]RawIssue{{rawEpic("BZ-1")}},
		searchErrs:    []error{nil, errors.New("boom")},
	}
	engine := NewEngine(source)

	_, err := engine.BuildRoadmap(context.Background(), "BZ")
	assert.ErrorIs(t, err, ErrRoadmapFetch)
}

func TestBuildRoadmap_RejectsInvalidProjectKey(t *testing.T) {
	source := &fakeSource{}
	engine := NewEngine(source)

	_, err := engine.BuildRoadmap(context.Background(), `BZ" OR 1=1`)
	require.Error(t, err)
	assert.Empty(t, source.searchJQLs, "no query may reach the tracker")
}

func TestBuildSprintView_ScrumChain(t *testing.T) {
	source := &fakeSource{
		sprint: Sprint{ID: 77, Name: "Sprint 12", State: "active"},
		sprintIssues: []RawIssue{
			{Key: "BZ-5", Fields: IssueFields{Summary: "Fix login"}},
		},
	}
	engine := NewEngine(source)

	issues, err := engine.BuildSprintView(context.Background(), 346, BoardKindScrum)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, 1, source.activeSprintCalls)
	assert.Equal(t, 1, source.sprintIssueCalls)
	assert.Equal(t, 0, source.boardIssueCalls)
	assert.Equal(t, "Unassigned", issues[0].Assignee)
}

func TestBuildSprintView_NoActiveSprintShortCircuits(t *testing.T) {
	source := &fakeSource{sprintErr: ErrNoActiveSprint}
	engine := NewEngine(source)

	_, err := engine.BuildSprintView(context.Background(), 346, BoardKindScrum)
	assert.ErrorIs(t, err, ErrNoActiveSprint)
	assert.Equal(t, 0, source.sprintIssueCalls, "issue fetch must be skipped")
}

func TestBuildSprintView_Kanban(t *testing.T) {
	source := &fakeSource{boardIssues: []RawIssue{{Key: "AB-1"}, {Key: "AB-2"}}}
	engine := NewEngine(source)

	issues, err := engine.BuildSprintView(context.Background(), 77, BoardKindKanban)
	require.NoError(t, err)
	assert.Len(t, issues, 2)
	assert.Equal(t, 0, source.activeSprintCalls)
	assert.Equal(t, 1, source.boardIssueCalls)
}

func TestComputeProgress_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		statuses []string
		wantPct  int
		wantCol  Color
	}{
		{"empty", nil, 0, ColorNone},
		{"all done", []string{"Done", "Closed", "Resolved"}, 100, ColorGreen},
		{"none done no progress", []string{"To Do", "Backlog"}, 0, ColorNone},
		{"third done", []string{"Done", "To Do", "To Do"}, 33, ColorNone},
		{"two thirds done", []string{"Done", "Done", "To Do"}, 67, ColorNone},
		{"half up rounding", []string{"Done", "To Do", "To Do", "To Do", "To Do", "To Do", "To Do", "To Do"}, 13, ColorNone},
		{"in progress yellow", []string{"Done", "Blocked"}, 50, ColorYellow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			children := make([]Child, 0, len(tt.statuses))
			for i, s := range tt.statuses {
				children = append(children, Child{Key: fmt.Sprintf("X-%d", i), Status: s})
			}
			got := computeProgress(children)
			assert.GreaterOrEqual(t, got.Percentage, 0)
			assert.LessOrEqual(t, got.Percentage, 100)
			assert.Equal(t, tt.wantPct, got.Percentage)
			assert.Equal(t, tt.wantCol, got.Color)
			assert.Equal(t, len(tt.statuses), got.Counts.Total)
		})
	}
}
