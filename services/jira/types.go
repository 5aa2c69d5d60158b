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

// -----------------------------------------------------------------------------
// Upstream wire types
// -----------------------------------------------------------------------------

// RawIssue is the tracker's native issue representation, returned unmodified
// by the fetch client. Optional fields are pointers so that absent upstream
// data is distinguishable from empty strings.
type RawIssue struct {
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

// IssueFields mirrors the subset of Jira issue fields this service reads.
type IssueFields struct {
	Summary  string       `json:"summary"`
	Status   *IssueStatus `json:"status"`
	Assignee *IssueUser   `json:"assignee"`
	Updated  string       `json:"updated"`
	Parent   *IssueParent `json:"parent"`
}

// IssueStatus is the workflow state of an issue.
type IssueStatus struct {
	Name string `json:"name"`
}

// IssueUser identifies a Jira account by display name.
type IssueUser struct {
	DisplayName string `json:"displayName"`
}

// IssueParent links an issue to its parent Epic.
type IssueParent struct {
	Key string `json:"key"`
}

// Sprint is a board iteration as returned by the agile API.
type Sprint struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// searchRequest is the body of POST /rest/api/3/search/jql.
type searchRequest struct {
	JQL        string   `json:"jql"`
	Fields     []string `json:"fields,omitempty"`
	MaxResults int      `json:"maxResults"`
}

// searchResponse is the envelope of a JQL search result.
type searchResponse struct {
	Issues []RawIssue `json:"issues"`
}

// sprintListResponse is the envelope of the board sprint listing.
type sprintListResponse struct {
	Values []Sprint `json:"values"`
}

// -----------------------------------------------------------------------------
// Normalized types
// -----------------------------------------------------------------------------

// Issue is the stable internal shape served to callers. Missing upstream
// fields degrade to defaults during normalization; they never fail a batch.
type Issue struct {
	Key       string `json:"key"`
	Summary   string `json:"summary"`
	Status    string `json:"status"`
	Assignee  string `json:"assignee"`
	Updated   string `json:"updated,omitempty"`
	URL       string `json:"url"`
	ParentKey string `json:"parentKey,omitempty"`
}

// Child is the lightweight view of an epic's child used for rollups.
// Upstream does not enforce key uniqueness, so duplicates are kept as-is.
type Child struct {
	Key    string `json:"key"`
	Status string `json:"status"`
}

// Counts breaks an epic's children down by status category. Every child
// lands in exactly one bucket.
type Counts struct {
	Done       int `json:"done"`
	InProgress int `json:"inProgress"`
	Todo       int `json:"todo"`
	Total      int `json:"total"`
}

// Color is the traffic-light signal derived from an epic's counts.
type Color string

const (
	ColorNone   Color = "none"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
)

// Progress is the rollup completion metric for an epic.
//
// Percentage is round-half-up of 100*done/total, or 0 when total is 0.
// Color is green iff every child is done (and there is at least one),
// yellow iff anything is in progress short of that, none otherwise.
type Progress struct {
	Percentage int    `json:"percentage"`
	Color      Color  `json:"color"`
	Counts     Counts `json:"counts"`
}

// Epic is an Issue with its children and rollup progress attached. It only
// exists for the duration of one roadmap request.
type Epic struct {
	Issue
	Children []Child  `json:"children"`
	Progress Progress `json:"progress"`
}
