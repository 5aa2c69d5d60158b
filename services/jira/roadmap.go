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
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/AleutianAI/AleutianIntranet/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// IssueSource is the upstream capability the engine consumes. *Client
// implements it; tests substitute counting fakes.
type IssueSource interface {
	Search(ctx context.Context, jql string, fields []string, maxResults int) ([]RawIssue, error)
	ActiveSprint(ctx context.Context, boardID int) (Sprint, error)
	SprintIssues(ctx context.Context, sprintID int) ([]RawIssue, error)
	BoardIssues(ctx context.Context, boardID int) ([]RawIssue, error)
	BaseURL() string
}

// Engine transforms raw tracker payloads into the stable Issue/Epic shape
// and computes rollups. It holds no per-request state; every call is an
// independent request/response cycle.
type Engine struct {
	source IssueSource
}

// NewEngine returns an Engine reading from source.
func NewEngine(source IssueSource) *Engine {
	return &Engine{source: source}
}

// NormalizeIssue maps one raw issue into the internal shape. It is pure and
// never fails: a missing summary or status degrades to the empty string, a
// missing assignee to "Unassigned". The URL is derived from baseURL.
func NormalizeIssue(raw RawIssue, baseURL string) Issue {
	issue := Issue{
		Key:      raw.Key,
		Summary:  raw.Fields.Summary,
		Assignee: "Unassigned",
		Updated:  raw.Fields.Updated,
		URL:      baseURL + "/browse/" + raw.Key,
	}
	if raw.Fields.Status != nil {
		issue.Status = raw.Fields.Status.Name
	}
	if raw.Fields.Assignee != nil && raw.Fields.Assignee.DisplayName != "" {
		issue.Assignee = raw.Fields.Assignee.DisplayName
	}
	if raw.Fields.Parent != nil {
		issue.ParentKey = raw.Fields.Parent.Key
	}
	return issue
}

// BuildRoadmap fetches a project's epics and computes per-epic rollup
// progress in exactly two upstream searches regardless of epic count:
// one for the epics, one batched "parent IN (...)" query for every child.
// Epics are ordered by most recently updated; zero epics is an empty result,
// not an error. Any upstream failure wraps ErrRoadmapFetch.
func (e *Engine) BuildRoadmap(ctx context.Context, projectKey string) ([]Epic, error) {
	ctx, span := tracer.Start(ctx, "Engine.BuildRoadmap")
	defer span.End()
	span.SetAttributes(attribute.String("jira.project", projectKey))

	if err := validation.ValidateProjectKey(projectKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRoadmapFetch, err)
	}

	epicJQL := fmt.Sprintf(
		"project = %s AND issuetype IN (Epic, Initiative) ORDER BY updated DESC",
		projectKey)
	rawEpics, err := e.source.Search(ctx, epicJQL,
		[]string{"summary", "status", "assignee", "updated"}, 50)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: epic search: %w", ErrRoadmapFetch, err)
	}
	if len(rawEpics) == 0 {
		return []Epic{}, nil
	}

	keys := make([]string, 0, len(rawEpics))
	known := make(map[string]bool, len(rawEpics))
	for _, raw := range rawEpics {
		keys = append(keys, raw.Key)
		known[raw.Key] = true
	}

	childJQL := fmt.Sprintf("parent IN (%s)", strings.Join(keys, ", "))
	rawChildren, err := e.source.Search(ctx, childJQL,
		[]string{"status", "parent"}, maxResultsCeiling)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%w: children search: %w", ErrRoadmapFetch, err)
	}

	// Children whose parent is not among the fetched epics are upstream
	// inconsistencies; drop them rather than invent an epic for them.
	byParent := make(map[string][]Child)
	for _, raw := range rawChildren {
		if raw.Fields.Parent == nil || !known[raw.Fields.Parent.Key] {
			continue
		}
		status := ""
		if raw.Fields.Status != nil {
			status = raw.Fields.Status.Name
		}
		byParent[raw.Fields.Parent.Key] = append(byParent[raw.Fields.Parent.Key],
			Child{Key: raw.Key, Status: status})
	}

	epics := make([]Epic, 0, len(rawEpics))
	for _, raw := range rawEpics {
		children := byParent[raw.Key]
		if children == nil {
			children = []Child{}
		}
		epics = append(epics, Epic{
			Issue:    NormalizeIssue(raw, e.source.BaseURL()),
			Children: children,
			Progress: computeProgress(children),
		})
	}
	slog.Info("Built roadmap", "project", projectKey,
		"epics", len(epics), "children", len(rawChildren))
	return epics, nil
}

// BoardKind distinguishes boards that run sprints from kanban boards whose
// issues are fetched directly.
type BoardKind string

const (
	BoardKindScrum  BoardKind = "scrum"
	BoardKindKanban BoardKind = "kanban"
)

// BuildSprintView fetches a board's current issues and normalizes each one.
// Scrum boards go through the two-step sprint chain: the active sprint is
// resolved first and ErrNoActiveSprint short-circuits before any issue
// fetch. Kanban boards read their issues in a single call. No aggregation
// happens here.
func (e *Engine) BuildSprintView(ctx context.Context, boardID int, kind BoardKind) ([]Issue, error) {
	ctx, span := tracer.Start(ctx, "Engine.BuildSprintView")
	defer span.End()
	span.SetAttributes(
		attribute.Int("jira.board_id", boardID),
		attribute.String("jira.board_kind", string(kind)),
	)

	var raw []RawIssue
	var err error
	if kind == BoardKindKanban {
		raw, err = e.source.BoardIssues(ctx, boardID)
	} else {
		var sprint Sprint
		sprint, err = e.source.ActiveSprint(ctx, boardID)
		if err == nil {
			raw, err = e.source.SprintIssues(ctx, sprint.ID)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	issues := make([]Issue, 0, len(raw))
	for _, r := range raw {
		issues = append(issues, NormalizeIssue(r, e.source.BaseURL()))
	}
	return issues, nil
}

// computeProgress classifies each child and derives the rollup. Percentage
// is round-half-up of 100*done/total; an epic with no children is 0% and
// colorless rather than a division error.
func computeProgress(children []Child) Progress {
	var counts Counts
	for _, child := range children {
		switch Classify(child.Status) {
		case CategoryDone:
			counts.Done++
		case CategoryInProgress:
			counts.InProgress++
		default:
			counts.Todo++
		}
	}
	counts.Total = len(children)

	progress := Progress{Color: ColorNone, Counts: counts}
	if counts.Total == 0 {
		return progress
	}
	progress.Percentage = int(math.Round(100 * float64(counts.Done) / float64(counts.Total)))
	switch {
	case counts.Done == counts.Total:
		progress.Color = ColorGreen
	case counts.InProgress > 0:
		progress.Color = ColorYellow
	}
	return progress
}
