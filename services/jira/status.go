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

// Category is the three-way classification of a workflow status name.
type Category int

const (
	CategoryTodo Category = iota
	CategoryInProgress
	CategoryDone
)

// String returns the string representation of a Category.
func (c Category) String() string {
	switch c {
	case CategoryTodo:
		return "todo"
	case CategoryInProgress:
		return "in_progress"
	case CategoryDone:
		return "done"
	default:
		return "unknown"
	}
}

// Classification is by membership in fixed name lists rather than by the
// tracker's own statusCategory field, so that custom workflow names on
// cloned boards still classify sensibly. Matching is exact (the lists carry
// both "In progress" and "In Progress" for that reason).
var doneStatuses = map[string]struct{}{
	"Done":     {},
	"Closed":   {},
	"Resolved": {},
}

var inProgressStatuses = map[string]struct{}{
	"In progress":              {},
	"In Progress":              {},
	"In Review":                {},
	"Reopened":                 {},
	"QA":                       {},
	"Code Review":              {},
	"Ready for QA":             {},
	"Staging":                  {},
	"Dev":                      {},
	"Development":              {},
	"Ready to Release to Live": {},
	"On Review":                {},
	"Blocked":                  {},
}

// Classify maps a workflow status name to its category. The function is
// total: any name outside the done and in-progress lists is Todo, which
// covers the usual backlog names ("To Do", "Backlog", "Selected for
// Development") as well as anything a team invents later.
func Classify(status string) Category {
	if _, ok := doneStatuses[status]; ok {
		return CategoryDone
	}
	if _, ok := inProgressStatuses[status]; ok {
		return CategoryInProgress
	}
	return CategoryTodo
}
