// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"fmt"
	"os"

	"github.com/AleutianAI/AleutianIntranet/pkg/validation"
	"github.com/AleutianAI/AleutianIntranet/services/jira"
	"gopkg.in/yaml.v3"
)

// Board maps a friendly board name to its tracker id and kind. Scrum boards
// go through the active-sprint chain; kanban boards are read directly.
type Board struct {
	ID   int            `yaml:"id"`
	Kind jira.BoardKind `yaml:"kind"`
}

// BoardRegistry resolves the board names accepted by the sprint endpoint.
type BoardRegistry map[string]Board

// defaultBoards matches the dashboards the intranet shipped with.
var defaultBoards = BoardRegistry{
	"main":      {ID: 346, Kind: jira.BoardKindScrum},
	"marketing": {ID: 71, Kind: jira.BoardKindScrum},
	"abuse":     {ID: 77, Kind: jira.BoardKindKanban},
	"design":    {ID: 378, Kind: jira.BoardKindKanban},
	"teams":     {ID: 608, Kind: jira.BoardKindKanban},
}

// LoadBoards reads the registry from path, or returns the built-in defaults
// when path is empty. An unreadable or malformed file is an error; silently
// falling back would hide a deployment mistake.
func LoadBoards(path string) (BoardRegistry, error) {
	if path == "" {
		return defaultBoards, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read boards file: %w", err)
	}
	var registry BoardRegistry
	if err := yaml.Unmarshal(raw, &registry); err != nil {
		return nil, fmt.Errorf("parse boards file: %w", err)
	}
	for name, board := range registry {
		if board.ID <= 0 {
			return nil, fmt.Errorf("board %q has invalid id %d", name, board.ID)
		}
		if board.Kind == "" {
			board.Kind = jira.BoardKindScrum
			registry[name] = board
		}
	}
	return registry, nil
}

// Resolve maps a request parameter to a board: either a registered friendly
// name or a raw numeric board id (treated as a scrum board).
func (r BoardRegistry) Resolve(param string) (Board, bool) {
	if board, ok := r[param]; ok {
		return board, true
	}
	if id, err := validation.ValidateBoardID(param); err == nil {
		return Board{ID: id, Kind: jira.BoardKindScrum}, true
	}
	return Board{}, false
}
