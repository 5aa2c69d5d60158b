// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are
// interpolated into tracker query languages (JQL, CQL). Using these
// validators prevents query injection through request parameters.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// projectKeyPattern matches Jira project keys.
// Uppercase letters and digits, starting with a letter, max 10 characters.
var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}$`)

// issueKeyPattern matches issue keys of the form PROJECT-123.
var issueKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}-[0-9]{1,7}$`)

// ValidateProjectKey validates a Jira project key to prevent JQL injection.
//
// Valid keys:
//   - 1-10 characters
//   - Uppercase letters A-Z, digits 0-9
//   - Must start with a letter
//
// Returns an error if the key is invalid.
//
// Example:
//
//	if err := validation.ValidateProjectKey(project); err != nil {
//	    return nil, fmt.Errorf("invalid project: %w", err)
//	}
//	// Safe to interpolate into JQL
func ValidateProjectKey(key string) error {
	if key == "" {
		return fmt.Errorf("project key cannot be empty")
	}
	if !projectKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid project key format: %q (must be 1-10 uppercase alphanumeric chars starting with a letter)", key)
	}
	return nil
}

// ValidateIssueKey validates an issue key like "BZ-104".
func ValidateIssueKey(key string) error {
	if key == "" {
		return fmt.Errorf("issue key cannot be empty")
	}
	if !issueKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid issue key format: %q", key)
	}
	return nil
}

// ValidateBoardID parses and validates a numeric board identifier.
// Returns the parsed id, or an error for non-numeric or non-positive input.
func ValidateBoardID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid board id: %q", raw)
	}
	if id <= 0 {
		return 0, fmt.Errorf("board id must be positive: %d", id)
	}
	return id, nil
}

// SanitizeSearchTerm strips characters that would break out of a quoted
// CQL/JQL string literal. Use this when a free-text term must be embedded
// in a quoted query clause:
//
//	safe := validation.SanitizeSearchTerm(userQuery)
//	cql := fmt.Sprintf("text~%q", safe)
func SanitizeSearchTerm(term string) string {
	term = strings.ReplaceAll(term, `"`, "")
	term = strings.ReplaceAll(term, `\`, "")
	return strings.TrimSpace(term)
}
