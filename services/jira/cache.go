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
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RoadmapCache memoizes BuildRoadmap results per project for a fixed TTL.
// Concurrent requests for the same project while no fresh entry exists are
// collapsed into a single upstream fetch; the tracker never sees more than
// one in-flight roadmap pass per key.
//
// A zero TTL disables caching entirely and every call goes to the engine
// (singleflight still dedupes simultaneous callers).
type RoadmapCache struct {
	engine *Engine
	ttl    time.Duration
	group  singleflight.Group

	mu      sync.Mutex
	entries map[string]roadmapEntry
}

type roadmapEntry struct {
	epics   []Epic
	fetched time.Time
}

// NewRoadmapCache wraps engine with a TTL cache.
func NewRoadmapCache(engine *Engine, ttl time.Duration) *RoadmapCache {
	return &RoadmapCache{
		engine:  engine,
		ttl:     ttl,
		entries: make(map[string]roadmapEntry),
	}
}

// Roadmap returns the cached roadmap for projectKey, fetching through the
// engine when the entry is missing or stale. Errors are not cached.
func (c *RoadmapCache) Roadmap(ctx context.Context, projectKey string) ([]Epic, error) {
	if c.ttl > 0 {
		c.mu.Lock()
		entry, ok := c.entries[projectKey]
		c.mu.Unlock()
		if ok && time.Since(entry.fetched) < c.ttl {
			return entry.epics, nil
		}
	}

	result, err, _ := c.group.Do(projectKey, func() (any, error) {
		epics, err := c.engine.BuildRoadmap(ctx, projectKey)
		if err != nil {
			return nil, err
		}
		if c.ttl > 0 {
			c.mu.Lock()
			c.entries[projectKey] = roadmapEntry{epics: epics, fetched: time.Now()}
			c.mu.Unlock()
		}
		return epics, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Epic), nil
}
