// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the gateway configuration once at process start.
// Nothing else in the service reads the environment; handlers and clients
// receive this struct (or slices of it) by reference.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrConfigurationMissing marks a startup-time configuration failure.
// Detected eagerly in main, reported once, never per-request.
var ErrConfigurationMissing = errors.New("required configuration missing")

// Config is the process-wide configuration. Jira credentials are mandatory;
// the Google-side and Confluence upstreams are optional and their handlers
// answer 503 when unconfigured.
type Config struct {
	// Port the gateway listens on.
	Port string

	// Jira upstream. All three are required at startup.
	JiraBaseURL  string `validate:"required,url"`
	JiraEmail    string `validate:"required,email"`
	JiraAPIToken string `validate:"required"`

	// JiraRequestsPerSecond throttles calls to the shared tenant.
	// Zero disables throttling.
	JiraRequestsPerSecond float64

	// RoadmapProject is the project whose epics feed the roadmap widget.
	RoadmapProject string `validate:"required"`

	// RoadmapCacheTTL enables the roadmap cache when positive. Zero keeps
	// the reference behavior of fetching on every request.
	RoadmapCacheTTL time.Duration

	// Optional upstreams.
	AppsScriptURL      string `validate:"omitempty,url"`
	ChatWebhookURL     string `validate:"omitempty,url"`
	ConfluenceEmail    string `validate:"omitempty,email"`
	ConfluenceAPIToken string

	// BoardsFile points at the YAML board registry; empty uses the
	// built-in defaults.
	BoardsFile string

	// LogDir enables file logging when set.
	LogDir string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load reads .env (when present) and the environment, then validates the
// result. Missing required values are reported together, wrapped in
// ErrConfigurationMissing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnvWithDefault("INTRANET_PORT", "12310"),
		JiraBaseURL:           os.Getenv("JIRA_BASE_URL"),
		JiraEmail:             os.Getenv("JIRA_EMAIL"),
		JiraAPIToken:          os.Getenv("JIRA_API_TOKEN"),
		JiraRequestsPerSecond: getEnvAsFloatWithDefault("JIRA_REQUESTS_PER_SECOND", 0),
		RoadmapProject:        getEnvWithDefault("ROADMAP_PROJECT", "BZ"),
		RoadmapCacheTTL:       getEnvAsDurationWithDefault("ROADMAP_CACHE_TTL", 0),
		AppsScriptURL:         os.Getenv("APPS_SCRIPT_URL"),
		ChatWebhookURL:        os.Getenv("GOOGLE_CHAT_WEBHOOK_URL"),
		ConfluenceEmail:       os.Getenv("CONFLUENCE_EMAIL"),
		ConfluenceAPIToken:    os.Getenv("CONFLUENCE_API_TOKEN"),
		BoardsFile:            os.Getenv("INTRANET_BOARDS_FILE"),
		LogDir:                os.Getenv("INTRANET_LOG_DIR"),
		LogLevel:              getEnvWithDefault("INTRANET_LOG_LEVEL", "info"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		var invalid validator.ValidationErrors
		if errors.As(err, &invalid) {
			fields := make([]string, 0, len(invalid))
			for _, f := range invalid {
				fields = append(fields, f.Field())
			}
			return nil, fmt.Errorf("%w: %v", ErrConfigurationMissing, fields)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigurationMissing, err)
	}
	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsFloatWithDefault(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
