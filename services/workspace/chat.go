// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// ChatWebhook posts messages to a Google Chat space through an incoming
// webhook. Delivery is a single attempt: the webhook either accepts the
// message or the caller hears about the failure.
type ChatWebhook struct {
	httpClient HTTPDoer
	url        string
}

// chatMessage is the webhook payload; Chat only needs a text field.
type chatMessage struct {
	Text string `json:"text"`
}

// NewChatWebhook builds a webhook poster for the given URL.
func NewChatWebhook(webhookURL string) (*ChatWebhook, error) {
	if webhookURL == "" {
		return nil, ErrNotConfigured
	}
	return &ChatWebhook{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		url:        webhookURL,
	}, nil
}

// Post sends one text message to the space. The webhook URL carries its own
// key, so it is never logged.
func (w *ChatWebhook) Post(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "ChatWebhook.Post")
	defer span.End()

	body, err := json.Marshal(chatMessage{Text: text})
	if err != nil {
		return fmt.Errorf("encode chat message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url,
		bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("chat webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("Chat webhook rejected message", "status", resp.StatusCode)
		return fmt.Errorf("chat webhook status %d", resp.StatusCode)
	}
	return nil
}
