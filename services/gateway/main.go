// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/AleutianAI/AleutianIntranet/pkg/logging"
	"github.com/AleutianAI/AleutianIntranet/services/gateway/config"
	"github.com/AleutianAI/AleutianIntranet/services/gateway/handlers"
	"github.com/AleutianAI/AleutianIntranet/services/gateway/middleware"
	"github.com/AleutianAI/AleutianIntranet/services/gateway/observability"
	"github.com/AleutianAI/AleutianIntranet/services/gateway/routes"
	"github.com/AleutianAI/AleutianIntranet/services/jira"
	"github.com/AleutianAI/AleutianIntranet/services/resources"
	"github.com/AleutianAI/AleutianIntranet/services/workspace"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/credentials/insecure"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "aleutian-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("intranet-gateway")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		LogDir:  cfg.LogDir,
		Service: "intranet-gateway",
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	metrics := observability.InitMetrics()

	jiraClient, err := jira.NewClient(jira.ClientConfig{
		BaseURL:           cfg.JiraBaseURL,
		Email:             cfg.JiraEmail,
		APIToken:          cfg.JiraAPIToken,
		RequestsPerSecond: cfg.JiraRequestsPerSecond,
	})
	if err != nil {
		log.Fatalf("FATAL: Could not initialize the Jira client: %v", err)
	}
	jiraClient.RequestHook = func(op string, status int, elapsed time.Duration) {
		metrics.ObserveUpstream("jira", op, status, elapsed)
	}

	engine := jira.NewEngine(jiraClient)
	roadmaps := jira.NewRoadmapCache(engine, cfg.RoadmapCacheTTL)

	boards, err := config.LoadBoards(cfg.BoardsFile)
	if err != nil {
		log.Fatalf("FATAL: Could not load the board registry: %v", err)
	}

	// Optional Google-side backends. A nil client keeps its routes
	// registered; the handlers answer 503.
	var appsScript *workspace.AppsScriptClient
	if cfg.AppsScriptURL != "" {
		appsScript, err = workspace.NewAppsScriptClient(cfg.AppsScriptURL)
		if err != nil {
			log.Fatalf("FATAL: Invalid Apps Script configuration: %v", err)
		}
	} else {
		slog.Info("APPS_SCRIPT_URL not set. Google proxy and drive search disabled.")
	}

	var standup *workspace.ChatWebhook
	if cfg.ChatWebhookURL != "" {
		standup, err = workspace.NewChatWebhook(cfg.ChatWebhookURL)
		if err != nil {
			log.Fatalf("FATAL: Invalid Chat webhook configuration: %v", err)
		}
	} else {
		slog.Info("GOOGLE_CHAT_WEBHOOK_URL not set. Standup posting disabled.")
	}

	searcher := resources.NewFederation(resources.ConfluenceConfig{
		BaseURL:  cfg.JiraBaseURL,
		Email:    cfg.ConfluenceEmail,
		APIToken: cfg.ConfluenceAPIToken,
	}, appsScript)

	router := gin.Default()
	router.Use(otelgin.Middleware("intranet-gateway"))
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics(metrics))

	// A nil *ChatWebhook must reach the handler as a nil interface, not a
	// typed nil.
	var poster handlers.StandupPoster
	if standup != nil {
		poster = standup
	}

	routes.SetupRoutes(router, engine, roadmaps, boards, cfg.RoadmapProject,
		appsScript, poster, searcher)

	slog.Info("Starting the intranet gateway", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
