// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/AleutianAI/AleutianIntranet/services/gateway/config"
	"github.com/AleutianAI/AleutianIntranet/services/gateway/handlers"
	"github.com/AleutianAI/AleutianIntranet/services/workspace"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(router *gin.Engine, viewer handlers.SprintViewer,
	roadmaps handlers.RoadmapProvider, boards config.BoardRegistry,
	defaultProject string, appsScript *workspace.AppsScriptClient,
	standup handlers.StandupPoster, searcher handlers.ResourceSearcher) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API group, mounted where the old Express proxies lived so the
	// frontend needs no path changes.
	api := router.Group("/api")
	{
		jiraGroup := api.Group("/jira")
		{
			jiraGroup.GET("/sprint", handlers.HandleSprint(viewer, boards))
			jiraGroup.GET("/roadmap", handlers.HandleRoadmap(roadmaps, defaultProject))
		}
		api.GET("/google", handlers.HandleAppsScriptProxy(appsScript))
		api.POST("/chat/standup", handlers.HandleStandup(standup))
		api.GET("/resources/search", handlers.HandleResourceSearch(searcher))
	}
}
