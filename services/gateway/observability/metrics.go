// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the gateway.
//
// Two families are tracked: what the frontend asks of the gateway (route
// counters and latency) and what the gateway asks of its upstreams (per-
// operation counters and latency). Metrics are exposed via /metrics; all
// operations are thread-safe through Prometheus's internal locking.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "aleutian"

const gatewaySubsystem = "intranet_gateway"

// GatewayMetrics holds all Prometheus metrics for the proxy. Initialize once
// at startup via InitMetrics().
type GatewayMetrics struct {
	// RequestsTotal counts frontend requests by route and status class.
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures handler latency by route.
	RequestDurationSeconds *prometheus.HistogramVec

	// UpstreamRequestsTotal counts calls to external systems.
	// Labels: upstream (jira, apps_script, chat, confluence), op, status.
	UpstreamRequestsTotal *prometheus.CounterVec

	// UpstreamDurationSeconds measures upstream call latency.
	UpstreamDurationSeconds *prometheus.HistogramVec

	// ActiveRequests tracks requests currently being served.
	ActiveRequests prometheus.Gauge
}

// DefaultMetrics is the singleton instance, set by InitMetrics().
var DefaultMetrics *GatewayMetrics

// InitMetrics creates and registers all gateway metrics. Call once at
// application startup.
func InitMetrics() *GatewayMetrics {
	m := &GatewayMetrics{
		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "requests_total",
			Help:      "Frontend requests by route and status class.",
		}, []string{"route", "status"}),
		RequestDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "request_duration_seconds",
			Help:      "Handler latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		UpstreamRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "upstream_requests_total",
			Help:      "Upstream calls by system, operation and status.",
		}, []string{"upstream", "op", "status"}),
		UpstreamDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "upstream_duration_seconds",
			Help:      "Upstream call latency by system and operation.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"upstream", "op"}),
		ActiveRequests: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: gatewaySubsystem,
			Name:      "active_requests",
			Help:      "Requests currently in flight.",
		}),
	}
	DefaultMetrics = m
	return m
}

// ObserveUpstream records one upstream call. statusClass collapses the code
// into its class ("2xx" through "5xx", or "error" for transport failures)
// to keep cardinality flat. Safe to call with a nil receiver so library
// hooks can stay unconditional.
func (m *GatewayMetrics) ObserveUpstream(upstream, op string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(upstream, op, statusClass(status)).Inc()
	m.UpstreamDurationSeconds.WithLabelValues(upstream, op).Observe(elapsed.Seconds())
}

// ObserveRequest records one served frontend request.
func (m *GatewayMetrics) ObserveRequest(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, statusClass(status)).Inc()
	m.RequestDurationSeconds.WithLabelValues(route).Observe(elapsed.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "error"
	}
}
