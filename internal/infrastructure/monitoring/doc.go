/*
Package monitoring provides Prometheus metrics for the portfolio backend.

# Overview

Collectors live on a private registry owned by Metrics. The server exposes
it at /metrics and the admin dashboard reads a summary Snapshot.

# Metrics

- HTTP requests by route template and status, latency, response size
- Terminal sessions connected and commands executed by name
- WebSocket messages by direction and type
- Contact submissions by outcome, notification emails by kind and outcome
- Requests rejected by the rate limiter, by rule

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	metrics.RecordContact("accepted")
*/
package monitoring
