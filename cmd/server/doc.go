// Package main is the entry point for the portfolio backend.
//
// The server exposes the public project API, the contact form, the admin
// API and the WebSocket terminal:
//
//	Browser → /api/*           REST (projects, contact, admin)
//	        → /api/terminal    WebSocket terminal sessions
//	        → /uploads/*       uploaded images
//	        → /metrics         Prometheus exposition
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	ENVIRONMENT=production JWT_SECRET=... ./server -port 8000 -db /data/portfolio.db
//
//	# Development mode (colored logs, debug level)
//	./server -dev -log-level debug
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
