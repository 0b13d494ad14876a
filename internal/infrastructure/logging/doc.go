// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for log shippers
//   - Development: colored console output
//
// Components take a *zap.Logger; the server builds one Logger from
// configuration and hands out named children:
//
//	logger := logging.NewOrNop(logging.Config{Level: "info"})
//	projects := logger.Component("projects")
//	projects.Info("seeded projects", zap.Int("count", n))
package logging
