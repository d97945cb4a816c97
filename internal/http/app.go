// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"spartan_estimator/platform/config"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/metrics"
)

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration.
	Config config.HTTPConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Metrics backs the /metrics endpoint and request histograms. Optional.
	Metrics *metrics.Metrics
	// Health is used for readiness checks. Nil when no database is configured.
	Health HealthChecker
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
