// Package config provides centralized timeout constants for the application.
//
// These values are tuned for:
//   - LLM provider latency (long completions of up to 1500 tokens)
//   - Browser clients waiting on a single JSON response
//   - SQLite performance characteristics (WAL mode, busy timeout)
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead is the HTTP server read timeout. Profile and chat payloads are small.
	HTTPRead = 10 * time.Second

	// HTTPWrite is the HTTP server write timeout.
	// A blended recommendation makes two sequential LLM calls, so this must
	// exceed 2x LLMRequest plus serialization.
	HTTPWrite = 100 * time.Second

	// HTTPIdle is the HTTP server idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second

	// ReadinessCheck bounds the database ping behind /readyz.
	ReadinessCheck = 3 * time.Second
)

// LLM timeouts
const (
	// LLMRequest is the default deadline for a single completion call.
	// Expiry surfaces as a timeout-kind LLM error; the call is never retried.
	LLMRequest = 45 * time.Second
)

// Dataset timeouts
const (
	// DatasetDownload bounds fetching the dataset object from R2.
	DatasetDownload = 2 * time.Minute

	// DatasetReload bounds a full reload triggered through the admin endpoint.
	DatasetReload = 3 * time.Minute
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Covers the importer writing while the server reads.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// MetricsUpdateInterval is how often gauge metrics (profiles, dataset rows) are refreshed.
	MetricsUpdateInterval = time.Minute

	// RateLimiterCleanupInterval is how often inactive per-user limiters are dropped.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
