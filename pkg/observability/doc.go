// Package observability provides structured logging, Prometheus metrics,
// health checks, OpenTelemetry wiring and graceful shutdown for the
// vizboard backend.
//
// The Logger is a thin wrapper over stdlib slog that emits JSON and keeps
// the level configurable from the environment. Metrics cover the HTTP
// surface, the database pool and the billing-facing business events (plan
// resolutions, seat adjustments, gateway calls, seat drift).
package observability
