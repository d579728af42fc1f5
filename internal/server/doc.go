// Package server wires the application's service graph together for the
// MCP server and the CLI commands.
//
// ServerContext owns the credential store, the per-provider mailbox
// adapters, the snooze state machine and the calendar pass-through. It
// hands out one cached connection per account; the connection is either
// token-backed or delegated to the live-application bridge, and callers
// cannot tell which.
//
// MetricsServer exposes Prometheus metrics on a dedicated port in serve
// mode, with optional liveness and readiness probes from HealthChecker.
package server
