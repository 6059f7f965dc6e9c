// Package app wires the application together: logger construction,
// workflow loading and validation, matrix expansion, scheduling, and the
// final report. It owns process-level side concerns like the auxiliary
// HTTP server for health checks and metrics.
package app
