// Package ui provides helpers for formatting human-readable console output.
//
// The helpers translate pipeline events into concise messages so that run
// feedback remains actionable for CLI users while detailed telemetry
// continues to flow through structured loggers.
package ui
