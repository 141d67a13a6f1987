// Package audit defines the append-only event recorder the engine notifies
// after significant operations. Sinks are fire-and-forget: they must never
// block or fail the core operation, so every implementation swallows its own
// errors (logging them at most).
package audit

import "context"

// Severity of an audit event.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Sink receives audit events from the engine. Retention and storage policy
// belong to the sink, not to the caller.
type Sink interface {
	Log(ctx context.Context, action, details string, severity Severity)
}

// Nop discards every event. Used in tests that do not assert on auditing.
type Nop struct{}

func (Nop) Log(context.Context, string, string, Severity) {}
