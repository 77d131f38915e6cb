package ports

import (
	"context"
	"time"
)

// SecurityEvent is one entry in the security audit trail: a login outcome
// or an authorization denial. Subject is the email the event concerns and
// is also the sharding key, so one subject's events stay ordered.
type SecurityEvent struct {
	Subject    string    `json:"subject"`
	Action     string    `json:"action"`  // e.g. "login", "refresh", "authz"
	Outcome    string    `json:"outcome"` // e.g. "success", "denied", "forbidden"
	Method     string    `json:"method,omitempty"`
	Path       string    `json:"path,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditService processes security events, typically by persisting them.
type AuditService interface {
	Process(ctx context.Context, event SecurityEvent) error
}

// AuditRepository persists security events.
type AuditRepository interface {
	Insert(ctx context.Context, event SecurityEvent) error
}

// AuditSink accepts events for asynchronous processing. Implementations
// must be safe for concurrent use and must never block request handling.
type AuditSink interface {
	Enqueue(event SecurityEvent)
}
