// Package metrics defines and registers all custom Prometheus metrics for
// the marketplace API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package load;
// the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "marketplace"

// ── Authentication metrics ────────────────────────────────────────────────────

// LoginAttemptsTotal counts login-shaped operations.
// Labels:
//   - grant: "login", "driver_login", "register", or "refresh"
//   - outcome: "success" or "denied"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of credential grant attempts, by grant type and outcome.",
	},
	[]string{"grant", "outcome"},
)

// AuthnOutcomesTotal counts per-request authentication middleware outcomes.
// Label:
//   - outcome: "principal", "anonymous", "expired", "unknown_subject",
//     "inactive_user", or "invalid_token"
var AuthnOutcomesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authn_outcomes_total",
		Help:      "Total number of authentication middleware runs, by outcome.",
	},
	[]string{"outcome"},
)

// TokenVerifyDuration measures how long one credential verification takes,
// including the user lookup.
var TokenVerifyDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "token_verify_duration_seconds",
		Help:      "Duration of per-request credential verification.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Authorization metrics ─────────────────────────────────────────────────────

// AuthzDecisionsTotal counts policy engine decisions.
// Label:
//   - decision: "allow", "unauthenticated", or "forbidden"
var AuthzDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_decisions_total",
		Help:      "Total number of authorization decisions, by result.",
	},
	[]string{"decision"},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditEventsTotal counts security audit events by processing result.
// Label:
//   - result: "stored", "dropped" (queue full), or "error"
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of security audit events, by processing result.",
	},
	[]string{"result"},
)
