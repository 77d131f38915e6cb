package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deliverly/marketplace-api/internal/api/authz"
	"github.com/deliverly/marketplace-api/internal/api/metrics"
	"github.com/deliverly/marketplace-api/internal/core/ports"
)

// Authorize returns the middleware enforcing the route policy. It runs
// after Authenticate and is the only place a verification failure becomes
// visible to the caller: no principal maps to 401, an insufficient
// principal maps to 403. Denials of authenticated principals are recorded
// in the audit trail.
func Authorize(engine *authz.Engine, audit ports.AuditSink) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			p := PrincipalFrom(c)

			decision := engine.Decide(req.Context(), req.Method, req.URL.Path, p)
			metrics.AuthzDecisionsTotal.WithLabelValues(decision.String()).Inc()

			switch decision {
			case authz.Allow:
				return next(c)
			case authz.DenyUnauthenticated:
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			default:
				if audit != nil && p != nil {
					audit.Enqueue(ports.SecurityEvent{
						Subject:    p.Email,
						Action:     "authz",
						Outcome:    "forbidden",
						Method:     req.Method,
						Path:       req.URL.Path,
						OccurredAt: time.Now().UTC(),
					})
				}
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
		}
	}
}
