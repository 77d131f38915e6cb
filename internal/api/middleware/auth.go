package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deliverly/marketplace-api/internal/api/metrics"
	"github.com/deliverly/marketplace-api/internal/core/domain"
	"github.com/deliverly/marketplace-api/internal/core/ports"
)

// defaultSkipPrefixes lists path prefixes the authentication middleware
// bypasses entirely: the auth endpoints check credentials themselves and
// probes/docs need none.
var defaultSkipPrefixes = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/driver-login",
	"/api/auth/refresh",
	"/health",
	"/metrics",
	"/swagger",
}

// AuthConfig carries the authentication middleware's dependencies.
type AuthConfig struct {
	Codec ports.TokenCodec
	Users ports.UserRepository
	// SkipPrefixes overrides the default bypass list when non-nil.
	SkipPrefixes []string
	Logger       zerolog.Logger
}

// Authenticate returns the per-request authentication middleware. It
// extracts a Bearer credential, verifies it, cross-checks the live user
// record, and publishes a Principal into the request context. Every
// verification failure is absorbed: the request continues anonymous and
// the authorization policy decides whether that is acceptable. This
// middleware never writes a response and never mutates persisted state.
func Authenticate(cfg AuthConfig) echo.MiddlewareFunc {
	skip := cfg.SkipPrefixes
	if skip == nil {
		skip = defaultSkipPrefixes
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range skip {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			token := bearerToken(c)
			if token == "" || PrincipalFrom(c) != nil {
				metrics.AuthnOutcomesTotal.WithLabelValues("anonymous").Inc()
				return next(c)
			}

			start := time.Now()
			p, outcome := verify(c, cfg, token)
			metrics.TokenVerifyDuration.Observe(time.Since(start).Seconds())
			metrics.AuthnOutcomesTotal.WithLabelValues(outcome).Inc()

			if p != nil {
				SetPrincipal(c, p)
			}
			return next(c)
		}
	}
}

// verify runs the credential checks in order and returns the principal
// plus a coarse outcome label. Claim contents are never logged.
func verify(c echo.Context, cfg AuthConfig, token string) (*domain.Principal, string) {
	subject := cfg.Codec.ExtractSubject(token)
	if subject == "" {
		cfg.Logger.Debug().Msg("credential rejected: no recoverable subject")
		return nil, "invalid_token"
	}

	tokenRoles := cfg.Codec.ExtractRoles(token)

	user, err := cfg.Users.FindByEmail(c.Request().Context(), subject)
	if err != nil {
		cfg.Logger.Debug().Msg("credential rejected: subject unknown")
		return nil, "unknown_subject"
	}
	if !user.Active {
		cfg.Logger.Debug().Msg("credential rejected: account deactivated")
		return nil, "inactive_user"
	}

	if !cfg.Codec.ValidateFor(token, user) {
		if cfg.Codec.IsExpired(token) {
			cfg.Logger.Debug().Msg("credential rejected: expired")
			return nil, "expired"
		}
		cfg.Logger.Debug().Msg("credential rejected: validation failed")
		return nil, "invalid_token"
	}

	// Token roles win when present; an empty claim falls back to the live
	// record. A role change therefore takes effect on the next issued
	// token, not retroactively - the stateless trade-off.
	roles := resolveRoles(tokenRoles, user)

	return &domain.Principal{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  roles,
	}, "principal"
}

// bearerToken pulls the credential out of the Authorization header. A
// missing header or any scheme other than Bearer yields "" - that is an
// anonymous request, not an error.
func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func resolveRoles(tokenRoles map[string]struct{}, user *domain.User) []domain.Role {
	roles := make([]domain.Role, 0, len(tokenRoles))
	for name := range tokenRoles {
		if r, ok := domain.ParseRole(name); ok {
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		roles = append(roles, user.Roles...)
	}
	return roles
}
