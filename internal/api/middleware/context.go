package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/deliverly/marketplace-api/internal/core/domain"
)

// principalKey is the echo context key under which the authenticated
// principal is published for the rest of the request.
const principalKey = "auth.principal"

// SetPrincipal publishes the principal into the request context. Called
// only by the authentication middleware.
func SetPrincipal(c echo.Context, p *domain.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the request's authenticated principal, or nil when
// the request is anonymous.
func PrincipalFrom(c echo.Context) *domain.Principal {
	p, _ := c.Get(principalKey).(*domain.Principal)
	return p
}
