package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deliverly/marketplace-api/internal/api/middleware"
	"github.com/deliverly/marketplace-api/internal/core/domain"
)

// currentPrincipal returns the principal published by the authentication
// middleware, failing fast with 401 when the request is anonymous. The
// authorization policy normally rejects such requests before a handler
// runs; this guard covers handlers invoked behind Public rules.
func currentPrincipal(c echo.Context) (*domain.Principal, error) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return p, nil
}
