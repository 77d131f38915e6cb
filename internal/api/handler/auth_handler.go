package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deliverly/marketplace-api/internal/api/metrics"
	"github.com/deliverly/marketplace-api/internal/core/domain"
	"github.com/deliverly/marketplace-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password" validate:"required,min=8"`
	Phone    string   `json:"phone"`
	Roles    []string `json:"roles" validate:"dive,oneof=USER MERCHANT_ADMIN DRIVER"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Register creates a new account and returns a token pair.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  ports.AuthResult
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	roles := make([]domain.Role, 0, len(req.Roles))
	for _, name := range req.Roles {
		r, ok := domain.ParseRole(name)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
		}
		roles = append(roles, r)
	}

	result, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Roles:    roles,
	})
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("register", "denied").Inc()
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("register", "success").Inc()
	return c.JSON(http.StatusCreated, result)
}

// Login authenticates a user and returns a token pair.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.AuthResult
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	return h.login(c, "login", h.authService.Login)
}

// DriverLogin authenticates a driver account.
//
// @Summary      Driver login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  ports.AuthResult
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/driver-login [post]
func (h *AuthHandler) DriverLogin(c echo.Context) error {
	return h.login(c, "driver_login", h.authService.DriverLogin)
}

// Refresh exchanges a refresh token for a new access token.
//
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  ports.AuthResult
// @Failure      401   {object}  map[string]string
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("refresh", "denied").Inc()
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues("refresh", "success").Inc()
	return c.JSON(http.StatusOK, result)
}

// Logout revokes the caller's refresh token. Requires a valid access
// token: logout is the one auth endpoint the middleware does not skip.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      204  "refresh token revoked"
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	p, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.Request().Context(), p.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) login(c echo.Context, grant string, fn func(ctx context.Context, email, password string) (*ports.AuthResult, error)) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := fn(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(grant, "denied").Inc()
		return err
	}

	metrics.LoginAttemptsTotal.WithLabelValues(grant, "success").Inc()
	return c.JSON(http.StatusOK, result)
}
