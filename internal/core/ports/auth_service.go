package ports

import (
	"context"

	"github.com/deliverly/marketplace-api/internal/core/domain"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Roles    []domain.Role
}

// AuthResult is returned by login-shaped operations: a short-lived access
// token, a long-lived refresh token, and the account it belongs to.
type AuthResult struct {
	AccessToken  string       `json:"token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *domain.User `json:"user,omitempty"`
}

// AuthService implements registration and the token lifecycle.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// DriverLogin is Login restricted to accounts holding the DRIVER role.
	DriverLogin(ctx context.Context, email, password string) (*AuthResult, error)
	// Refresh exchanges a stored refresh token for a new access token. The
	// refresh token itself is kept until logout or expiry.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, userID int64) error
}

// RefreshTokenStore persists issued refresh tokens server-side so they can
// be revoked before their natural expiry.
type RefreshTokenStore interface {
	Save(ctx context.Context, token string, userID int64) error
	// UserID resolves a refresh token to the account it was issued for.
	// Unknown or expired tokens return domain.ErrInvalidToken.
	UserID(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, userID int64) error
}
