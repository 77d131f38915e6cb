package ports

import (
	"context"

	"github.com/deliverly/marketplace-api/internal/core/domain"
)

// UserRepository defines the persistence interface for platform accounts.
// Email lookups are case-insensitive: implementations must treat
// "A@x.com" and "a@x.com" as the same account.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	UpdateLastLogin(ctx context.Context, id int64) error
}
