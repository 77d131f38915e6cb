package ports

import (
	"context"

	"github.com/deliverly/marketplace-api/internal/core/domain"
)

// PermissionChecker evaluates ownership predicates between an authenticated
// principal and a resource identifier taken from the request path. The
// checker owns no ownership data itself; it consults the domain layer.
type PermissionChecker interface {
	// IsSelf reports whether the principal is the user identified by userID.
	IsSelf(ctx context.Context, p *domain.Principal, userID int64) bool
	// OwnsMerchant reports whether the principal administers the merchant
	// identified by merchantID.
	OwnsMerchant(ctx context.Context, p *domain.Principal, merchantID int64) bool
}
