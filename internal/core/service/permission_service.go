package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/deliverly/marketplace-api/internal/core/domain"
	"github.com/deliverly/marketplace-api/internal/core/ports"
)

// PermissionService evaluates ownership predicates for the authorization
// policy. Self-access is answered from the principal alone; merchant
// ownership consults the live user record, so a revoked merchant admin
// loses access as soon as the record changes.
type PermissionService struct {
	users  ports.UserRepository
	logger zerolog.Logger
}

func NewPermissionService(users ports.UserRepository, logger zerolog.Logger) *PermissionService {
	return &PermissionService{users: users, logger: logger}
}

// IsSelf reports whether the principal is the user identified by userID.
func (s *PermissionService) IsSelf(_ context.Context, p *domain.Principal, userID int64) bool {
	return p != nil && userID != 0 && p.UserID == userID
}

// OwnsMerchant reports whether the principal administers the given
// merchant. Any lookup failure denies (fail-closed).
func (s *PermissionService) OwnsMerchant(ctx context.Context, p *domain.Principal, merchantID int64) bool {
	if p == nil || merchantID == 0 {
		return false
	}

	user, err := s.users.FindByEmail(ctx, p.Email)
	if err != nil {
		s.logger.Debug().Str("subject", p.Email).Msg("merchant ownership lookup failed")
		return false
	}
	return user.OwnsMerchant(merchantID)
}
