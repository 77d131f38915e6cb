package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deliverly/marketplace-api/internal/core/ports"
)

// AuditService persists security events from the audit dispatcher.
type AuditService struct {
	repo   ports.AuditRepository
	logger zerolog.Logger
}

func NewAuditService(repo ports.AuditRepository, logger zerolog.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Process stores one security event. Events are append-only: a failed
// insert is reported to the dispatcher but never retried here.
func (s *AuditService) Process(ctx context.Context, event ports.SecurityEvent) error {
	if event.Subject == "" && event.Action == "" {
		return nil
	}

	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	s.logger.Debug().
		Str("action", event.Action).
		Str("outcome", event.Outcome).
		Msg("audit event stored")
	return nil
}
