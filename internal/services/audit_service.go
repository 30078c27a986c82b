package services

import (
	"context"
	"log"

	"fleet-backend/internal/models"
)

// AuditService records who changed what. Failures are logged and never
// fail the request that triggered them.
type AuditService struct {
	Logs ActionLogStore
}

func NewAuditService(logs ActionLogStore) *AuditService {
	return &AuditService{Logs: logs}
}

func (s *AuditService) Record(ctx context.Context, entry *models.ActionLog) {
	if err := s.Logs.Record(ctx, entry); err != nil {
		log.Printf("[Audit] failed to record %s %s: %v", entry.ActionType, entry.TargetType, err)
	}
}

func (s *AuditService) List(ctx context.Context, limit int) ([]*models.ActionLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.Logs.List(ctx, limit)
}
