package services

import (
	"context"
	"fmt"

	"github.com/sjperalta/creditos-api/internal/models"
	"github.com/sjperalta/creditos-api/internal/repository"
)

type AuditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an audit entry outside of any ledger transaction
func (s *AuditService) Log(ctx context.Context, actor models.Actor, action, entity string, entityID uint, details string) error {
	return record(ctx, s.repo, actor, action, entity, entityID, details)
}

// List retrieves audit logs, newest first
func (s *AuditService) List(ctx context.Context, query *repository.ListQuery) ([]models.AuditLog, int64, error) {
	logs, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, 0, persist("listar auditoría", "auditoría", err)
	}
	return logs, total, nil
}

// within writes an entry through transaction-bound repositories so it commits with the mutation.
func (s *AuditService) within(ctx context.Context, repos *repository.Repositories, actor models.Actor, action, entity string, entityID uint, format string, args ...any) error {
	return record(ctx, repos.Audit, actor, action, entity, entityID, fmt.Sprintf(format, args...))
}

func record(ctx context.Context, repo repository.AuditRepository, actor models.Actor, action, entity string, entityID uint, details string) error {
	if len(actor.UserAgent) > 255 {
		actor.UserAgent = actor.UserAgent[:255]
	}
	entry := &models.AuditLog{
		UserID:    actor.UserID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
	}
	if err := repo.Create(ctx, entry); err != nil {
		return persist("registrar auditoría", "auditoría", err)
	}
	return nil
}
