package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/mapper"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditService records user-visible activity and deletion snapshots.
// Activity recording is best-effort: a logging failure never fails the
// operation being logged. Deletion snapshots are the exception, they run
// inside the deleting transaction and must succeed.
type AuditService struct {
	activityRepo *repository.ActivityLogRepository
	deletionRepo *repository.DeletionLogRepository
	cfg          *config.NotifyConfig
	logger       *zap.Logger
}

// NewAuditService creates a new AuditService
func NewAuditService(
	activityRepo *repository.ActivityLogRepository,
	deletionRepo *repository.DeletionLogRepository,
	cfg *config.NotifyConfig,
	logger *zap.Logger,
) *AuditService {
	return &AuditService{
		activityRepo: activityRepo,
		deletionRepo: deletionRepo,
		cfg:          cfg,
		logger:       logger,
	}
}

// RecordActivity appends an activity log entry and trims the log to its cap.
func (s *AuditService) RecordActivity(ctx context.Context, action, entityType, entityNumber, actor, details string) {
	entry := &domain.ActivityLog{
		Action:       action,
		EntityType:   entityType,
		EntityNumber: entityNumber,
		Actor:        actor,
		Details:      details,
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity",
			zap.String("action", action),
			zap.String("entityNumber", entityNumber),
			zap.Error(err))
		return
	}
	if s.cfg.ActivityLogCap > 0 {
		if err := s.activityRepo.TrimToCap(ctx, s.cfg.ActivityLogCap); err != nil {
			s.logger.Warn("failed to trim activity log", zap.Error(err))
		}
	}
}

// SnapshotDeletionTx serializes the deleted entity and writes a deletion
// log row inside the caller's transaction. Unlike activity logging this is
// part of the delete itself, so the error propagates and rolls the delete
// back.
func (s *AuditService) SnapshotDeletionTx(tx *gorm.DB, entityType, entityNumber, deletedBy, note string, entity interface{}) error {
	snapshot, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to serialize %s snapshot: %w", entityType, err)
	}

	entry := &domain.DeletionLog{
		EntityType:   entityType,
		EntityNumber: entityNumber,
		DeletedBy:    deletedBy,
		DeletionNote: note,
		Snapshot:     string(snapshot),
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record deletion: %w", err)
	}
	return nil
}

// ListActivity returns activity log entries with pagination
func (s *AuditService) ListActivity(ctx context.Context, filter *repository.ActivityLogFilter, page, pageSize int) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	logs, total, err := s.activityRepo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	dtos := make([]domain.ActivityLogDTO, len(logs))
	for i, log := range logs {
		dtos[i] = mapper.ToActivityLogDTO(&log)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// ListDeletions returns deletion log entries with pagination
func (s *AuditService) ListDeletions(ctx context.Context, entityType string, page, pageSize int) (*domain.PaginatedResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	logs, total, err := s.deletionRepo.List(ctx, entityType, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list deletions: %w", err)
	}

	dtos := make([]domain.DeletionLogDTO, len(logs))
	for i, log := range logs {
		dtos[i] = mapper.ToDeletionLogDTO(&log)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}
