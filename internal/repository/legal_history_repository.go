package repository

import (
	"context"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LegalHistoryRepository struct {
	db *gorm.DB
}

func NewLegalHistoryRepository(db *gorm.DB) *LegalHistoryRepository {
	return &LegalHistoryRepository{db: db}
}

// Create records a new legal status event
func (r *LegalHistoryRepository) Create(ctx context.Context, event *domain.LegalStatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// GetByProjectID returns the full legal history for a project, newest first
func (r *LegalHistoryRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]domain.LegalStatusEvent, error) {
	var history []domain.LegalStatusEvent
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&history).Error
	return history, err
}

// GetLatestByProjectID returns the most recent legal status event for a project
func (r *LegalHistoryRepository) GetLatestByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.LegalStatusEvent, error) {
	var event domain.LegalStatusEvent
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// CountByStatus returns the count of events per legal status
func (r *LegalHistoryRepository) CountByStatus(ctx context.Context) (map[domain.LegalStatus]int64, error) {
	type result struct {
		Status domain.LegalStatus
		Count  int64
	}
	var results []result

	err := r.db.WithContext(ctx).Model(&domain.LegalStatusEvent{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.LegalStatus]int64)
	for _, row := range results {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// RecordTransition is a convenience method to append a legal status event
func (r *LegalHistoryRepository) RecordTransition(
	ctx context.Context,
	projectID uuid.UUID,
	oldStatus *domain.LegalStatus,
	status domain.LegalStatus,
	changedBy string,
	notes string,
) error {
	event := &domain.LegalStatusEvent{
		ProjectID: projectID,
		OldStatus: oldStatus,
		Status:    status,
		ChangedBy: changedBy,
		Notes:     notes,
	}
	return r.Create(ctx, event)
}

// DeleteByProjectID removes all history for a project (used when the project is deleted)
func (r *LegalHistoryRepository) DeleteByProjectID(ctx context.Context, projectID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Delete(&domain.LegalStatusEvent{}).Error
}
