package repository

import (
	"context"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"gorm.io/gorm"
)

// ActivityLogFilter represents filter options for querying activity logs
type ActivityLogFilter struct {
	Action       string
	EntityType   string
	EntityNumber string
	Actor        string
}

// ActivityLogRepository handles activity log data access
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Create inserts a new activity log entry (append-only - no updates allowed)
func (r *ActivityLogRepository) Create(ctx context.Context, log *domain.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// List retrieves activity logs with pagination and optional filters
func (r *ActivityLogRepository) List(ctx context.Context, filter *ActivityLogFilter, page, pageSize int) ([]domain.ActivityLog, int64, error) {
	var logs []domain.ActivityLog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ActivityLog{})
	query = r.applyFilters(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&logs).Error

	return logs, total, err
}

// ListByEntity retrieves activity logs for a specific proposal or project
func (r *ActivityLogRepository) ListByEntity(ctx context.Context, entityType, entityNumber string, limit int) ([]domain.ActivityLog, error) {
	var logs []domain.ActivityLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_number = ?", entityType, entityNumber).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// TrimToCap deletes the oldest entries once the log exceeds cap rows.
func (r *ActivityLogRepository) TrimToCap(ctx context.Context, cap int) error {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.ActivityLog{}).Count(&total).Error; err != nil {
		return err
	}
	excess := int(total) - cap
	if excess <= 0 {
		return nil
	}

	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.ActivityLog{}).
		Select("id").
		Order("created_at ASC").
		Limit(excess).
		Scan(&ids).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&domain.ActivityLog{}, "id IN ?", ids).Error
}

func (r *ActivityLogRepository) applyFilters(query *gorm.DB, filter *ActivityLogFilter) *gorm.DB {
	if filter == nil {
		return query
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.EntityNumber != "" {
		query = query.Where("entity_number = ?", filter.EntityNumber)
	}
	if filter.Actor != "" {
		query = query.Where("actor = ?", filter.Actor)
	}
	return query
}
