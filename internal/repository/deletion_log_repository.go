package repository

import (
	"context"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"gorm.io/gorm"
)

// DeletionLogRepository handles deletion audit records
type DeletionLogRepository struct {
	db *gorm.DB
}

func NewDeletionLogRepository(db *gorm.DB) *DeletionLogRepository {
	return &DeletionLogRepository{db: db}
}

func (r *DeletionLogRepository) Create(ctx context.Context, log *domain.DeletionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *DeletionLogRepository) List(ctx context.Context, entityType string, page, pageSize int) ([]domain.DeletionLog, int64, error) {
	var logs []domain.DeletionLog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.DeletionLog{})
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

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

// GetByEntityNumber returns deletion records for a specific number
func (r *DeletionLogRepository) GetByEntityNumber(ctx context.Context, number string) ([]domain.DeletionLog, error) {
	var logs []domain.DeletionLog
	err := r.db.WithContext(ctx).
		Where("entity_number = ?", number).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}
