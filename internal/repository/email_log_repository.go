package repository

import (
	"context"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"gorm.io/gorm"
)

// EmailLogRepository handles outbound email log data access
type EmailLogRepository struct {
	db *gorm.DB
}

func NewEmailLogRepository(db *gorm.DB) *EmailLogRepository {
	return &EmailLogRepository{db: db}
}

func (r *EmailLogRepository) Create(ctx context.Context, log *domain.EmailLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *EmailLogRepository) List(ctx context.Context, page, pageSize int) ([]domain.EmailLog, int64, error) {
	var logs []domain.EmailLog
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.EmailLog{})

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

// ListByRelatedNumber retrieves emails sent for a specific proposal or project
func (r *EmailLogRepository) ListByRelatedNumber(ctx context.Context, number string, limit int) ([]domain.EmailLog, error) {
	var logs []domain.EmailLog
	err := r.db.WithContext(ctx).
		Where("related_number = ?", number).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// TrimToCap deletes the oldest entries once the log exceeds cap rows.
func (r *EmailLogRepository) TrimToCap(ctx context.Context, cap int) error {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.EmailLog{}).Count(&total).Error; err != nil {
		return err
	}
	excess := int(total) - cap
	if excess <= 0 {
		return nil
	}

	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.EmailLog{}).
		Select("id").
		Order("created_at ASC").
		Limit(excess).
		Scan(&ids).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Delete(&domain.EmailLog{}, "id IN ?", ids).Error
}
