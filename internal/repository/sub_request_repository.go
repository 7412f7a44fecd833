package repository

import (
	"context"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubRequestRepository struct {
	db *gorm.DB
}

func NewSubRequestRepository(db *gorm.DB) *SubRequestRepository {
	return &SubRequestRepository{db: db}
}

func (r *SubRequestRepository) Create(ctx context.Context, request *domain.SubRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *SubRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SubRequest, error) {
	var request domain.SubRequest
	err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *SubRequestRepository) GetByProjectNumber(ctx context.Context, projectNumber string) ([]domain.SubRequest, error) {
	var requests []domain.SubRequest
	err := r.db.WithContext(ctx).
		Where("project_number = ?", projectNumber).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *SubRequestRepository) Update(ctx context.Context, request *domain.SubRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *SubRequestRepository) List(ctx context.Context, deptStatus string) ([]domain.SubRequest, error) {
	var requests []domain.SubRequest
	query := r.db.WithContext(ctx).Model(&domain.SubRequest{})
	if deptStatus != "" {
		query = query.Where("dept_status = ?", deptStatus)
	}
	err := query.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *SubRequestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.SubRequest{}, "id = ?", id).Error
}
