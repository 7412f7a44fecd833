package repository

import (
	"context"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InsuranceRequestRepository struct {
	db *gorm.DB
}

func NewInsuranceRequestRepository(db *gorm.DB) *InsuranceRequestRepository {
	return &InsuranceRequestRepository{db: db}
}

func (r *InsuranceRequestRepository) Create(ctx context.Context, request *domain.InsuranceRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *InsuranceRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InsuranceRequest, error) {
	var request domain.InsuranceRequest
	err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *InsuranceRequestRepository) GetByProjectNumber(ctx context.Context, projectNumber string) ([]domain.InsuranceRequest, error) {
	var requests []domain.InsuranceRequest
	err := r.db.WithContext(ctx).
		Where("project_number = ?", projectNumber).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *InsuranceRequestRepository) Update(ctx context.Context, request *domain.InsuranceRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// ListByStatus returns insurance requests filtered by department status. An
// empty status returns everything.
func (r *InsuranceRequestRepository) ListByStatus(ctx context.Context, status domain.InsuranceDeptStatus) ([]domain.InsuranceRequest, error) {
	var requests []domain.InsuranceRequest
	query := r.db.WithContext(ctx).Model(&domain.InsuranceRequest{})
	if status != "" {
		query = query.Where("dept_status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&requests).Error
	return requests, err
}

func (r *InsuranceRequestRepository) DeleteByProjectNumber(ctx context.Context, projectNumber string) error {
	return r.db.WithContext(ctx).
		Where("project_number = ?", projectNumber).
		Delete(&domain.InsuranceRequest{}).Error
}
