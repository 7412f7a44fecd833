package repository

import (
	"context"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExecutedContractRepository struct {
	db *gorm.DB
}

func NewExecutedContractRepository(db *gorm.DB) *ExecutedContractRepository {
	return &ExecutedContractRepository{db: db}
}

func (r *ExecutedContractRepository) Create(ctx context.Context, contract *domain.ExecutedContract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ExecutedContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExecutedContract, error) {
	var contract domain.ExecutedContract
	err := r.db.WithContext(ctx).First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ExecutedContractRepository) GetByProjectNumber(ctx context.Context, projectNumber string) (*domain.ExecutedContract, error) {
	var contract domain.ExecutedContract
	err := r.db.WithContext(ctx).First(&contract, "project_number = ?", projectNumber).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ExecutedContractRepository) Update(ctx context.Context, contract *domain.ExecutedContract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

// ListByStatus returns contracts filtered by department status. An empty
// status returns everything.
func (r *ExecutedContractRepository) ListByStatus(ctx context.Context, status domain.ContractDeptStatus) ([]domain.ExecutedContract, error) {
	var contracts []domain.ExecutedContract
	query := r.db.WithContext(ctx).Model(&domain.ExecutedContract{})
	if status != "" {
		query = query.Where("dept_status = ?", status)
	}
	err := query.Order("created_at DESC").Find(&contracts).Error
	return contracts, err
}

func (r *ExecutedContractRepository) DeleteByProjectNumber(ctx context.Context, projectNumber string) error {
	return r.db.WithContext(ctx).
		Where("project_number = ?", projectNumber).
		Delete(&domain.ExecutedContract{}).Error
}
