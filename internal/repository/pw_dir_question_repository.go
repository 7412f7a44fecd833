package repository

import (
	"context"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PWDirQuestionRepository struct {
	db *gorm.DB
}

func NewPWDirQuestionRepository(db *gorm.DB) *PWDirQuestionRepository {
	return &PWDirQuestionRepository{db: db}
}

func (r *PWDirQuestionRepository) Create(ctx context.Context, question *domain.PWDirQuestion) error {
	return r.db.WithContext(ctx).Create(question).Error
}

func (r *PWDirQuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PWDirQuestion, error) {
	var question domain.PWDirQuestion
	err := r.db.WithContext(ctx).First(&question, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func (r *PWDirQuestionRepository) GetByProjectNumber(ctx context.Context, projectNumber string) ([]domain.PWDirQuestion, error) {
	var questions []domain.PWDirQuestion
	err := r.db.WithContext(ctx).
		Where("project_number = ?", projectNumber).
		Order("created_at DESC").
		Find(&questions).Error
	return questions, err
}

func (r *PWDirQuestionRepository) Update(ctx context.Context, question *domain.PWDirQuestion) error {
	return r.db.WithContext(ctx).Save(question).Error
}

func (r *PWDirQuestionRepository) List(ctx context.Context, deptStatus string) ([]domain.PWDirQuestion, error) {
	var questions []domain.PWDirQuestion
	query := r.db.WithContext(ctx).Model(&domain.PWDirQuestion{})
	if deptStatus != "" {
		query = query.Where("dept_status = ?", deptStatus)
	}
	err := query.Order("created_at DESC").Find(&questions).Error
	return questions, err
}

func (r *PWDirQuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.PWDirQuestion{}, "id = ?", id).Error
}
