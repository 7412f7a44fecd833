package repository

import (
	"context"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *FileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	var file domain.File
	err := r.db.WithContext(ctx).First(&file, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// ListByEntity returns all files attached to a proposal or project
func (r *FileRepository) ListByEntity(ctx context.Context, entityType, entityNumber string) ([]domain.File, error) {
	var files []domain.File
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_number = ?", entityType, entityNumber).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}

// CountByEntity returns the count of files attached to a proposal or project
func (r *FileRepository) CountByEntity(ctx context.Context, entityType, entityNumber string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.File{}).
		Where("entity_type = ? AND entity_number = ?", entityType, entityNumber).
		Count(&count).Error
	return count, err
}

func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.File{}, "id = ?", id).Error
}
