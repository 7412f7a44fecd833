package repository

import (
	"context"
	"strings"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectFilter narrows project listings
type ProjectFilter struct {
	Status         domain.ProjectStatus
	Office         domain.OfficeCode
	ProjectManager string
	LegalStatus    domain.LegalStatus
	Search         string
}

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) DB() *gorm.DB {
	return r.db
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) GetByNumber(ctx context.Context, number string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, "project_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByProposalNumber returns the project created from a proposal, if any.
func (r *ProjectRepository) GetByProposalNumber(ctx context.Context, proposalNumber string) (*domain.Project, error) {
	var project domain.Project
	err := r.db.WithContext(ctx).First(&project, "proposal_number = ?", proposalNumber).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Project{}, "id = ?", id).Error
}

func (r *ProjectRepository) List(ctx context.Context, filter ProjectFilter, page, pageSize int) ([]domain.Project, int64, error) {
	var projects []domain.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Project{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Office != "" {
		query = query.Where("office = ?", filter.Office)
	}
	if filter.ProjectManager != "" {
		query = query.Where("project_manager = ?", filter.ProjectManager)
	}
	if filter.LegalStatus != "" {
		query = query.Where("legal_status = ?", filter.LegalStatus)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(project_number) LIKE ? OR LOWER(project_name) LIKE ? OR LOWER(client_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&projects).Error

	return projects, total, err
}

// ListAll returns every project ordered by creation time. Used by the
// analytics recompute.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&projects).Error
	return projects, err
}

// ListInLegalReview returns projects that still carry a legal status.
func (r *ProjectRepository) ListInLegalReview(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := r.db.WithContext(ctx).
		Where("legal_status IS NOT NULL").
		Order("created_at ASC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) CountByStatus(ctx context.Context) (map[domain.ProjectStatus]int64, error) {
	type result struct {
		Status domain.ProjectStatus
		Count  int64
	}
	var results []result

	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.ProjectStatus]int64)
	for _, row := range results {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *ProjectRepository) CountByLegalStatus(ctx context.Context) (map[domain.LegalStatus]int64, error) {
	type result struct {
		LegalStatus domain.LegalStatus
		Count       int64
	}
	var results []result

	err := r.db.WithContext(ctx).Model(&domain.Project{}).
		Select("legal_status, COUNT(*) as count").
		Where("legal_status IS NOT NULL").
		Group("legal_status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.LegalStatus]int64)
	for _, row := range results {
		counts[row.LegalStatus] = row.Count
	}
	return counts, nil
}
