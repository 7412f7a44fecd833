package repository

import (
	"context"
	"strings"
	"time"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProposalFilter narrows proposal listings
type ProposalFilter struct {
	Status         domain.ProposalStatus
	Office         domain.OfficeCode
	ProjectManager string
	ClientName     string
	CreatedBy      string
	Search         string
}

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

// DB exposes the underlying connection for cross-repository transactions
func (r *ProposalRepository) DB() *gorm.DB {
	return r.db
}

func (r *ProposalRepository) Create(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	var proposal domain.Proposal
	err := r.db.WithContext(ctx).First(&proposal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *ProposalRepository) GetByNumber(ctx context.Context, number string) (*domain.Proposal, error) {
	var proposal domain.Proposal
	err := r.db.WithContext(ctx).First(&proposal, "proposal_number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *ProposalRepository) Update(ctx context.Context, proposal *domain.Proposal) error {
	return r.db.WithContext(ctx).Save(proposal).Error
}

func (r *ProposalRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Proposal{}, "id = ?", id).Error
}

// List returns a page of proposals matching the filter
func (r *ProposalRepository) List(ctx context.Context, filter ProposalFilter, page, pageSize int) ([]domain.Proposal, int64, error) {
	var proposals []domain.Proposal
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Proposal{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Office != "" {
		query = query.Where("office = ?", filter.Office)
	}
	if filter.ProjectManager != "" {
		query = query.Where("project_manager = ?", filter.ProjectManager)
	}
	if filter.ClientName != "" {
		query = query.Where("client_name = ?", filter.ClientName)
	}
	if filter.CreatedBy != "" {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(proposal_number) LIKE ? OR LOWER(project_name) LIKE ? OR LOWER(client_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&proposals).Error

	return proposals, total, err
}

// ListAll returns every proposal. Used by the analytics full recompute,
// which is defined as a pure scan over stored records.
func (r *ProposalRepository) ListAll(ctx context.Context) ([]domain.Proposal, error) {
	var proposals []domain.Proposal
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&proposals).Error
	return proposals, err
}

// ListSentPendingBefore returns pending proposals that were sent before
// the cutoff and have not been won or lost. Used by the follow-up
// reminder job.
func (r *ProposalRepository) ListSentPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Proposal, error) {
	var proposals []domain.Proposal
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.ProposalStatusPending).
		Where("proposal_sent = ?", true).
		Where("proposal_sent_date < ?", cutoff).
		Order("proposal_sent_date ASC").
		Find(&proposals).Error
	return proposals, err
}

// CountByStatus returns proposal counts grouped by status
func (r *ProposalRepository) CountByStatus(ctx context.Context) (map[domain.ProposalStatus]int64, error) {
	type result struct {
		Status domain.ProposalStatus
		Count  int64
	}
	var results []result

	err := r.db.WithContext(ctx).Model(&domain.Proposal{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.ProposalStatus]int64)
	for _, row := range results {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
