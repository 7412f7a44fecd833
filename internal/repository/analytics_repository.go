package repository

import (
	"context"
	"errors"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsRepository maintains the incremental monthly rollup rows. Each
// increment runs in a transaction with the row locked so concurrent
// transitions cannot lose updates.
type AnalyticsRepository struct {
	db *gorm.DB
}

func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// IncrementMonthly applies deltas to the rollup row for a month, creating
// the row on first use.
func (r *AnalyticsRepository) IncrementMonthly(ctx context.Context, month string, proposals, wins int, revenue float64, completed int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row domain.MonthlyAnalytics
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("month = ?", month).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = domain.MonthlyAnalytics{Month: month}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		row.Proposals += proposals
		row.Wins += wins
		row.Revenue += revenue
		row.Completed += completed
		return tx.Save(&row).Error
	})
}

// IncrementOfficeMonthly applies deltas to the per-office rollup row for a
// month, creating the row on first use.
func (r *AnalyticsRepository) IncrementOfficeMonthly(ctx context.Context, month string, office domain.OfficeCode, proposals, wins int, revenue float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row domain.OfficeMonthlyAnalytics
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("month = ? AND office = ?", month, office).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = domain.OfficeMonthlyAnalytics{Month: month, Office: office}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		row.Proposals += proposals
		row.Wins += wins
		row.Revenue += revenue
		return tx.Save(&row).Error
	})
}

// IncrementPM applies win deltas to the per-project-manager rollup row,
// creating the row on first use.
func (r *AnalyticsRepository) IncrementPM(ctx context.Context, projectManager string, wins int, revenue float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row domain.PMAnalytics
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("project_manager = ?", projectManager).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = domain.PMAnalytics{ProjectManager: projectManager}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		row.Wins += wins
		row.Revenue += revenue
		return tx.Save(&row).Error
	})
}

// GetMonthly returns the rollup row for a month, or nil when no activity
// has been recorded yet.
func (r *AnalyticsRepository) GetMonthly(ctx context.Context, month string) (*domain.MonthlyAnalytics, error) {
	var row domain.MonthlyAnalytics
	err := r.db.WithContext(ctx).Where("month = ?", month).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListMonthly returns all monthly rollup rows ordered by month.
func (r *AnalyticsRepository) ListMonthly(ctx context.Context) ([]domain.MonthlyAnalytics, error) {
	var rows []domain.MonthlyAnalytics
	err := r.db.WithContext(ctx).Order("month ASC").Find(&rows).Error
	return rows, err
}

// ListOfficeMonthly returns all per-office rollup rows ordered by month.
func (r *AnalyticsRepository) ListOfficeMonthly(ctx context.Context) ([]domain.OfficeMonthlyAnalytics, error) {
	var rows []domain.OfficeMonthlyAnalytics
	err := r.db.WithContext(ctx).Order("month ASC, office ASC").Find(&rows).Error
	return rows, err
}

// ListPM returns all per-project-manager rollup rows.
func (r *AnalyticsRepository) ListPM(ctx context.Context) ([]domain.PMAnalytics, error) {
	var rows []domain.PMAnalytics
	err := r.db.WithContext(ctx).Order("project_manager ASC").Find(&rows).Error
	return rows, err
}
