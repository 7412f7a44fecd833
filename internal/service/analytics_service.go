package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"go.uber.org/zap"
)

// Fee range bucket labels, ordered
var feeRangeBuckets = []string{"under_10k", "10k_50k", "50k_100k", "100k_500k", "over_500k"}

// AnalyticsService maintains the monthly rollups and builds the full
// analytics report. UpdateAnalytics applies small increments as lifecycle
// events happen; GetAnalytics recomputes everything from the proposals and
// projects tables so the report never drifts from the source of truth.
type AnalyticsService struct {
	analyticsRepo *repository.AnalyticsRepository
	proposalRepo  *repository.ProposalRepository
	projectRepo   *repository.ProjectRepository
	logger        *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	analyticsRepo *repository.AnalyticsRepository,
	proposalRepo *repository.ProposalRepository,
	projectRepo *repository.ProjectRepository,
	logger *zap.Logger,
) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		proposalRepo:  proposalRepo,
		projectRepo:   projectRepo,
		logger:        logger,
	}
}

// UpdateAnalytics applies one lifecycle event to the monthly rollups. The
// event lands in the current wall-clock month regardless of any dates on
// the entity itself.
func (s *AnalyticsService) UpdateAnalytics(ctx context.Context, action domain.AnalyticsUpdateAction, payload domain.AnalyticsUpdatePayload) error {
	month := time.Now().Format("2006-01")

	switch action {
	case domain.AnalyticsNewProposal:
		if err := s.analyticsRepo.IncrementMonthly(ctx, month, 1, 0, 0, 0); err != nil {
			return fmt.Errorf("failed to increment monthly proposals: %w", err)
		}
		if payload.Office != "" {
			if err := s.analyticsRepo.IncrementOfficeMonthly(ctx, month, payload.Office, 1, 0, 0); err != nil {
				return fmt.Errorf("failed to increment office proposals: %w", err)
			}
		}

	case domain.AnalyticsProposalWon:
		if err := s.analyticsRepo.IncrementMonthly(ctx, month, 0, 1, payload.Fee, 0); err != nil {
			return fmt.Errorf("failed to increment monthly wins: %w", err)
		}
		if payload.Office != "" {
			if err := s.analyticsRepo.IncrementOfficeMonthly(ctx, month, payload.Office, 0, 1, payload.Fee); err != nil {
				return fmt.Errorf("failed to increment office wins: %w", err)
			}
		}
		if payload.ProjectManager != "" {
			if err := s.analyticsRepo.IncrementPM(ctx, payload.ProjectManager, 1, payload.Fee); err != nil {
				return fmt.Errorf("failed to increment pm wins: %w", err)
			}
		}

	case domain.AnalyticsProjectCompleted:
		if err := s.analyticsRepo.IncrementMonthly(ctx, month, 0, 0, 0, 1); err != nil {
			return fmt.Errorf("failed to increment monthly completions: %w", err)
		}

	default:
		return fmt.Errorf("%w: unknown analytics action %q", ErrInvalidInput, action)
	}

	return nil
}

// GetAnalytics builds the full report by scanning every proposal and
// project. It reads the rollup tables only for the monthly series.
func (s *AnalyticsService) GetAnalytics(ctx context.Context) (*domain.AnalyticsReportDTO, error) {
	proposals, err := s.proposalRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan proposals: %w", err)
	}
	projects, err := s.projectRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan projects: %w", err)
	}

	report := &domain.AnalyticsReportDTO{
		RevenueByOffice:         make(map[domain.OfficeCode]float64),
		PMPerformance:           make(map[string]domain.PerformanceDTO),
		ClientPerformance:       make(map[string]domain.PerformanceDTO),
		ProposalTypePerformance: make(map[domain.ProposalType]domain.PerformanceDTO),
		ServiceTypePerformance:  make(map[domain.ServiceType]domain.PerformanceDTO),
		FeeRanges:               make(map[string]domain.FeeRangeDTO),
		LegalQueue:              make(map[domain.LegalStatus]int),
	}
	for _, bucket := range feeRangeBuckets {
		report.FeeRanges[bucket] = domain.FeeRangeDTO{}
	}

	var winDays float64
	var winDaysSamples int

	for i := range proposals {
		p := &proposals[i]
		report.TotalProposals++

		won := p.Status == domain.ProposalStatusConverted
		switch p.Status {
		case domain.ProposalStatusConverted:
			report.TotalWon++
			report.TotalRevenue += p.Fee
			report.RevenueByOffice[p.Office] += p.Fee
		case domain.ProposalStatusLost:
			report.TotalLost++
		case domain.ProposalStatusPending:
			report.TotalPending++
		}

		if p.ProjectManager != "" {
			applyPerformance(report.PMPerformance, p.ProjectManager, p.Fee, won)
		}
		applyPerformance(report.ClientPerformance, p.ClientName, p.Fee, won)
		applyPerformance(report.ProposalTypePerformance, p.ProposalType, p.Fee, won)
		applyPerformance(report.ServiceTypePerformance, p.ServiceType, p.Fee, won)

		bucket := feeRangeFor(p.Fee)
		r := report.FeeRanges[bucket]
		r.All++
		if won {
			r.Won++
		}
		report.FeeRanges[bucket] = r

		if won && p.WonDate != nil {
			winDays += p.WonDate.Sub(p.CreatedAt).Hours() / 24
			winDaysSamples++
		}
	}

	decided := report.TotalWon + report.TotalLost
	if decided > 0 {
		report.WinRate = round1(float64(report.TotalWon) / float64(decided) * 100)
	}
	if winDaysSamples > 0 {
		report.AvgTimeToWinDays = round1(winDays / float64(winDaysSamples))
	}

	finalizePerformance(report.PMPerformance)
	finalizePerformance(report.ClientPerformance)
	finalizePerformance(report.ProposalTypePerformance)
	finalizePerformance(report.ServiceTypePerformance)

	// Legal queue counts only open reviews
	for i := range projects {
		status := projects[i].LegalStatus
		if status == nil || status.IsTerminal() {
			continue
		}
		report.LegalQueue[*status]++
	}

	monthly, err := s.analyticsRepo.ListMonthly(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly analytics: %w", err)
	}
	report.Monthly = make([]domain.MonthlyAnalyticsDTO, len(monthly))
	for i, row := range monthly {
		report.Monthly[i] = domain.MonthlyAnalyticsDTO{
			Month:     row.Month,
			Proposals: row.Proposals,
			Wins:      row.Wins,
			Revenue:   row.Revenue,
			Completed: row.Completed,
		}
	}

	return report, nil
}

// GetMonthly returns the rollup for one month, zeroed when no activity was
// recorded.
func (s *AnalyticsService) GetMonthly(ctx context.Context, month string) (*domain.MonthlyAnalyticsDTO, error) {
	row, err := s.analyticsRepo.GetMonthly(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly analytics: %w", err)
	}
	if row == nil {
		return &domain.MonthlyAnalyticsDTO{Month: month}, nil
	}
	return &domain.MonthlyAnalyticsDTO{
		Month:     row.Month,
		Proposals: row.Proposals,
		Wins:      row.Wins,
		Revenue:   row.Revenue,
		Completed: row.Completed,
	}, nil
}

func feeRangeFor(fee float64) string {
	switch {
	case fee < 10_000:
		return "under_10k"
	case fee < 50_000:
		return "10k_50k"
	case fee < 100_000:
		return "50k_100k"
	case fee < 500_000:
		return "100k_500k"
	default:
		return "over_500k"
	}
}

func applyPerformance[K comparable](m map[K]domain.PerformanceDTO, key K, fee float64, won bool) {
	p := m[key]
	p.Total++
	if won {
		p.Won++
		p.Revenue += fee
	}
	p.AvgFee += fee // running sum, averaged in finalize
	m[key] = p
}

func finalizePerformance[K comparable](m map[K]domain.PerformanceDTO) {
	for key, p := range m {
		if p.Total > 0 {
			p.WinRate = round1(float64(p.Won) / float64(p.Total) * 100)
			p.AvgFee = round1(p.AvgFee / float64(p.Total))
		}
		m[key] = p
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
