package service

import (
	"context"
	"fmt"
	"time"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/repository"
	"go.uber.org/zap"
)

// NumberSequenceService handles generation of unique, formatted numbers for
// proposals and projects.
//
// Proposal numbers use a per-office counter that never resets:
//
//	{OFFICE}-{YEAR}-{SEQ}-{PTYPE}-{STYPE}  e.g. "SD-2025-0001-P-GT"
//
// The year in the number reflects when the proposal was created, but the
// counter itself is office-scoped only, so sequences keep climbing across
// year boundaries.
//
// Project numbers use a single company-wide counter:
//
//	G-{SEQ}-{TEAM}-01  e.g. "G-000123-02-01"
type NumberSequenceService struct {
	repo   *repository.NumberSequenceRepository
	logger *zap.Logger
}

// NewNumberSequenceService creates a new NumberSequenceService
func NewNumberSequenceService(
	repo *repository.NumberSequenceRepository,
	logger *zap.Logger,
) *NumberSequenceService {
	return &NumberSequenceService{
		repo:   repo,
		logger: logger,
	}
}

// GenerateProposalNumber generates the next proposal number for an office.
// Called when a proposal is created.
func (s *NumberSequenceService) GenerateProposalNumber(ctx context.Context, office domain.OfficeCode, ptype domain.ProposalType, stype domain.ServiceType) (string, error) {
	if !office.IsValid() {
		return "", fmt.Errorf("%w: unknown office %q", ErrInvalidInput, office)
	}
	if !ptype.IsValid() {
		return "", fmt.Errorf("%w: unknown proposal type %q", ErrInvalidInput, ptype)
	}
	if !stype.IsValid() {
		return "", fmt.Errorf("%w: unknown service type %q", ErrInvalidInput, stype)
	}

	key := fmt.Sprintf("proposal:%s", office)
	nextSeq, err := s.repo.GetNextNumber(ctx, key)
	if err != nil {
		s.logger.Error("failed to get next proposal sequence",
			zap.String("office", string(office)),
			zap.Error(err))
		return "", fmt.Errorf("failed to generate proposal number: %w", err)
	}

	year := time.Now().Year()
	number := fmt.Sprintf("%s-%d-%04d-%s-%s", office, year, nextSeq, ptype, stype)

	s.logger.Info("generated proposal number",
		zap.String("number", number),
		zap.String("office", string(office)),
		zap.Int("sequence", nextSeq))

	return number, nil
}

// GenerateProjectNumber generates the next company-wide project number.
// Called when a proposal is won. teamNumber is the two-digit team of the
// project manager's director, "00" when unassigned.
func (s *NumberSequenceService) GenerateProjectNumber(ctx context.Context, teamNumber string) (string, error) {
	if teamNumber == "" {
		teamNumber = "00"
	}

	nextSeq, err := s.repo.GetNextNumber(ctx, "project:global")
	if err != nil {
		s.logger.Error("failed to get next project sequence", zap.Error(err))
		return "", fmt.Errorf("failed to generate project number: %w", err)
	}

	number := fmt.Sprintf("G-%06d-%s-01", nextSeq, teamNumber)

	s.logger.Info("generated project number",
		zap.String("number", number),
		zap.Int("sequence", nextSeq))

	return number, nil
}

// GetCurrentSequence returns the current counter value for a sequence key
// without incrementing it. Returns 0 if the sequence does not exist yet.
func (s *NumberSequenceService) GetCurrentSequence(ctx context.Context, key string) (int, error) {
	return s.repo.GetCurrentSequence(ctx, key)
}

// InitializeSequence sets a counter to a specific value. Useful for data
// migrations so the counter accounts for existing numbered entities. The
// value should be the LAST USED sequence number.
func (s *NumberSequenceService) InitializeSequence(ctx context.Context, key string, value int) error {
	return s.repo.SetSequence(ctx, key, value)
}
