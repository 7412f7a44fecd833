package service_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

func TestGenerateProposalNumberFormat(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()
	year := time.Now().Year()

	number, err := env.numberSvc.GenerateProposalNumber(ctx, domain.OfficeSanDiego, domain.ProposalTypeProposal, domain.ServiceGeotechnical)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SD-%d-0001-P-GT", year), number)

	number, err = env.numberSvc.GenerateProposalNumber(ctx, domain.OfficeSanDiego, domain.ProposalTypeService, domain.ServiceEnvironmental)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("SD-%d-0002-S-EV", year), number)
}

func TestProposalSequencesArePerOffice(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	_, err := env.numberSvc.GenerateProposalNumber(ctx, domain.OfficeSanDiego, domain.ProposalTypeProposal, domain.ServiceGeotechnical)
	require.NoError(t, err)
	_, err = env.numberSvc.GenerateProposalNumber(ctx, domain.OfficeSanDiego, domain.ProposalTypeProposal, domain.ServiceGeotechnical)
	require.NoError(t, err)

	// A different office starts from its own counter
	number, err := env.numberSvc.GenerateProposalNumber(ctx, domain.OfficeLosAngeles, domain.ProposalTypeProposal, domain.ServiceGeotechnical)
	require.NoError(t, err)
	assert.Contains(t, number, "-0001-")

	seq, err := env.numberSvc.GetCurrentSequence(ctx, "proposal:SD")
	require.NoError(t, err)
	assert.Equal(t, 2, seq)
}

func TestGenerateProposalNumberValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	_, err := env.numberSvc.GenerateProposalNumber(ctx, domain.OfficeCode("XX"), domain.ProposalTypeProposal, domain.ServiceGeotechnical)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = env.numberSvc.GenerateProposalNumber(ctx, domain.OfficeSanDiego, domain.ProposalType("Z"), domain.ServiceGeotechnical)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	_, err = env.numberSvc.GenerateProposalNumber(ctx, domain.OfficeSanDiego, domain.ProposalTypeProposal, domain.ServiceType("ZZ"))
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestGenerateProjectNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	number, err := env.numberSvc.GenerateProjectNumber(ctx, "02")
	require.NoError(t, err)
	assert.Equal(t, "G-000001-02-01", number)

	// Global counter is shared regardless of team
	number, err = env.numberSvc.GenerateProjectNumber(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "G-000002-00-01", number)
}

func TestInitializeSequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	require.NoError(t, env.numberSvc.InitializeSequence(ctx, "project:global", 1204))

	number, err := env.numberSvc.GenerateProjectNumber(ctx, "02")
	require.NoError(t, err)
	assert.Equal(t, "G-001205-02-01", number)

	seq, err := env.numberSvc.GetCurrentSequence(ctx, "project:global")
	require.NoError(t, err)
	assert.Equal(t, 1205, seq)
}
