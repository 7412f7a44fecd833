package service_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

func TestCreateProposal(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()

	dto := env.createProposal(t, ctx, 50000, true)

	expected := fmt.Sprintf("SD-%d-0001-P-GT", time.Now().Year())
	assert.Equal(t, expected, dto.ProposalNumber)
	assert.Equal(t, domain.ProposalStatusPending, dto.Status)
	assert.Equal(t, "dana.reyes@geoconinc.com", dto.CreatedBy)
	assert.True(t, dto.CanEdit, "creator should be able to edit")

	second := env.createProposal(t, ctx, 1000, false)
	assert.Equal(t, fmt.Sprintf("SD-%d-0002-P-GT", time.Now().Year()), second.ProposalNumber)
}

func TestCreateProposalRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()

	_, err := env.proposalSvc.Create(ctx, &domain.CreateProposalRequest{
		Office:       domain.OfficeCode("XX"),
		ProposalType: domain.ProposalTypeProposal,
		ServiceType:  domain.ServiceGeotechnical,
		ProjectName:  "Test",
		ClientName:   "Client",
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	_, err = env.proposalSvc.Create(ctx, &domain.CreateProposalRequest{
		Office:       domain.OfficeSanDiego,
		ProposalType: domain.ProposalTypeProposal,
		ServiceType:  domain.ServiceGeotechnical,
		ProjectName:  "Test",
		ClientName:   "Client",
		Fee:          -5,
	})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestUpdateProposalPermissions(t *testing.T) {
	env := newTestEnv(t)
	dto := env.createProposal(t, pmCtx(), 20000, false)

	name := "Renamed Project"

	// Unrelated standard user cannot edit
	stranger := ctxWithUser(domain.RoleStandard, "Sam Visitor", "sam.visitor@geoconinc.com")
	_, err := env.proposalSvc.Update(stranger, dto.ID, &domain.UpdateProposalRequest{ProjectName: &name})
	assert.ErrorIs(t, err, service.ErrProposalEditForbidden)

	// Admin can
	updated, err := env.proposalSvc.Update(adminCtx(), dto.ID, &domain.UpdateProposalRequest{ProjectName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Project", updated.ProjectName)

	// PM named on the proposal can
	fee := 25000.0
	updated, err = env.proposalSvc.Update(pmCtx(), dto.ID, &domain.UpdateProposalRequest{Fee: &fee})
	require.NoError(t, err)
	assert.Equal(t, 25000.0, updated.Fee)
}

func TestMarkSentLogsClientEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()

	dto, err := env.proposalSvc.Create(ctx, &domain.CreateProposalRequest{
		Office:         domain.OfficeSanDiego,
		ProposalType:   domain.ProposalTypeProposal,
		ServiceType:    domain.ServiceGeotechnical,
		ProjectName:    "Harbor Terminal Expansion",
		ClientName:     "Pacific Builders",
		ContactEmail:   "estimating@pacificbuilders.com",
		Fee:            20000,
		ProjectManager: "Dana Reyes",
	})
	require.NoError(t, err)

	_, err = env.proposalSvc.MarkSent(ctx, dto.ID)
	require.NoError(t, err)

	logs, err := env.emailLogRepo.ListByRelatedNumber(ctx, dto.ProposalNumber, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "proposal_sent", logs[0].EmailType)
	assert.Equal(t, "estimating@pacificbuilders.com", logs[0].Recipient)
	assert.Equal(t, "Proposal: Harbor Terminal Expansion", logs[0].Subject)
	assert.Equal(t, "Dana Reyes", logs[0].SentBy)
}

func TestMarkSentOverwritesPreviousSend(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()
	dto := env.createProposal(t, ctx, 20000, false)

	sent, err := env.proposalSvc.MarkSent(ctx, dto.ID)
	require.NoError(t, err)
	assert.True(t, sent.ProposalSent)
	require.NotNil(t, sent.ProposalSentDate)
	assert.Equal(t, "Dana Reyes", sent.ProposalSentBy)

	// Re-sending stamps the latest sender; the latest send wins
	resent, err := env.proposalSvc.MarkSent(adminCtx(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alex Admin", resent.ProposalSentBy)
	require.NotNil(t, resent.ProposalSentDate)
}

func TestMarkLost(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()
	dto := env.createProposal(t, ctx, 20000, false)

	_, err := env.proposalSvc.MarkLost(ctx, dto.ID, &domain.MarkLostRequest{})
	assert.ErrorIs(t, err, service.ErrInvalidInput, "lost reason is required")

	lost, err := env.proposalSvc.MarkLost(ctx, dto.ID, &domain.MarkLostRequest{Reason: "Went with competitor"})
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusLost, lost.Status)
	assert.Equal(t, "Went with competitor", lost.LostReason)
	require.NotNil(t, lost.LostDate)

	_, err = env.proposalSvc.MarkLost(ctx, dto.ID, &domain.MarkLostRequest{Reason: "again"})
	assert.ErrorIs(t, err, service.ErrProposalAlreadyLost)

	_, err = env.proposalSvc.MarkSent(ctx, dto.ID)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestMarkWonWithLegalReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()
	dto := env.createProposal(t, ctx, 50000, true)

	project, err := env.proposalSvc.MarkWon(ctx, dto.ID, &domain.MarkWonRequest{})
	require.NoError(t, err)

	// Global counter, team 02 from the PM's director assignment
	assert.Equal(t, "G-000001-02-01", project.ProjectNumber)
	assert.Equal(t, domain.ProjectStatusPendingLegal, project.Status)
	require.NotNil(t, project.LegalStatus)
	assert.Equal(t, domain.LegalStatusNewRequest, *project.LegalStatus)
	assert.Equal(t, dto.ProposalNumber, project.ProposalNumber)

	// Proposal is converted and back-references the project
	proposal, err := env.proposalSvc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusConverted, proposal.Status)
	assert.Equal(t, project.ProjectNumber, proposal.ProjectNumber)
	require.NotNil(t, proposal.WonDate)

	// Legal history seeded with the initial new_request event
	events, err := env.projectSvc.GetLegalHistory(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.LegalStatusNewRequest, events[0].Status)

	// No contract record yet; the contract is still in legal review
	_, err = env.contractRepo.GetByProjectNumber(ctx, project.ProjectNumber)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestMarkWonWithoutLegalReview(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()
	dto := env.createProposal(t, ctx, 8000, false)

	project, err := env.proposalSvc.MarkWon(ctx, dto.ID, &domain.MarkWonRequest{})
	require.NoError(t, err)

	assert.Equal(t, domain.ProjectStatusPendingInfo, project.Status)
	assert.Nil(t, project.LegalStatus)
	require.NotNil(t, project.LegalSigned)
	assert.True(t, *project.LegalSigned)
	assert.Equal(t, service.AutoApprovedBy, project.LegalApprovedBy)

	// Skipping review means the contract is executed; record filed at once
	contract, err := env.contractRepo.GetByProjectNumber(ctx, project.ProjectNumber)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractUnfiled, contract.DeptStatus)
	assert.True(t, contract.AutoGenerated)
}

func TestMarkWonOverrides(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()
	dto := env.createProposal(t, ctx, 30000, false)

	needsLegal := true
	coi := true
	project, err := env.proposalSvc.MarkWon(ctx, dto.ID, &domain.MarkWonRequest{
		ProjectManager:   "Chris Moss",
		NeedsLegalReview: &needsLegal,
		COINeeded:        &coi,
	})
	require.NoError(t, err)

	assert.Equal(t, "Chris Moss", project.ProjectManager)
	assert.Equal(t, domain.ProjectStatusPendingLegal, project.Status)
	// Chris Moss has no team assignment, so the team defaults to 00
	assert.Equal(t, "G-000001-00-01", project.ProjectNumber)
	assert.True(t, project.COINeeded)

	// COI request auto-created at win time
	requests, err := env.insuranceRepo.GetByProjectNumber(ctx, project.ProjectNumber)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, domain.InsuranceNewRequest, requests[0].DeptStatus)
}

func TestMarkWonRejectsDecidedProposals(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	lostDto := env.createProposal(t, ctx, 1000, false)
	_, err := env.proposalSvc.MarkLost(ctx, lostDto.ID, &domain.MarkLostRequest{Reason: "budget cut"})
	require.NoError(t, err)
	_, err = env.proposalSvc.MarkWon(ctx, lostDto.ID, &domain.MarkWonRequest{})
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	wonDto := env.createProposal(t, ctx, 1000, false)
	_, err = env.proposalSvc.MarkWon(ctx, wonDto.ID, &domain.MarkWonRequest{})
	require.NoError(t, err)
	_, err = env.proposalSvc.MarkWon(ctx, wonDto.ID, &domain.MarkWonRequest{})
	assert.ErrorIs(t, err, service.ErrProposalAlreadyConverted)
}

func TestDeleteProposalBlockedWhileProjectExists(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()
	dto := env.createProposal(t, ctx, 1000, false)

	_, err := env.proposalSvc.MarkWon(ctx, dto.ID, &domain.MarkWonRequest{})
	require.NoError(t, err)

	err = env.proposalSvc.Delete(ctx, dto.ID, &domain.DeleteRequest{Note: "cleanup"})
	assert.ErrorIs(t, err, service.ErrProjectExistsForProposal)
}

func TestDeleteProposalSnapshotsBeforeRemoval(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()
	dto := env.createProposal(t, ctx, 1000, false)

	err := env.proposalSvc.Delete(ctx, dto.ID, &domain.DeleteRequest{Note: "duplicate entry"})
	require.NoError(t, err)

	_, err = env.proposalSvc.GetByID(ctx, dto.ID)
	assert.ErrorIs(t, err, service.ErrProposalNotFound)

	logs, _, err := env.deletionLogRepo.List(ctx, "proposal", 1, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, dto.ProposalNumber, logs[0].EntityNumber)
	assert.Equal(t, "duplicate entry", logs[0].DeletionNote)
	assert.Contains(t, logs[0].Snapshot, dto.ProposalNumber)
}

func TestDeleteProposalRemovesAttachedFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()
	dto := env.createProposal(t, ctx, 1000, false)

	scope, err := env.fileSvc.UploadToProposal(ctx, dto.ProposalNumber, "scope.pdf", "application/pdf", strings.NewReader("scope of work"))
	require.NoError(t, err)
	_, err = env.fileSvc.UploadToProposal(ctx, dto.ProposalNumber, "fee-schedule.xlsx", "application/vnd.ms-excel", strings.NewReader("fees"))
	require.NoError(t, err)

	scopeRow, err := env.fileRepo.GetByID(ctx, scope.ID)
	require.NoError(t, err)

	err = env.proposalSvc.Delete(ctx, dto.ID, &domain.DeleteRequest{Note: "cleanup"})
	require.NoError(t, err)

	count, err := env.fileRepo.CountByEntity(ctx, "proposal", dto.ProposalNumber)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Blob is gone too, not just the row
	_, _, _, err = env.fileSvc.Download(ctx, scope.ID)
	assert.ErrorIs(t, err, service.ErrFileNotFound)
	_, err = env.fileStorage.Download(ctx, scopeRow.StoragePath)
	assert.Error(t, err)
}
