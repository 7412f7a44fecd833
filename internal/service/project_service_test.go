package service_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

// winProject creates a proposal and wins it, returning the project.
func winProject(t *testing.T, env *testEnv, fee float64, needsLegal bool) *domain.ProjectDTO {
	t.Helper()
	dto := env.createProposal(t, pmCtx(), fee, needsLegal)
	project, err := env.proposalSvc.MarkWon(pmCtx(), dto.ID, &domain.MarkWonRequest{})
	require.NoError(t, err)
	return project
}

func TestLegalStatusProgression(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()
	project := winProject(t, env, 50000, true)

	// Non-terminal statuses only move the queue position
	for _, status := range []domain.LegalStatus{
		domain.LegalStatusUnderReview,
		domain.LegalStatusQuestionsToPM,
		domain.LegalStatusEditsToClient,
		domain.LegalStatusNegotiating,
		domain.LegalStatusOnHold,
	} {
		updated, err := env.projectSvc.UpdateLegalStatus(ctx, project.ID, &domain.UpdateLegalStatusRequest{Status: status})
		require.NoError(t, err)
		assert.Equal(t, domain.ProjectStatusPendingLegal, updated.Status)
		require.NotNil(t, updated.LegalStatus)
		assert.Equal(t, status, *updated.LegalStatus)
		assert.Nil(t, updated.LegalSigned)
	}

	// Full trail: new_request seeded at win plus the five moves
	events, err := env.projectSvc.GetLegalHistory(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, events, 6)
}

func TestLegalStatusSigned(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()
	project := winProject(t, env, 50000, true)

	updated, err := env.projectSvc.UpdateLegalStatus(ctx, project.ID, &domain.UpdateLegalStatusRequest{
		Status: domain.LegalStatusSigned,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProjectStatusPendingInfo, updated.Status)
	require.NotNil(t, updated.LegalSigned)
	assert.True(t, *updated.LegalSigned)
	require.NotNil(t, updated.LegalApprovedDate)
	assert.Equal(t, "Alex Admin", updated.LegalApprovedBy)

	// Review is resolved; further legal updates are rejected
	_, err = env.projectSvc.UpdateLegalStatus(ctx, project.ID, &domain.UpdateLegalStatusRequest{
		Status: domain.LegalStatusUnderReview,
	})
	assert.ErrorIs(t, err, service.ErrProjectNotInLegal)
}

func TestLegalStatusNotSigned(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()
	project := winProject(t, env, 50000, true)

	_, err := env.projectSvc.UpdateLegalStatus(ctx, project.ID, &domain.UpdateLegalStatusRequest{
		Status: domain.LegalStatusNotSigned,
	})
	assert.ErrorIs(t, err, service.ErrNotSignedReasonMissing)

	updated, err := env.projectSvc.UpdateLegalStatus(ctx, project.ID, &domain.UpdateLegalStatusRequest{
		Status:          domain.LegalStatusNotSigned,
		NotSignedReason: "Client walked away from indemnification terms",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ProjectStatusDead, updated.Status)
	require.NotNil(t, updated.LegalSigned)
	assert.False(t, *updated.LegalSigned)
	assert.Equal(t, "Client walked away from indemnification terms", updated.NotSignedReason)
}

func TestLegalQueueExcludesResolvedReviews(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	open := winProject(t, env, 10000, true)
	reviewing := winProject(t, env, 20000, true)
	signed := winProject(t, env, 30000, true)

	_, err := env.projectSvc.UpdateLegalStatus(ctx, reviewing.ID, &domain.UpdateLegalStatusRequest{Status: domain.LegalStatusUnderReview})
	require.NoError(t, err)
	_, err = env.projectSvc.UpdateLegalStatus(ctx, signed.ID, &domain.UpdateLegalStatusRequest{Status: domain.LegalStatusSigned})
	require.NoError(t, err)

	queue, err := env.projectSvc.GetLegalQueue(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, queue.OpenCount)
	assert.Len(t, queue.Projects, 2)
	assert.Equal(t, 1, queue.StatusCounts[domain.LegalStatusNewRequest])
	assert.Equal(t, 1, queue.StatusCounts[domain.LegalStatusUnderReview])
	assert.Zero(t, queue.StatusCounts[domain.LegalStatusSigned])

	numbers := []string{queue.Projects[0].ProjectNumber, queue.Projects[1].ProjectNumber}
	assert.Contains(t, numbers, open.ProjectNumber)
	assert.Contains(t, numbers, reviewing.ProjectNumber)
}

func TestSubmitAdditionalInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()
	project := winProject(t, env, 8000, false)

	info := map[string]interface{}{"billingContact": "ap@pacificbuilders.com", "retainer": true}

	// Draft save keeps the project pending
	draft, err := env.projectSvc.SubmitAdditionalInfo(ctx, project.ID, &domain.SubmitProjectInfoRequest{
		Action:    "save_draft",
		AdminInfo: info,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusPendingInfo, draft.Status)
	require.NotNil(t, draft.InfoDraftSavedAt)
	assert.Nil(t, draft.InfoSubmittedAt)

	// Submit finalizes the project
	completed, err := env.projectSvc.SubmitAdditionalInfo(ctx, project.ID, &domain.SubmitProjectInfoRequest{
		Action:    "submit",
		AdminInfo: info,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusCompleted, completed.Status)
	require.NotNil(t, completed.InfoSubmittedAt)
	assert.Equal(t, "Dana Reyes", completed.InfoSubmittedBy)
	require.NotNil(t, completed.CompletionDate)
	assert.Equal(t, "Dana Reyes", completed.CompletedBy)
	assert.Contains(t, completed.AdminInfo, "billingContact")

	// Completion lands in the current month's rollup
	month := time.Now().Format("2006-01")
	monthly, err := env.analyticsSvc.GetMonthly(ctx, month)
	require.NoError(t, err)
	assert.Equal(t, 1, monthly.Completed)

	// Completed projects cannot take the form again
	_, err = env.projectSvc.SubmitAdditionalInfo(ctx, project.ID, &domain.SubmitProjectInfoRequest{
		Action:    "submit",
		AdminInfo: info,
	})
	assert.ErrorIs(t, err, service.ErrProjectNotPendingInfo)
}

func TestSubmitInfoRejectedWhileInLegal(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()
	project := winProject(t, env, 50000, true)

	_, err := env.projectSvc.SubmitAdditionalInfo(ctx, project.ID, &domain.SubmitProjectInfoRequest{
		Action:    "submit",
		AdminInfo: map[string]interface{}{},
	})
	assert.ErrorIs(t, err, service.ErrProjectNotPendingInfo)
}

func TestMarkCompleteOverride(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()
	project := winProject(t, env, 8000, false)

	// Direct completion without the setup form
	completed, err := env.projectSvc.MarkComplete(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletionDate)
	assert.Equal(t, "Dana Reyes", completed.CompletedBy)

	// Terminal; a second completion is rejected
	_, err = env.projectSvc.MarkComplete(ctx, project.ID)
	assert.ErrorIs(t, err, service.ErrProjectNotActive)
}

func TestMarkCompleteRejectedWhileInLegal(t *testing.T) {
	env := newTestEnv(t)
	ctx := pmCtx()
	project := winProject(t, env, 50000, true)

	_, err := env.projectSvc.MarkComplete(ctx, project.ID)
	assert.ErrorIs(t, err, service.ErrProjectNotActive)
}

func TestDeleteProjectRevertsProposal(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	dto := env.createProposal(t, ctx, 50000, true)
	project, err := env.proposalSvc.MarkWon(ctx, dto.ID, &domain.MarkWonRequest{})
	require.NoError(t, err)

	err = env.projectSvc.Delete(ctx, project.ID, &domain.DeleteRequest{Note: "entered by mistake"})
	require.NoError(t, err)

	// Project gone, legal history and compliance records cleaned up
	_, err = env.projectSvc.GetByID(ctx, project.ID)
	assert.ErrorIs(t, err, service.ErrProjectNotFound)
	events, err := env.legalRepo.GetByProjectID(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, events)

	// Proposal reverts to pending with the win cleared
	proposal, err := env.proposalSvc.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ProposalStatusPending, proposal.Status)
	assert.Empty(t, proposal.ProjectNumber)
	assert.Nil(t, proposal.WonDate)
	assert.Empty(t, proposal.WonBy)

	// The proposal can be decided again
	relisted, err := env.proposalSvc.MarkWon(ctx, dto.ID, &domain.MarkWonRequest{})
	require.NoError(t, err)
	assert.NotEqual(t, project.ProjectNumber, relisted.ProjectNumber, "counter never reuses numbers")
}

func TestDeleteProjectRemovesAttachedFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()
	project := winProject(t, env, 50000, false)

	contract, err := env.fileSvc.UploadToProject(ctx, project.ProjectNumber, "executed-contract.pdf", "application/pdf", strings.NewReader("signed agreement"))
	require.NoError(t, err)
	contractRow, err := env.fileRepo.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	_, err = env.fileSvc.UploadToProposal(ctx, project.ProposalNumber, "scope.pdf", "application/pdf", strings.NewReader("scope of work"))
	require.NoError(t, err)

	err = env.projectSvc.Delete(ctx, project.ID, &domain.DeleteRequest{Note: "duplicate win"})
	require.NoError(t, err)

	count, err := env.fileRepo.CountByEntity(ctx, "project", project.ProjectNumber)
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = env.fileStorage.Download(ctx, contractRow.StoragePath)
	assert.Error(t, err)

	// Files attached to the proposal itself are untouched
	proposalCount, err := env.fileRepo.CountByEntity(ctx, "proposal", project.ProposalNumber)
	require.NoError(t, err)
	assert.Equal(t, int64(1), proposalCount)
}
