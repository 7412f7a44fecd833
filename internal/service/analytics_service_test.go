package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocon-eng/pipeline-api/internal/domain"
)

func TestUpdateAnalyticsIncrementsCurrentMonth(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()
	month := time.Now().Format("2006-01")

	payload := domain.AnalyticsUpdatePayload{
		Office:         domain.OfficeSanDiego,
		ProjectManager: "Dana Reyes",
		Fee:            25000,
	}

	require.NoError(t, env.analyticsSvc.UpdateAnalytics(ctx, domain.AnalyticsNewProposal, payload))
	require.NoError(t, env.analyticsSvc.UpdateAnalytics(ctx, domain.AnalyticsNewProposal, payload))
	require.NoError(t, env.analyticsSvc.UpdateAnalytics(ctx, domain.AnalyticsProposalWon, payload))
	require.NoError(t, env.analyticsSvc.UpdateAnalytics(ctx, domain.AnalyticsProjectCompleted, payload))

	monthly, err := env.analyticsSvc.GetMonthly(ctx, month)
	require.NoError(t, err)
	assert.Equal(t, 2, monthly.Proposals)
	assert.Equal(t, 1, monthly.Wins)
	assert.Equal(t, 25000.0, monthly.Revenue)
	assert.Equal(t, 1, monthly.Completed)
}

func TestGetMonthlyMissingMonthIsZero(t *testing.T) {
	env := newTestEnv(t)

	monthly, err := env.analyticsSvc.GetMonthly(adminCtx(), "1999-01")
	require.NoError(t, err)
	assert.Equal(t, "1999-01", monthly.Month)
	assert.Zero(t, monthly.Proposals)
	assert.Zero(t, monthly.Wins)
}

func TestGetAnalyticsReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	// Two wins, one loss, one still pending
	wonSmall := env.createProposal(t, ctx, 8000, false)
	wonLarge := env.createProposal(t, ctx, 250000, true)
	lost := env.createProposal(t, ctx, 40000, false)
	env.createProposal(t, ctx, 75000, false)

	_, err := env.proposalSvc.MarkWon(ctx, wonSmall.ID, &domain.MarkWonRequest{})
	require.NoError(t, err)
	_, err = env.proposalSvc.MarkWon(ctx, wonLarge.ID, &domain.MarkWonRequest{})
	require.NoError(t, err)
	_, err = env.proposalSvc.MarkLost(ctx, lost.ID, &domain.MarkLostRequest{Reason: "Underbid by competitor"})
	require.NoError(t, err)

	report, err := env.analyticsSvc.GetAnalytics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalProposals)
	assert.Equal(t, 2, report.TotalWon)
	assert.Equal(t, 1, report.TotalLost)
	assert.Equal(t, 1, report.TotalPending)
	assert.Equal(t, 258000.0, report.TotalRevenue)

	// 2 of 3 decided, rounded to one decimal
	assert.Equal(t, 66.7, report.WinRate)

	assert.Equal(t, 258000.0, report.RevenueByOffice[domain.OfficeSanDiego])

	// All five buckets present even when empty
	require.Len(t, report.FeeRanges, 5)
	assert.Equal(t, domain.FeeRangeDTO{All: 1, Won: 1}, report.FeeRanges["under_10k"])
	assert.Equal(t, domain.FeeRangeDTO{All: 1, Won: 0}, report.FeeRanges["10k_50k"])
	assert.Equal(t, domain.FeeRangeDTO{All: 1, Won: 0}, report.FeeRanges["50k_100k"])
	assert.Equal(t, domain.FeeRangeDTO{All: 1, Won: 1}, report.FeeRanges["100k_500k"])
	assert.Equal(t, domain.FeeRangeDTO{}, report.FeeRanges["over_500k"])

	pm := report.PMPerformance["Dana Reyes"]
	assert.Equal(t, 4, pm.Total)
	assert.Equal(t, 2, pm.Won)
	assert.Equal(t, 258000.0, pm.Revenue)

	client := report.ClientPerformance["Pacific Builders"]
	assert.Equal(t, 4, client.Total)
	assert.Equal(t, 93250.0, client.AvgFee)
	assert.Equal(t, 50.0, client.WinRate)

	// One project still in legal review
	assert.Equal(t, 1, report.LegalQueue[domain.LegalStatusNewRequest])
}

func TestLegalQueueExcludedFromReportOnceResolved(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	dto := env.createProposal(t, ctx, 50000, true)
	project, err := env.proposalSvc.MarkWon(ctx, dto.ID, &domain.MarkWonRequest{})
	require.NoError(t, err)

	_, err = env.projectSvc.UpdateLegalStatus(ctx, project.ID, &domain.UpdateLegalStatusRequest{
		Status: domain.LegalStatusSigned,
	})
	require.NoError(t, err)

	report, err := env.analyticsSvc.GetAnalytics(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.LegalQueue)
}
