package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geocon-eng/pipeline-api/internal/config"
	"github.com/geocon-eng/pipeline-api/internal/domain"
)

func TestPMEmailDerivation(t *testing.T) {
	cfg := config.NotifyConfig{EmailDomain: "geoconinc.com"}
	assert.Equal(t, "dana.reyes@geoconinc.com", cfg.PMEmail("Dana Reyes"))
	assert.Equal(t, "chris.moss@geoconinc.com", cfg.PMEmail("  Chris Moss  "))
}

func TestNotifyLegalRequestWritesEmailLog(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	project := &domain.Project{
		ProjectNumber:  "G-000001-02-01",
		ClientName:     "Pacific Builders",
		ProjectManager: "Dana Reyes",
	}
	env.notifier.NotifyLegalRequest(ctx, project, "Alex Admin")

	// One email to the department inbox plus one per team member
	emails, total, err := env.emailLogRepo.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	recipients := []string{emails[0].Recipient, emails[1].Recipient}
	assert.Contains(t, recipients, "legal@geoconinc.com")
	assert.Contains(t, recipients, "counsel@geoconinc.com")
	assert.Equal(t, "G-000001-02-01", emails[0].RelatedNumber)
	assert.Equal(t, "legal_request", emails[0].EmailType)
}

func TestInAppNotificationOnlyForKnownUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	// The PM has no account yet; only the email log row should appear
	project := &domain.Project{
		ProjectNumber:  "G-000001-02-01",
		ProposalNumber: "SD-2026-0001-P-GT",
		ProjectManager: "Dana Reyes",
	}
	env.notifier.NotifyProjectCreated(ctx, project, "Alex Admin")

	_, total, err := env.emailLogRepo.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// Register the PM and notify again
	pm := &domain.User{
		Email:       "dana.reyes@geoconinc.com",
		DisplayName: "Dana Reyes",
		Role:        domain.RoleProjectManager,
		IsActive:    true,
	}
	require.NoError(t, env.userRepo.Create(ctx, pm))

	env.notifier.NotifyProjectCreated(ctx, project, "Alex Admin")

	notifications, count, err := env.notificationRepo.ListByUser(ctx, pm.ID, 1, 10, false, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, string(domain.NotificationProjectCreated), notifications[0].Type)
	assert.Equal(t, "G-000001-02-01", notifications[0].EntityNumber)
	assert.False(t, notifications[0].Read)

	unread, err := env.notificationRepo.CountUnread(ctx, pm.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}

func TestEmailLogTrimmedToCap(t *testing.T) {
	env := newTestEnv(t)
	ctx := adminCtx()

	proposal := &domain.Proposal{
		ProposalNumber: "SD-2026-0001-P-GT",
		ClientName:     "Pacific Builders",
		ProjectManager: "Dana Reyes",
	}
	for i := 0; i < 105; i++ {
		env.notifier.NotifyFollowUpReminder(ctx, proposal)
	}

	_, total, err := env.emailLogRepo.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(100), total)
}
