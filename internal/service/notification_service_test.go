package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/auth"
	"github.com/geocon-eng/pipeline-api/internal/domain"
	"github.com/geocon-eng/pipeline-api/internal/service"
)

func TestUnreadCountAndMarkRead(t *testing.T) {
	env := newTestEnv(t)
	svc := service.NewNotificationService(env.notificationRepo, zap.NewNop())

	ctx := pmCtx()
	userCtx, _ := auth.FromContext(ctx)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateForUser(ctx, userCtx.UserID, domain.NotificationLegalUpdate,
			"Legal status updated", "Project G-000001-02-01 moved on.", "project", "G-000001-02-01")
		require.NoError(t, err)
	}

	count, err := svc.GetUnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count.Count)

	require.NoError(t, svc.MarkAllAsReadForUser(ctx))

	count, err = svc.GetUnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count.Count)
}
