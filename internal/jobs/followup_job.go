package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/geocon-eng/pipeline-api/internal/domain"
)

// FollowUpJobName is the name of the proposal follow-up reminder job
const FollowUpJobName = "proposal_followup"

// DefaultFollowUpTimeout bounds a single run of the reminder job
const DefaultFollowUpTimeout = 5 * time.Minute

// ProposalLister loads proposals that are still pending after being sent.
// This interface allows the job to call the repository without importing it directly.
type ProposalLister interface {
	ListSentPendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Proposal, error)
}

// FollowUpNotifier sends follow-up reminders to project managers.
type FollowUpNotifier interface {
	NotifyFollowUpReminder(ctx context.Context, proposal *domain.Proposal)
}

// FollowUpJob reminds project managers about proposals that were sent to a
// client but have received no decision after the configured number of days.
type FollowUpJob struct {
	proposals ProposalLister
	notifier  FollowUpNotifier
	afterDays int
	logger    *zap.Logger
	timeout   time.Duration
}

// NewFollowUpJob creates a new follow-up reminder job.
func NewFollowUpJob(proposals ProposalLister, notifier FollowUpNotifier, afterDays int, logger *zap.Logger, timeout time.Duration) *FollowUpJob {
	return &FollowUpJob{
		proposals: proposals,
		notifier:  notifier,
		afterDays: afterDays,
		logger:    logger,
		timeout:   timeout,
	}
}

// Run executes the follow-up reminder job.
// This is called by the scheduler according to the cron expression.
func (j *FollowUpJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	cutoff := time.Now().AddDate(0, 0, -j.afterDays)

	stale, err := j.proposals.ListSentPendingBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("follow-up job failed to list proposals",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	for i := range stale {
		j.notifier.NotifyFollowUpReminder(ctx, &stale[i])
	}

	j.logger.Info("follow-up reminder job completed",
		zap.Int("reminders_sent", len(stale)),
		zap.Int("after_days", j.afterDays),
		zap.Duration("duration", time.Since(start)))
}

// RegisterFollowUpJob registers the follow-up reminder job with the scheduler.
// The cronExpr should be a valid cron expression (e.g., "0 0 8 * * *" for
// 08:00 every day).
func RegisterFollowUpJob(scheduler *Scheduler, proposals ProposalLister, notifier FollowUpNotifier, afterDays int, logger *zap.Logger, cronExpr string) error {
	job := NewFollowUpJob(proposals, notifier, afterDays, logger, DefaultFollowUpTimeout)
	return scheduler.AddJob(FollowUpJobName, cronExpr, job.Run)
}
