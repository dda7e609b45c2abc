package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	specUploadSweep = "0 */15 * * * *"
	specTokenPurge  = "0 0 * * * *"
)

type UploadSweepTask interface {
	SweepStagedUploads()
}

type TokenPurgeTask interface {
	PurgeExpiredTokens()
}

type Deps struct {
	UploadSweepJob UploadSweepTask
	TokenPurgeJob  TokenPurgeTask
}

// NewScheduler registers the portal's periodic maintenance jobs: removing
// staged uploads orphaned by crashed requests, and purging spent password
// reset tokens.
func NewScheduler(deps Deps, logger *zap.Logger) *cron.Cron {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC))

	if deps.UploadSweepJob != nil {
		addFunc(c, specUploadSweep, "storage.sweep_staged", logger, deps.UploadSweepJob.SweepStagedUploads)
	}
	if deps.TokenPurgeJob != nil {
		addFunc(c, specTokenPurge, "auth.purge_reset_tokens", logger, deps.TokenPurgeJob.PurgeExpiredTokens)
	}

	return c
}

func addFunc(c *cron.Cron, spec string, name string, logger *zap.Logger, fn func()) {
	if c == nil || fn == nil {
		return
	}

	if _, err := c.AddFunc(spec, func() {
		defer recoverJobPanic(name, logger)
		start := time.Now()
		fn()
		logger.Debug("scheduler job finished", zap.String("job", name), zap.Duration("cost", time.Since(start)))
	}); err != nil {
		logger.Error("register scheduler job failed",
			zap.String("job", name),
			zap.String("spec", spec),
			zap.Error(err),
		)
	}
}

func recoverJobPanic(name string, logger *zap.Logger) {
	if r := recover(); r != nil {
		logger.Error("scheduler job panicked", zap.String("job", name), zap.Any("panic", r))
	}
}
