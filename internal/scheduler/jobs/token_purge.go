package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/repository"
)

const tokenPurgeTimeout = 30 * time.Second

type TokenPurgeJob struct {
	resetRepo repository.ResetTokenRepository
	logger    *zap.Logger
}

func NewTokenPurgeJob(resetRepo repository.ResetTokenRepository, logger *zap.Logger) *TokenPurgeJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TokenPurgeJob{
		resetRepo: resetRepo,
		logger:    logger,
	}
}

// PurgeExpiredTokens deletes used and expired password reset tokens.
func (j *TokenPurgeJob) PurgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), tokenPurgeTimeout)
	defer cancel()

	removed, err := j.resetRepo.PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		j.logger.Error("purge reset tokens failed", zap.Error(err))
		return
	}
	if removed > 0 {
		j.logger.Info("purged password reset tokens", zap.Int64("removed", removed))
	}
}
