package jobs

import (
	"time"

	"go.uber.org/zap"

	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/metrics"
	"github.com/Soufiane-Tahiri/faculty-management-portal/internal/storage"
)

// stagedUploadMaxAge gives in-flight requests ample time to promote or
// discard their staged file before the sweep considers it orphaned.
const stagedUploadMaxAge = time.Hour

type UploadSweepJob struct {
	files  *storage.LocalStore
	logger *zap.Logger
}

func NewUploadSweepJob(files *storage.LocalStore, logger *zap.Logger) *UploadSweepJob {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &UploadSweepJob{
		files:  files,
		logger: logger,
	}
}

// SweepStagedUploads removes staging leftovers from requests that crashed
// between writing the file and committing (or rolling back) their
// transaction.
func (j *UploadSweepJob) SweepStagedUploads() {
	removed, err := j.files.SweepStaged(stagedUploadMaxAge)
	if err != nil {
		j.logger.Error("sweep staged uploads failed", zap.Error(err))
		return
	}
	if removed > 0 {
		metrics.StagedUploadsSwept.Add(float64(removed))
		j.logger.Info("swept orphaned staged uploads", zap.Int("removed", removed))
	}
}
