package worker

import (
	"context"
	"errors"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"finder/pkg/serrors"
	"finder/pkg/storage"
	"fmt"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// Prober probes a single website.
type Prober interface {
	Check(ctx context.Context, rawURL string) (domain.CheckResult, error)
}

// CheckWebsiteWorker is a River worker that probes the website of one
// business and replaces its stored check. Probe failures are results, not
// errors, so a job only fails when the probe is interrupted or the result
// cannot be stored. Jobs for businesses that are no longer stored are canceled.
type CheckWebsiteWorker struct {
	river.WorkerDefaults[CheckWebsiteArgs]

	prober  Prober
	storage storage.BusinessStorage
}

// NewCheckWebsiteWorker constructs a CheckWebsiteWorker.
func NewCheckWebsiteWorker(prober Prober, storage storage.BusinessStorage) *CheckWebsiteWorker {
	return &CheckWebsiteWorker{prober: prober, storage: storage}
}

// Work executes a single recheck job.
func (w *CheckWebsiteWorker) Work(ctx context.Context, job *river.Job[CheckWebsiteArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.String("placeId", job.Args.PlaceID),
		zap.String("URL", job.Args.URL))

	res, err := w.prober.Check(ctx, job.Args.URL)
	if err != nil {
		logger.Error(ctx, "error in checking website", zap.Error(err))

		return fmt.Errorf("could not check website: %w", err)
	}

	if err := w.storage.UpdateWebsiteCheck(ctx, job.Args.PlaceID, res); err != nil {
		if errors.Is(err, serrors.ErrNotFound) {
			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error in storing website check", zap.Error(err))

		return fmt.Errorf("could not store website check: %w", err)
	}

	logger.Info(ctx, "website rechecked", zap.String("status", string(res.Status)))

	return nil
}
