package worker

import (
	"context"
	"finder/internal/checker"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"finder/pkg/serrors"
	"finder/pkg/storage"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Scheduler selects businesses due for a recheck and enqueues their jobs.
type Scheduler struct {
	options Options
	storage storage.Storage
	skip    checker.DomainClassifier
	now     func() time.Time
}

// NewScheduler creates a Scheduler. Websites on the platform domains of skip
// are never enqueued.
func NewScheduler(store storage.Storage, skip checker.DomainClassifier, options Options) *Scheduler {
	return &Scheduler{options: options, storage: store, skip: skip, now: time.Now}
}

// Enqueue adds a recheck job for the stored business placeID. It reports
// false when a job for the business is already queued or completed within
// the unique period.
func (s *Scheduler) Enqueue(ctx context.Context, placeID string) (bool, error) {
	b, err := s.storage.BusinessByPlaceID(ctx, placeID)
	if err != nil {
		return false, fmt.Errorf("could not get business: %w", err)
	}
	if b == nil {
		return false, serrors.With(serrors.ErrNotFound, "business %q not found", placeID)
	}

	u := checker.NormalizeURL(b.Website)
	if u == "" {
		return false, serrors.With(serrors.ErrBadRequest, "business %q has no website", placeID)
	}
	if s.skip.IsSkipped(u) {
		return false, serrors.With(serrors.ErrBadRequest, "website %q of business %q is not checked", u, placeID)
	}

	added, err := s.storage.AddJob(ctx, NewCheckWebsiteArgs(placeID, u, s.options), nil)
	if err != nil {
		return false, fmt.Errorf("could not add job: %w", err)
	}

	return added, nil
}

// Selection describes which businesses EnqueueDue considers.
type Selection struct {
	// Statuses also selects businesses whose last check has one of them,
	// however recent it is.
	Statuses []domain.Status
	// Limit caps the number of businesses of each selection, zero means no cap.
	Limit uint
}

// EnqueueResult counts the outcome of EnqueueDue.
type EnqueueResult struct {
	Selected   int `json:"selected"`
	Enqueued   int `json:"enqueued"`
	Duplicates int `json:"duplicates"`
	Skipped    int `json:"skipped"`
}

// EnqueueDue enqueues a recheck of every business never checked or checked
// longer than StaleAfter ago, plus the businesses selected by sel. All jobs
// are inserted in one transaction.
func (s *Scheduler) EnqueueDue(ctx context.Context, sel Selection) (EnqueueResult, error) {
	var res EnqueueResult

	err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		res = EnqueueResult{}

		due, err := tx.Businesses(ctx, storage.BusinessQuery{
			CheckedBefore: s.now().Add(-s.options.StaleAfter),
			Limit:         sel.Limit,
		})
		if err != nil {
			return fmt.Errorf("could not select stale businesses: %w", err)
		}
		if len(sel.Statuses) > 0 {
			byStatus, err := tx.Businesses(ctx, storage.BusinessQuery{
				WithWebsite: true,
				Statuses:    sel.Statuses,
				Limit:       sel.Limit,
			})
			if err != nil {
				return fmt.Errorf("could not select businesses by status: %w", err)
			}
			due = append(due, byStatus...)
		}

		seen := make(map[string]struct{}, len(due))
		for _, b := range due {
			if _, ok := seen[b.PlaceID]; ok {
				continue
			}
			seen[b.PlaceID] = struct{}{}
			res.Selected++

			u := checker.NormalizeURL(b.Website)
			if u == "" || s.skip.IsSkipped(u) {
				res.Skipped++

				continue
			}

			added, err := tx.AddJob(ctx, NewCheckWebsiteArgs(b.PlaceID, u, s.options), nil)
			if err != nil {
				return fmt.Errorf("could not add job: %w", err)
			}
			if added {
				res.Enqueued++
			} else {
				res.Duplicates++
			}
		}

		return nil
	})
	if err != nil {
		return EnqueueResult{}, err //nolint: wrapcheck
	}

	logger.Info(ctx, "enqueued website rechecks",
		zap.Int("selected", res.Selected),
		zap.Int("enqueued", res.Enqueued),
		zap.Int("duplicates", res.Duplicates),
		zap.Int("skipped", res.Skipped))

	return res, nil
}
