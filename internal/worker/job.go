package worker

import (
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// CheckWebsiteArgs contains the arguments of a website recheck job.
// Jobs are unique per place ID so that a business is never probed twice at once.
type CheckWebsiteArgs struct {
	// PlaceID identifies the business whose check is replaced.
	PlaceID string `json:"placeId" river:"unique"`
	// URL is the normalized website to probe.
	URL string `json:"url"`

	// maxAttempts configures the maximum number of times River should retry the job.
	maxAttempts int
	// uniquePeriod is the window during which a job for the same place is a duplicate.
	uniquePeriod time.Duration
}

// NewCheckWebsiteArgs builds the arguments of a recheck job using the
// retry and uniqueness settings of options.
func NewCheckWebsiteArgs(placeID, url string, options Options) CheckWebsiteArgs {
	return CheckWebsiteArgs{
		PlaceID:      placeID,
		URL:          url,
		maxAttempts:  options.MaxAttempts,
		uniquePeriod: options.UniquePeriod,
	}
}

// Kind returns the River job kind used to register and dispatch the recheck worker.
func (args CheckWebsiteArgs) Kind() string { return "CheckWebsiteJob" }

// InsertOpts returns the River options that control how the job is enqueued.
func (args CheckWebsiteArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		// one job per business in any non-final state, and no recheck of a
		// business completed within the period
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: args.uniquePeriod,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStateCompleted,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
