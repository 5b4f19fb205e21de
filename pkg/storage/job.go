package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage enqueues background jobs, such as website rechecks, into the
// queue backing the storage.
type JobStorage interface {
	// AddJob enqueues a job and reports whether it was inserted, false meaning
	// an equal unique job was already queued. It is atomic with respect to a
	// surrounding transaction when the backend supports it.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
