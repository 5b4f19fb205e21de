package worker

import (
	"finder/internal/config"
	"time"
)

// Options configure the recheck queue.
type Options struct {
	// MaxWorkers is the number of recheck jobs run concurrently.
	MaxWorkers int
	// MaxAttempts is the number of times a failing job is run before it is discarded.
	MaxAttempts int
	// UniquePeriod is the window during which a second job for the same business is skipped.
	UniquePeriod time.Duration
	// StaleAfter is the age after which a website check is due again.
	StaleAfter time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxWorkers:   cfg.Worker.MaxWorkers,
		MaxAttempts:  cfg.Worker.MaxAttempts,
		UniquePeriod: cfg.Worker.UniquePeriod,
		StaleAfter:   cfg.Worker.StaleAfter,
	}
}
