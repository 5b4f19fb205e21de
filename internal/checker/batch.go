package checker

import (
	"context"
	"encoding/json"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Stats aggregates the results of one batch.
type Stats struct {
	TotalChecked int
	TotalDead    int
}

// DeadPercentage returns the share of dead results, in percent.
func (s Stats) DeadPercentage() float64 {
	if s.TotalChecked == 0 {
		return 0
	}

	return float64(s.TotalDead) / float64(s.TotalChecked) * 100
}

// MarshalJSON includes the derived dead percentage.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct { //nolint: wrapcheck
		TotalChecked   int     `json:"totalChecked"`
		TotalDead      int     `json:"totalDead"`
		DeadPercentage float64 `json:"deadPercentage"`
	}{s.TotalChecked, s.TotalDead, s.DeadPercentage()})
}

// ProgressFunc is invoked once per resolved URL with the number of resolved
// URLs so far and the batch size.
type ProgressFunc func(completed, total int)

// CheckMany probes all non-blank URLs and returns their results in completion order.
func (c *checker) CheckMany(ctx context.Context, urls []string,
	progress ProgressFunc) ([]domain.CheckResult, Stats, error) {
	results := make([]domain.CheckResult, 0, len(urls))
	stats, err := c.CheckStream(ctx, urls, progress, func(res domain.CheckResult) {
		results = append(results, res)
	})

	return results, stats, err
}

// CheckStream probes all non-blank URLs with at most ConcurrencyLimit probes
// in flight and hands every result to emit as soon as it resolves.
//
// emit, progress and the returned Stats are only touched by the calling
// goroutine, which drains completions. When ctx ends, probes still running are
// abandoned without a result and ctx's error is returned.
func (c *checker) CheckStream(ctx context.Context, urls []string, progress ProgressFunc,
	emit func(domain.CheckResult)) (Stats, error) {
	valid := make([]string, 0, len(urls))
	for _, u := range urls {
		if strings.TrimSpace(u) != "" {
			valid = append(valid, u)
		}
	}

	var stats Stats
	total := len(valid)
	if total == 0 {
		return stats, nil
	}

	logger.Info(ctx, "checking websites",
		zap.Int("count", total),
		zap.Int("concurrencyLimit", c.options.ConcurrencyLimit))

	completions := make(chan domain.CheckResult)
	go c.dispatch(ctx, valid, completions)

	step := max(1, total/10)
	for res := range completions {
		stats.TotalChecked++
		if res.IsDead(c.options.DeadStatuses) {
			stats.TotalDead++
		}

		if emit != nil {
			emit(res)
		}
		if progress != nil {
			progress(stats.TotalChecked, total)
		}
		if stats.TotalChecked%step == 0 {
			logger.Info(ctx, "check progress",
				zap.Int("completed", stats.TotalChecked),
				zap.Int("total", total),
				zap.Int("percent", stats.TotalChecked*100/total))
		}
	}

	c.metrics.BatchFinished(stats.TotalChecked, stats.TotalDead)
	logger.Info(ctx, "completed checking websites",
		zap.Int("checked", stats.TotalChecked),
		zap.Int("dead", stats.TotalDead))

	if stats.TotalChecked < total {
		return stats, fmt.Errorf("batch interrupted after %d of %d websites: %w", stats.TotalChecked, total, ctx.Err())
	}

	return stats, nil
}

// dispatch starts one goroutine per URL behind the admission gate and closes
// completions once every started probe has finished.
func (c *checker) dispatch(ctx context.Context, urls []string, completions chan<- domain.CheckResult) {
	gate := semaphore.NewWeighted(int64(c.options.ConcurrencyLimit))
	var wg sync.WaitGroup

	defer func() {
		wg.Wait()
		close(completions)
	}()

	for _, u := range urls {
		if err := gate.Acquire(ctx, 1); err != nil {
			return
		}

		wg.Add(1)
		go func(u string) {
			defer wg.Done()

			res, err := c.Check(ctx, u)
			gate.Release(1)
			if err != nil {
				return
			}
			completions <- res
		}(u)
	}
}
