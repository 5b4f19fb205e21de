// Package checker probes business websites and classifies their health.
//
// A probe normalizes the URL, issues a HEAD request (escalating to GET when
// the server answers with an error), classifies transport failures, detects
// parking redirects and optionally inspects the page for parking or
// under-construction content. Batches run under a bounded admission gate and
// deliver results in completion order.
package checker

import (
	"context"
	"finder/pkg/domain"
)

//go:generate mockgen -package mockchecker -source=interface.go -destination=mock/mockchecker.go *
type Checker interface {
	Check(ctx context.Context, rawURL string) (domain.CheckResult, error)
	CheckMany(ctx context.Context, urls []string, progress ProgressFunc) ([]domain.CheckResult, Stats, error)
	CheckStream(ctx context.Context, urls []string, progress ProgressFunc,
		emit func(domain.CheckResult)) (Stats, error)
}
