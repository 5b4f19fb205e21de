// Package finder runs the lead-finding pipeline: discover businesses, probe
// their websites, keep the broken ones and export them.
package finder

import (
	"context"
	"finder/internal/checker"
	"finder/internal/discovery"
	"finder/internal/export"
	"finder/internal/leads"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"finder/pkg/storage"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Mode selects which stages of the pipeline run.
type Mode int

const (
	// ModeFresh searches, then checks every stored website not checked yet.
	ModeFresh Mode = iota
	// ModeResume skips the search and checks the websites a previous run
	// left unchecked.
	ModeResume
	// ModeSkipSearch behaves like ModeResume.
	ModeSkipSearch
	// ModeExportOnly filters and exports what is stored, without any network call.
	ModeExportOnly
)

func (m Mode) String() string {
	switch m {
	case ModeFresh:
		return "fresh"
	case ModeResume:
		return "resume"
	case ModeSkipSearch:
		return "skip-search"
	case ModeExportOnly:
		return "export-only"
	}

	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) searches() bool { return m == ModeFresh }
func (m Mode) checks() bool   { return m != ModeExportOnly }

// Searcher discovers businesses.
type Searcher interface {
	Search(ctx context.Context, q discovery.Query, onKeyword discovery.KeywordFunc) (int, error)
}

var _ Searcher = (*discovery.Searcher)(nil)

// Deps are the collaborators of a Finder.
type Deps struct {
	// Searcher may be nil, in which case the search stage is skipped.
	Searcher Searcher
	Checker  checker.Checker
	Storage  storage.BusinessStorage
	// Exporter may be nil, in which case nothing is written.
	Exporter *export.Exporter
	// Skip decides which published websites are platform pages not worth probing.
	Skip checker.DomainClassifier
	// Dead are the statuses counted as dead in the statistics.
	Dead domain.StatusSet
}

// RunOptions parametrize one run.
type RunOptions struct {
	Query    discovery.Query
	Mode     Mode
	Criteria leads.Criteria
	// RecheckBefore also probes again websites last checked before this
	// instant. The zero value only probes websites never checked.
	RecheckBefore time.Time
	// Prefix is prepended to exported file names.
	Prefix string
	// Progress receives the check progress.
	Progress checker.ProgressFunc
}

// Report describes a finished run.
type Report struct {
	Mode Mode `json:"mode"`
	// Found is the number of businesses the search returned.
	Found int `json:"found"`
	// Selected is the number of businesses considered for a check.
	Selected int `json:"selected"`
	// Skipped is the number of selected businesses on platform domains, never probed.
	Skipped     int                `json:"skipped"`
	CheckStats  checker.Stats      `json:"checkStats"`
	FilterStats leads.Stats        `json:"filterStats"`
	Leads       []domain.Lead      `json:"leads"`
	Statistics  storage.Statistics `json:"statistics"`
	Files       export.Files       `json:"files"`
	Summary     string             `json:"-"`
}

// Finder wires the pipeline stages together.
type Finder struct {
	deps Deps
	now  func() time.Time
}

// New creates a Finder.
func New(deps Deps) *Finder {
	if deps.Dead == nil {
		deps.Dead = domain.DefaultDeadStatuses()
	}

	return &Finder{deps: deps, now: time.Now}
}

// Run executes the stages selected by opts.Mode. A failure while persisting
// a single check result is logged and does not stop the run.
func (f *Finder) Run(ctx context.Context, opts RunOptions) (Report, error) {
	ctx = logger.WithFields(ctx, zap.Stringer("mode", opts.Mode))
	report := Report{Mode: opts.Mode}

	if opts.Mode.searches() && f.deps.Searcher != nil {
		found, err := f.search(ctx, opts.Query)
		report.Found = found
		if err != nil {
			return report, err
		}
	}

	if opts.Mode.checks() {
		if err := f.check(ctx, opts, &report); err != nil {
			return report, err
		}
	}

	all, err := f.deps.Storage.Businesses(ctx, storage.BusinessQuery{})
	if err != nil {
		return report, fmt.Errorf("could not load businesses: %w", err)
	}

	report.Leads, report.FilterStats = leads.New(opts.Criteria).Leads(ctx, all)

	if report.Statistics, err = f.deps.Storage.Statistics(ctx, f.deps.Dead); err != nil {
		return report, fmt.Errorf("could not compute statistics: %w", err)
	}

	info := searchInfo(opts.Query)
	report.Summary = export.SummaryReport(all, report.Leads, info, f.now())
	if f.deps.Exporter != nil {
		if report.Files, err = f.deps.Exporter.ExportAll(ctx, all, report.Leads, info, opts.Prefix); err != nil {
			return report, fmt.Errorf("could not export results: %w", err)
		}
	}

	logger.Info(ctx, "pipeline completed",
		zap.Int("businesses", len(all)),
		zap.Int("leads", len(report.Leads)))

	return report, nil
}

func (f *Finder) search(ctx context.Context, q discovery.Query) (int, error) {
	if len(q.Keywords) == 0 {
		logger.Warn(ctx, "no keywords to search")

		return 0, nil
	}

	bounds := ""
	if q.Bounds != nil {
		bounds = q.Bounds.String()
	}

	found, err := f.deps.Searcher.Search(ctx, q, func(ctx context.Context, keyword string, found []domain.Business) error {
		inserted, err := f.deps.Storage.UpsertBusinesses(ctx, found...)
		if err != nil {
			return fmt.Errorf("could not store businesses: %w", err)
		}
		logger.Debug(ctx, "stored businesses",
			zap.String("keyword", keyword), zap.Int("found", len(found)), zap.Int("new", inserted))

		return f.deps.Storage.LogSearch(ctx, storage.SearchLog{
			Keyword:      keyword,
			City:         q.City,
			Bounds:       bounds,
			ResultsCount: len(found),
			SearchedAt:   f.now().UTC(),
		})
	})
	if err != nil {
		return found, fmt.Errorf("search failed: %w", err)
	}

	logger.Info(ctx, "search completed", zap.Int("found", found))

	return found, nil
}

func (f *Finder) check(ctx context.Context, opts RunOptions, report *Report) error {
	query := storage.BusinessQuery{Unchecked: true}
	if !opts.RecheckBefore.IsZero() {
		query = storage.BusinessQuery{CheckedBefore: opts.RecheckBefore}
	}

	selected, err := f.deps.Storage.Businesses(ctx, query)
	if err != nil {
		return fmt.Errorf("could not select businesses to check: %w", err)
	}
	report.Selected = len(selected)

	// several listings may share one website, each is probed once
	byURL := make(map[string][]string)
	urls := make([]string, 0, len(selected))
	for _, b := range selected {
		u := checker.NormalizeURL(b.Website)
		if u == "" {
			continue
		}
		if f.deps.Skip.IsSkipped(u) {
			report.Skipped++

			continue
		}
		if _, ok := byURL[u]; !ok {
			urls = append(urls, u)
		}
		byURL[u] = append(byURL[u], b.PlaceID)
	}

	logger.Info(ctx, "selected websites to check",
		zap.Int("businesses", len(selected)),
		zap.Int("urls", len(urls)),
		zap.Int("skipped", report.Skipped))

	if len(urls) == 0 {
		return nil
	}

	unsaved := 0
	stats, err := f.deps.Checker.CheckStream(ctx, urls, opts.Progress, func(res domain.CheckResult) {
		for _, id := range byURL[checker.NormalizeURL(res.URL)] {
			if err := f.deps.Storage.UpdateWebsiteCheck(ctx, id, res); err != nil {
				logger.Warn(ctx, "could not store check result",
					zap.String("placeId", id), zap.String("url", res.URL), zap.Error(err))
				unsaved++
			}
		}
	})
	report.CheckStats = stats
	if err != nil {
		return fmt.Errorf("could not check websites: %w", err)
	}
	if unsaved > 0 {
		logger.Warn(ctx, "some check results were not stored", zap.Int("count", unsaved))
	}

	return nil
}

func searchInfo(q discovery.Query) *export.SearchInfo {
	info := &export.SearchInfo{Keywords: q.Keywords, City: strings.TrimSpace(q.City)}
	if q.Bounds != nil {
		info.Bounds = q.Bounds.String()
	}

	return info
}
