package main

import (
	"context"
	"finder/internal/checker"
	"finder/internal/config"
	"finder/internal/discovery"
	"finder/internal/export"
	"finder/internal/finder"
	"finder/internal/leads"
	"finder/pkg/logger"
	"finder/pkg/places/googlemaps"
	"finder/pkg/serrors"
	"finder/pkg/storage"
	"finder/pkg/storage/memory"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runFlags are the flags of the run command. Unset flags keep the configured values.
type runFlags struct {
	keywords     []string
	city         string
	bounds       string
	radius       int
	concurrent   int
	timeout      time.Duration
	minRating    float64
	minReviews   int
	requirePhone bool
	quality      bool
	output       string
	outputName   string
	prefix       string
	mock         bool
	inMemory     bool
	resume       bool
	skipSearch   bool
	exportOnly   bool
	recheckAge   time.Duration
	verbose      bool
}

func (f runFlags) mode() finder.Mode {
	switch {
	case f.exportOnly:
		return finder.ModeExportOnly
	case f.skipSearch:
		return finder.ModeSkipSearch
	case f.resume:
		return finder.ModeResume
	default:
		return finder.ModeFresh
	}
}

// apply copies the flags that were set on the command line into cfg.
func (f runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("keywords") {
		cfg.Search.Keywords = f.keywords
	}
	if changed("city") {
		cfg.Search.City = f.city
	}
	if changed("bounds") {
		cfg.Search.Bounds = f.bounds
	}
	if changed("radius") {
		cfg.Places.Radius = f.radius
	}
	if changed("concurrent") {
		cfg.Checker.ConcurrencyLimit = f.concurrent
	}
	if changed("timeout") {
		cfg.Checker.Timeout = f.timeout
	}
	if changed("min-rating") {
		cfg.Filter.MinRating = f.minRating
	}
	if changed("min-reviews") {
		cfg.Filter.MinReviews = f.minReviews
	}
	if changed("require-phone") {
		cfg.Filter.RequirePhone = f.requirePhone
	}
	if changed("output") {
		cfg.Output.Dir = f.output
	}
	if changed("output-name") {
		cfg.Output.LeadsFilename = f.outputName
	}
}

func (f runFlags) query(cfg *config.Config) (discovery.Query, error) {
	q := discovery.Query{Keywords: cfg.Search.Keywords, City: cfg.Search.City}
	if cfg.Search.Bounds != "" {
		b, err := discovery.ParseBounds(cfg.Search.Bounds)
		if err != nil {
			return q, err //nolint: wrapcheck
		}
		q.Bounds = &b
	}

	return q, nil
}

// newSearcher builds the Places backed searcher used by fresh runs.
func newSearcher(cfg *config.Config) (*discovery.Searcher, error) {
	if cfg.Places.APIKey == "" {
		return nil, serrors.With(serrors.ErrInvalidConfig,
			"GOOGLE_MAPS_API_KEY is not set, use --mock to try the pipeline without it")
	}

	client := googlemaps.New(&http.Client{Timeout: cfg.Places.Timeout}, googlemaps.Options{
		BaseURL:  cfg.Places.BaseURL,
		APIKey:   cfg.Places.APIKey,
		Language: cfg.Places.Language,
		Region:   cfg.Places.Region,
	})

	return discovery.New(client, discovery.NewOptions(cfg)), nil
}

// progressPrinter reports the check progress on stderr every step results
// and at completion.
func progressPrinter(step int) checker.ProgressFunc {
	return func(completed, total int) {
		if completed%step != 0 && completed != total {
			return
		}
		fmt.Fprintf(os.Stderr, "\rchecked %d/%d websites (%.0f%%)", //nolint: errcheck
			completed, total, float64(completed)/float64(total)*100)
		if completed == total {
			fmt.Fprintln(os.Stderr) //nolint: errcheck
		}
	}
}

func printReport(report finder.Report) {
	fmt.Println(report.Summary) //nolint: forbidigo
	fmt.Println()               //nolint: forbidigo

	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Printf("%s %d leads out of %d checked websites (%d skipped platform pages)\n", //nolint: forbidigo
		green("done:"), len(report.Leads), report.CheckStats.TotalChecked, report.Skipped)

	files := report.Files
	for _, path := range []string{
		files.LeadsCSV, files.LeadsJSON, files.LeadsXLSX, files.BusinessesCSV, files.BusinessesJSON, files.Summary,
	} {
		if path != "" {
			fmt.Printf("  %s %s\n", cyan("wrote"), path) //nolint: forbidigo
		}
	}
}

func runCommand(cfg *config.Config) *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Searches businesses, checks their websites and exports the dead ones as leads",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if flags.verbose {
				setupLogger(cfg, logger.DevelopmentEnvironment)
			}
			flags.apply(cmd, cfg)

			q, err := flags.query(cfg)
			if err != nil {
				logger.Fatal(ctx, "invalid search query", zap.Error(err))
			}

			checkerOptions, err := checker.NewOptions(cfg)
			if err != nil {
				logger.Fatal(ctx, "invalid checker options", zap.Error(err))
			}
			chk, err := checker.New(checkerOptions, checker.Deps{})
			if err != nil {
				logger.Fatal(ctx, "could not create website checker", zap.Error(err))
			}

			criteria, err := leads.NewCriteria(cfg, flags.quality)
			if err != nil {
				logger.Fatal(ctx, "invalid lead criteria", zap.Error(err))
			}

			exporter, err := export.New(export.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not create exporter", zap.Error(err))
			}

			var store storage.BusinessStorage
			if flags.mock || flags.inMemory {
				store = memory.New()
			} else {
				pg, closeStrg := getPostgres(ctx, cfg)
				defer closeStrg()
				store = pg
			}

			deps := finder.Deps{
				Checker:  chk,
				Storage:  store,
				Exporter: exporter,
				Skip:     checker.NewDomainClassifier(checkerOptions.SkipDomains, checkerOptions.ParkingDomains),
				Dead:     checkerOptions.DeadStatuses,
			}

			mode := flags.mode()
			prefix := flags.prefix
			switch {
			case flags.mock:
				if err := finder.SeedMock(ctx, store); err != nil {
					logger.Fatal(ctx, "could not seed sample businesses", zap.Error(err))
				}
				if prefix == "" {
					prefix = finder.MockKeyword
				}
			case mode == finder.ModeFresh:
				if deps.Searcher, err = newSearcher(cfg); err != nil {
					logger.Fatal(ctx, "could not create place searcher", zap.Error(err))
				}
				if len(q.Keywords) == 0 {
					logger.Fatal(ctx, "no keywords to search, set --keywords or search.keywords")
				}
			}

			var recheckBefore time.Time
			if flags.recheckAge > 0 {
				recheckBefore = time.Now().Add(-flags.recheckAge)
			}

			report, err := finder.New(deps).Run(ctx, finder.RunOptions{
				Query:         q,
				Mode:          mode,
				Criteria:      criteria,
				RecheckBefore: recheckBefore,
				Prefix:        prefix,
				Progress:      progressPrinter(max(1, checkerOptions.ConcurrencyLimit)),
			})
			if err != nil {
				logger.Fatal(ctx, "run failed, rerun with --resume to continue", zap.Error(err))
			}

			printReport(report)
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&flags.keywords, "keywords", "k", nil, "Business types to search, e.g. restaurant,hotel")
	f.StringVar(&flags.city, "city", "", "Thai province to search in, English or Thai name")
	f.StringVar(&flags.bounds, "bounds", "", "Bounding box southLat,westLng,northLat,eastLng")
	f.IntVar(&flags.radius, "radius", 0, "Search radius in meters")
	f.IntVar(&flags.concurrent, "concurrent", 0, "Websites probed at once")
	f.DurationVar(&flags.timeout, "timeout", 0, "Network timeout of a probe attempt")
	f.Float64Var(&flags.minRating, "min-rating", 0, "Lowest accepted rating of a lead")
	f.IntVar(&flags.minReviews, "min-reviews", 0, "Lowest accepted number of reviews of a lead")
	f.BoolVar(&flags.requirePhone, "require-phone", false, "Reject leads without a phone number")
	f.BoolVar(&flags.quality, "quality-filter", false, "Apply the quality thresholds (rating 3.5, 5 reviews, phone)")
	f.StringVarP(&flags.output, "output", "o", "", "Directory exports are written to")
	f.StringVar(&flags.outputName, "output-name", "", "Base name of the leads export")
	f.StringVar(&flags.prefix, "prefix", "", "Prefix of every exported file name")
	f.BoolVar(&flags.mock, "mock", false, "Use sample businesses instead of the Places API, stored in memory")
	f.BoolVar(&flags.inMemory, "in-memory", false, "Keep businesses in memory instead of postgres")
	f.BoolVar(&flags.resume, "resume", false, "Check only stored businesses not checked yet")
	f.BoolVar(&flags.skipSearch, "skip-search", false, "Skip the search and check the stored businesses")
	f.BoolVar(&flags.exportOnly, "export-only", false, "Only export the stored results")
	f.DurationVar(&flags.recheckAge, "recheck-older-than", 0, "Also recheck websites last checked longer ago")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose development logging")
	cmd.MarkFlagsMutuallyExclusive("resume", "skip-search", "export-only")
	cmd.MarkFlagsMutuallyExclusive("mock", "export-only")

	return cmd
}
