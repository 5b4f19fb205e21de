// Package export writes businesses and leads to files a sales team can open:
// CSV, JSON, XLSX and a plain-text summary.
package export

import (
	"context"
	"finder/internal/config"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Options configure an Exporter.
type Options struct {
	// Dir is created on demand.
	Dir string
	// LeadsName is the base name of the leads files.
	LeadsName string
	// Now stamps file names and documents. Defaults to time.Now.
	Now func() time.Time
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{Dir: cfg.Output.Dir, LeadsName: cfg.Output.LeadsFilename}
}

// Exporter writes export files into a single directory.
type Exporter struct {
	dir       string
	leadsName string
	now       func() time.Time
}

// New creates the output directory if needed and returns an Exporter writing into it.
func New(options Options) (*Exporter, error) {
	if options.Dir == "" {
		options.Dir = "."
	}
	if options.LeadsName == "" {
		options.LeadsName = "dead_websites_leads"
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	if err := os.MkdirAll(options.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}

	return &Exporter{dir: options.Dir, leadsName: options.LeadsName, now: options.Now}, nil
}

// Dir returns the output directory.
func (e *Exporter) Dir() string { return e.dir }

// Files are the paths written by ExportAll.
type Files struct {
	LeadsCSV       string `json:"leadsCsv"`
	LeadsJSON      string `json:"leadsJson"`
	LeadsXLSX      string `json:"leadsXlsx"`
	BusinessesCSV  string `json:"businessesCsv"`
	BusinessesJSON string `json:"businessesJson"`
	Summary        string `json:"summary"`
}

// ExportAll writes every export format. File names carry the optional
// prefix and a timestamp so that successive runs never overwrite each other.
func (e *Exporter) ExportAll(ctx context.Context, businesses []domain.Business, leads []domain.Lead,
	info *SearchInfo, prefix string,
) (Files, error) {
	now := e.now()
	stamp := now.Format("20060102_150405")
	if prefix != "" {
		prefix += "_"
	}
	name := func(base, ext string) string {
		return prefix + base + "_" + stamp + ext
	}

	var (
		files Files
		err   error
	)
	if files.LeadsCSV, err = e.LeadsCSV(ctx, leads, name(e.leadsName, ".csv")); err != nil {
		return Files{}, err
	}
	if files.LeadsJSON, err = e.LeadsJSON(ctx, leads, name(e.leadsName, ".json")); err != nil {
		return Files{}, err
	}
	if files.LeadsXLSX, err = e.LeadsXLSX(ctx, leads, name(e.leadsName, ".xlsx")); err != nil {
		return Files{}, err
	}
	if files.BusinessesCSV, err = e.BusinessesCSV(ctx, businesses, name("all_businesses", ".csv")); err != nil {
		return Files{}, err
	}
	if files.BusinessesJSON, err = e.BusinessesJSON(ctx, businesses, name("all_businesses", ".json")); err != nil {
		return Files{}, err
	}
	if files.Summary, err = e.Summary(ctx, businesses, leads, info, name("summary", ".txt")); err != nil {
		return Files{}, err
	}

	return files, nil
}

// LeadsCSV writes leads to filename and returns its path.
func (e *Exporter) LeadsCSV(ctx context.Context, leads []domain.Lead, filename string) (string, error) {
	return e.write(ctx, filename, len(leads), func(w io.Writer) error { return WriteLeadsCSV(w, leads) })
}

// LeadsJSON writes leads to filename and returns its path.
func (e *Exporter) LeadsJSON(ctx context.Context, leads []domain.Lead, filename string) (string, error) {
	now := e.now()

	return e.write(ctx, filename, len(leads), func(w io.Writer) error { return WriteJSON(w, leads, now) })
}

// LeadsXLSX writes leads to filename and returns its path.
func (e *Exporter) LeadsXLSX(ctx context.Context, leads []domain.Lead, filename string) (string, error) {
	return e.write(ctx, filename, len(leads), func(w io.Writer) error { return WriteLeadsXLSX(w, leads) })
}

// BusinessesCSV writes businesses to filename and returns its path.
func (e *Exporter) BusinessesCSV(ctx context.Context, businesses []domain.Business, filename string) (string, error) {
	return e.write(ctx, filename, len(businesses), func(w io.Writer) error {
		return WriteBusinessesCSV(w, businesses)
	})
}

// BusinessesJSON writes businesses to filename and returns its path.
func (e *Exporter) BusinessesJSON(ctx context.Context, businesses []domain.Business, filename string) (string, error) {
	now := e.now()

	return e.write(ctx, filename, len(businesses), func(w io.Writer) error {
		return WriteJSON(w, BusinessRecords(businesses), now)
	})
}

// Summary writes the summary report to filename and returns its path.
func (e *Exporter) Summary(ctx context.Context, businesses []domain.Business, leads []domain.Lead,
	info *SearchInfo, filename string,
) (string, error) {
	report := SummaryReport(businesses, leads, info, e.now())

	return e.write(ctx, filename, len(leads), func(w io.Writer) error {
		_, err := io.WriteString(w, report)

		return err //nolint: wrapcheck
	})
}

func (e *Exporter) write(ctx context.Context, filename string, count int, fn func(io.Writer) error) (string, error) {
	path := filepath.Join(e.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create %s: %w", path, err)
	}

	if err := fn(f); err != nil {
		_ = f.Close()

		return "", fmt.Errorf("could not write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("could not close %s: %w", path, err)
	}

	logger.Info(ctx, "exported file", zap.String("path", path), zap.Int("records", count))

	return path, nil
}

// FilterExpiredFile runs FilterExpired from the input file into output. An
// empty output derives the name with ExpiredOutputPath.
func FilterExpiredFile(ctx context.Context, input, output string) (string, FilterStats, error) {
	if output == "" {
		output = ExpiredOutputPath(input)
	}

	in, err := os.Open(input)
	if err != nil {
		return "", FilterStats{}, fmt.Errorf("could not open %s: %w", input, err)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return "", FilterStats{}, fmt.Errorf("could not create %s: %w", output, err)
	}

	stats, err := FilterExpired(in, out)
	if err != nil {
		_ = out.Close()
		_ = os.Remove(output)

		return "", FilterStats{}, err
	}
	if err := out.Close(); err != nil {
		return "", FilterStats{}, fmt.Errorf("could not close %s: %w", output, err)
	}

	logger.Info(ctx, "filtered expired websites",
		zap.String("input", input), zap.String("output", output),
		zap.Int("read", stats.Read), zap.Int("kept", stats.Kept))

	return output, stats, nil
}
