package main

import (
	"bufio"
	"context"
	"finder/internal/checker"
	"finder/internal/config"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// readURLs returns the non-blank lines of path, ignoring "#" comments.
func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open url file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("could not read url file: %w", err)
	}

	return urls, nil
}

// verdictPrinter prints one colored line per result: green for healthy,
// red for dead and yellow for anything else.
func verdictPrinter(dead domain.StatusSet) func(domain.CheckResult) {
	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()
	other := color.New(color.FgYellow).SprintFunc()

	return func(res domain.CheckResult) {
		label := other(res.Status)
		switch {
		case res.Status == domain.StatusOK:
			label = ok(res.Status)
		case res.IsDead(dead):
			label = bad(res.Status)
		}

		code := ""
		if res.HasStatusCode() {
			code = fmt.Sprintf(" [%d]", res.StatusCode)
		}
		fmt.Fprintf(color.Output, "%-28s %s%s %s (%.0fms)\n", //nolint: errcheck
			label, res.URL, code, res.Reason, res.ResponseTimeMS)
	}
}

func checkCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [url...]",
		Short: "Checks the health of one or more websites",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			file, _ := cmd.Flags().GetString("file")
			noContent, _ := cmd.Flags().GetBool("no-content")

			urls := args
			if file != "" {
				fromFile, err := readURLs(file)
				if err != nil {
					logger.Fatal(ctx, "could not load urls", zap.Error(err))
				}
				urls = append(urls, fromFile...)
			}
			if len(urls) == 0 {
				_ = cmd.Usage()

				return
			}

			if noContent {
				cfg.Checker.SkipContentCheck = true
			}
			options, err := checker.NewOptions(cfg)
			if err != nil {
				logger.Fatal(ctx, "invalid checker options", zap.Error(err))
			}
			chk, err := checker.New(options, checker.Deps{})
			if err != nil {
				logger.Fatal(ctx, "could not create website checker", zap.Error(err))
			}

			stats, err := chk.CheckStream(ctx, urls, nil, verdictPrinter(options.DeadStatuses))
			fmt.Fprintf(color.Output, "\n%d checked, %d dead (%.1f%%)\n", //nolint: errcheck
				stats.TotalChecked, stats.TotalDead, stats.DeadPercentage())
			if err != nil {
				logger.Fatal(ctx, "check interrupted", zap.Error(err))
			}
		},
	}

	cmd.Flags().StringP("file", "f", "", "File with one URL per line")
	cmd.Flags().Bool("no-content", false, "Skip parking and under-construction page detection")

	return cmd
}
