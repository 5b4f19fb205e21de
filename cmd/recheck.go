package main

import (
	"context"
	"finder/internal/checker"
	"finder/internal/config"
	"finder/internal/worker"
	"finder/pkg/domain"
	"finder/pkg/logger"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// recheckCommand enqueues background rechecks of stale websites, plus the
// ones last seen with the given statuses. With --wait it also processes
// them until interrupted.
func recheckCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recheck",
		Short: "Enqueues background rechecks of stale or dead websites",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			names, _ := cmd.Flags().GetStringSlice("status")
			limit, _ := cmd.Flags().GetUint("limit")
			wait, _ := cmd.Flags().GetBool("wait")

			sel := worker.Selection{Limit: limit}
			for _, name := range names {
				s, err := domain.ParseStatus(name)
				if err != nil {
					logger.Fatal(ctx, "invalid status", zap.Error(err))
				}
				sel.Statuses = append(sel.Statuses, s)
			}

			pg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			options, err := checker.NewOptions(cfg)
			if err != nil {
				logger.Fatal(ctx, "invalid checker options", zap.Error(err))
			}
			skip := checker.NewDomainClassifier(options.SkipDomains, options.ParkingDomains)

			res, err := worker.NewScheduler(pg, skip, worker.NewOptions(cfg)).EnqueueDue(ctx, sel)
			if err != nil {
				logger.Fatal(ctx, "could not enqueue rechecks", zap.Error(err))
			}
			fmt.Printf("selected %d, enqueued %d, already queued %d, skipped %d\n", //nolint: forbidigo
				res.Selected, res.Enqueued, res.Duplicates, res.Skipped)

			if !wait {
				return
			}

			chk, err := checker.New(options, checker.Deps{})
			if err != nil {
				logger.Fatal(ctx, "could not create website checker", zap.Error(err))
			}
			stopWorkers := setupWorkers(ctx, cfg, pg, chk)

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()
			stopWorkers(shutdownCtx)
		},
	}

	cmd.Flags().StringSlice("status", nil, "Also recheck websites last seen with these statuses, e.g. TIMEOUT,UNKNOWN")
	cmd.Flags().Uint("limit", 0, "Cap of each selection, 0 means no cap")
	cmd.Flags().Bool("wait", false, "Process the queued rechecks until interrupted")

	return cmd
}
