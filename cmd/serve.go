package main

import (
	"context"
	"errors"
	"finder/internal/api"
	"finder/internal/api/handler/v1handler"
	"finder/internal/checker"
	"finder/internal/config"
	"finder/internal/worker"
	"finder/pkg/logger"
	"finder/pkg/metrics"
	"finder/pkg/storage/postgres"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newMeteredChecker builds a checker recording into the default prometheus
// registry, which the metrics endpoint serves.
func newMeteredChecker(ctx context.Context, cfg *config.Config) (checker.Checker, checker.Options) {
	options, err := checker.NewOptions(cfg)
	if err != nil {
		logger.Fatal(ctx, "invalid checker options", zap.Error(err))
	}
	m, err := metrics.NewChecker(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Fatal(ctx, "could not register checker metrics", zap.Error(err))
	}
	chk, err := checker.New(options, checker.Deps{Metrics: m})
	if err != nil {
		logger.Fatal(ctx, "could not create website checker", zap.Error(err))
	}

	return chk, options
}

func setupServer(ctx context.Context, cfg *config.Config, deps v1handler.Deps) func(ctx context.Context) {
	opts, err := api.NewOptions(cfg)
	if err != nil {
		logger.Fatal(ctx, "invalid webserver options", zap.Error(err))
	}
	server, err := api.NewServer(api.Deps{Deps: deps}, opts)
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", opts.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// setupWorkers starts the background recheck workers and returns their stop function.
func setupWorkers(ctx context.Context, cfg *config.Config, pg *postgres.PgSQL,
	prober worker.Prober,
) func(ctx context.Context) {
	client, err := worker.Start(ctx, pg.Pool, prober, pg, worker.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not start recheck workers", zap.Error(err))
	}
	logger.Info(ctx, "recheck workers started", zap.Int("maxWorkers", cfg.Worker.MaxWorkers))

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping recheck workers...")
		if err := client.Stop(ctx); err != nil {
			logger.Error(ctx, "could not stop recheck workers", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background recheck workers",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			withWorkers, _ := cmd.Flags().GetBool("workers")

			pg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			chk, checkerOptions := newMeteredChecker(ctx, cfg)
			skip := checker.NewDomainClassifier(checkerOptions.SkipDomains, checkerOptions.ParkingDomains)

			stopWorkers := func(context.Context) {}
			if withWorkers {
				stopWorkers = setupWorkers(ctx, cfg, pg, chk)
			}

			stopWebserver := setupServer(ctx, cfg, v1handler.Deps{
				Checker:   chk,
				Storage:   pg,
				Scheduler: worker.NewScheduler(pg, skip, worker.NewOptions(cfg)),
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
			stopWorkers(shutdownCtx)
		},
	}

	cmd.Flags().Bool("workers", true, "Also process background rechecks")

	return cmd
}
