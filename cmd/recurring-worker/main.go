// Package main is the entry point for the recurring worker. It runs the recurring
// scheduler on an interval and, when rollover-on-close is enabled, applies rollovers for
// period.closed events consumed from the broker.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/finance-tracker/period-engine/config"
	"github.com/finance-tracker/period-engine/internal/application/usecase/recurring"
	"github.com/finance-tracker/period-engine/internal/infra/db"
	"github.com/finance-tracker/period-engine/internal/infra/dependency"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	slog.Info("Starting recurring worker",
		"environment", cfg.Server.Environment,
		"interval", cfg.Scheduler.Interval,
		"concurrency", cfg.Scheduler.Concurrency,
		"cross_boundary_policy", cfg.Engine.CrossBoundaryPolicy,
	)

	database, err := db.NewConnection(&cfg.Database)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	redisClient, err := db.NewRedisClient(&cfg.Redis)
	if err != nil {
		slog.Error("Redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	} else {
		slog.Warn("REDIS_URL not set, dispatching without a lease")
	}

	injector, err := dependency.NewInjector(cfg, database.DB(), redisClient)
	if err != nil {
		slog.Error("Failed to wire dependencies", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := injector.Close(); err != nil {
			slog.Error("Failed to close broker connection", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsServer := &http.Server{
		Addr:              cfg.Scheduler.MetricsAddr,
		Handler:           promhttp.HandlerFor(injector.Registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		runScheduler(gctx, injector.RunDueTemplates, cfg.Scheduler.Interval)
		return nil
	})

	if injector.Broker != nil && cfg.Engine.RolloverOnClose {
		g.Go(func() error {
			slog.Info("Consuming period.closed events", "queue", cfg.AMQP.QueueName)
			return injector.Broker.ConsumePeriodClosed(gctx, injector.ApplyRollover.HandlePeriodClosed)
		})
	}

	g.Go(func() error {
		slog.Info("Metrics listening", "address", cfg.Scheduler.MetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Worker stopped with error", "error", err)
		return
	}

	slog.Info("Worker exited properly")
}

// runScheduler runs one pass immediately and then one per interval until ctx is done.
// A pass in flight when ctx is canceled records its interrupted units as failed.
func runScheduler(ctx context.Context, runDue *recurring.RunDueTemplatesUseCase, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		output, err := runDue.Execute(ctx)
		if err != nil {
			slog.Error("Recurring pass failed", "error", err)
		} else {
			slog.Info("Recurring pass completed",
				"templates", output.Templates,
				"dispatched", output.Dispatched,
				"generated", output.Generated,
				"failed", output.Failed,
				"canceled", output.Canceled,
				"existing", output.Existing,
				"leased", output.Leased,
				"errors", output.Errors,
			)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
