// The triage server polls the configured mailbox, runs every new email
// through the triage pipeline and serves the results for review.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ewfx/gaied-aivengers/internal/config"
	"github.com/ewfx/gaied-aivengers/internal/core"
	"github.com/ewfx/gaied-aivengers/internal/di"
	"github.com/ewfx/gaied-aivengers/internal/ports"
	"github.com/ewfx/gaied-aivengers/internal/review"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	container, err := di.BuildContainer()
	if err != nil {
		panic(err)
	}

	err = container.Invoke(func(
		cfg *config.Config,
		logger *zap.Logger,
		runner *core.Runner,
		store core.ProcessedStore,
		source core.EmailSource,
		reviewSrv *review.Server,
	) error {
		defer logger.Sync()
		defer store.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-signals
			logger.Info("Shutting down", zap.String("signal", sig.String()))
			cancel()
		}()

		if ingestor, ok := source.(ports.Ingestor); ok {
			if err := ingestor.Start(); err != nil {
				return err
			}
			defer func() {
				stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer stopCancel()
				if err := ingestor.Stop(stopCtx); err != nil {
					logger.Warn("Failed to stop ingestion listener", zap.Error(err))
				}
			}()
		}

		if cfg.GetBool("review.enabled") {
			if err := reviewSrv.Start(); err != nil {
				return err
			}
			defer func() {
				stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer stopCancel()
				if err := reviewSrv.Stop(stopCtx); err != nil {
					logger.Warn("Failed to stop review server", zap.Error(err))
				}
			}()
		}

		pollInterval, err := cfg.GetDuration("run.poll_interval")
		if err != nil {
			return err
		}

		last, err := store.LastProcessed(ctx)
		if err != nil {
			return err
		}
		logger.Info("Starting mailbox polling",
			zap.Duration("interval", pollInterval),
			zap.String("last_processed", last))

		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()

		for {
			stats, err := runner.Run(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("Mailbox pass failed", zap.Error(err))
			} else {
				logger.Info("Mailbox pass complete",
					zap.Int("listed", stats.Listed),
					zap.Int("skipped", stats.Skipped),
					zap.Int("processed", stats.Processed),
					zap.Int("failed", stats.Failed))
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	})
	if err != nil {
		panic(err)
	}
}
