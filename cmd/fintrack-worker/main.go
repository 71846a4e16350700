package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(slog.LevelInfo)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.SlogLevel())

	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Worker configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting fintrack-worker", "backend", cfg.DataBackend, "queue", cfg.AMQPQueue)

	result := cli.InitBackend(context.Background(), logger, cfg)

	mirror, err := backend.NewFactory(logger).CreateMirror(context.Background(), backend.MirrorFromAppConfig(cfg))
	if err != nil {
		logger.Error("Failed to initialize mirror", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	mirrorWorker := worker.NewMirrorWorker(result.Store, mirror, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeTransactionEvents(gctx, mirrorWorker.HandleTransactionEvent)
	})
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				stats := mirrorWorker.Stats()
				logger.Info("Worker heartbeat", "processed", stats.Processed, "failed", stats.Failed)
			}
		}
	})

	err = g.Wait()
	if cerr := amqpClient.Close(); cerr != nil {
		logger.Warn("AMQP close error", "error", cerr)
	}
	if cerr := result.Close(); cerr != nil {
		logger.Warn("Backend cleanup error", "error", cerr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
