package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/cli"
	"fintrack/internal/core"
	apphttp "fintrack/internal/http"
	applog "fintrack/internal/log"
	"fintrack/internal/ports"
	"fintrack/internal/services"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(slog.LevelInfo)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.SlogLevel())

	logger.Info("Starting fintrack", "port", cfg.Port, "backend", cfg.DataBackend)

	result := cli.InitBackend(context.Background(), logger, cfg)
	store := result.Store

	viewCache, err := cache.New[[]core.Transaction](cfg.CacheBackend, cfg.CacheSize, cfg.CacheTTL)
	if err != nil {
		logger.Error("Failed to create view cache", "error", err, "cache_backend", cfg.CacheBackend)
		os.Exit(1)
	}
	cacheManager := cache.NewManager()
	cacheManager.Register(viewCache)
	cacheManager.StartCleanup(10 * time.Minute)

	// AMQP is optional; without it the mirror worker simply sees nothing.
	var (
		publisher  ports.EventPublisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	views := services.NewViewService(store, viewCache)
	transactions := services.NewTransactionService(store, publisher, views)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authSvc, err := services.NewAuthService(store, store, auth.NewPasswordHasher(bcrypt.DefaultCost), tokens)
	if err != nil {
		logger.Error("Failed to initialize auth service", "error", err)
		os.Exit(1)
	}
	authSvc.Subscribe(func(ctx context.Context, ev services.AuthEvent) {
		if ev.Kind != services.UserDeleted {
			return
		}
		views.Invalidate(ev.User.ID)
		if publisher == nil {
			return
		}
		if err := publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(amqp.UserDeleted, ev.User.ID, 0)); err != nil {
			logger.Warn("Failed to publish user deletion", applog.FieldUserID, ev.User.ID, applog.FieldError, err)
		}
	})

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}, apphttp.Deps{
		Store:        store,
		Transactions: transactions,
		Views:        views,
		Auth:         authSvc,
		Tokens:       tokens,
		Logger:       logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close error", "error", err)
			}
		}
		if err := result.Close(); err != nil {
			logger.Warn("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
