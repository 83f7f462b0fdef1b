// cmd/notifier/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"driverpro-notifier/internal/common/config"
	"driverpro-notifier/internal/common/database"
	apperrors "driverpro-notifier/internal/common/errors"
	"driverpro-notifier/internal/common/logger"
	"driverpro-notifier/internal/common/observability"
	"driverpro-notifier/internal/notify"
	"driverpro-notifier/internal/server"
	"driverpro-notifier/internal/store"
	"driverpro-notifier/internal/watch"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Error("config load failed", zap.Error(err))
		_ = bootLog.Sync()
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting reservation notifier...",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init MongoDB with retry ---
	var mongoClient *database.MongoClient
	err = retryWithBackoff(func() error {
		var err error
		mongoClient, err = database.NewMongo(cfg.Store)
		if err != nil {
			return err
		}
		return mongoClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "MongoDB connection")

	if err != nil {
		zapLog.Error("mongodb failed after retries",
			zap.Error(apperrors.NewCapabilityInitFailedError("mongodb", err)))
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	zapLog.Info("MongoDB connected successfully")

	// --- Init Redis checkpoints (optional) ---
	var checkpoints store.CheckpointStore
	if cfg.Redis.Enabled() {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Error("redis failed after retries",
				zap.Error(apperrors.NewCapabilityInitFailedError("redis", err)))
			os.Exit(1)
		}
		defer redisClient.Close()
		checkpoints = store.NewRedisCheckpoints(redisClient.GetClient())
		zapLog.Info("Redis connected successfully, resume checkpoints enabled")
	} else {
		zapLog.Info("Redis not configured, resuming from the live position on restart")
	}

	// --- Init email provider ---
	var mailer notify.Mailer
	switch cfg.Email.Provider {
	case "postmark":
		mailer = notify.NewPostmarkMailer(cfg.Email.Postmark.ServerToken, cfg.Email.Postmark.AccountToken)
	case "ses":
		mailer, err = notify.NewSESMailer(ctx, cfg.Email.SES.Region)
		if err != nil {
			zapLog.Error("ses mailer init failed",
				zap.Error(apperrors.NewCapabilityInitFailedError("ses", err)))
			os.Exit(1)
		}
	default:
		zapLog.Error("unknown email provider", zap.String("provider", cfg.Email.Provider))
		os.Exit(1)
	}
	zapLog.Info("Email provider initialized", zap.String("provider", cfg.Email.Provider))

	// --- Wire the pipeline ---
	reservations := store.NewMongoStore(mongoClient,
		cfg.Store.ReservationsCollection, cfg.Store.DriversCollection, log)

	notifier := notify.NewNotifier(mailer, cfg.Email.FromEmail, cfg.Email.FromName, log)
	handler := notify.NewHandler(reservations, notifier, log)

	manager := watch.NewManager(reservations, handler, checkpoints,
		config.GetDuration(cfg.Subscription.ReconnectDelay), obs, log)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go manager.Run(runCtx)

	// --- HTTP server ---
	srv := server.New(cfg.App.Name, notifier, cfg.Email.TestRecipient,
		func() string { return string(manager.State()) }, log)

	go func() {
		zapLog.Info("HTTP server listening", zap.Int("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(cfg.HTTP.Port); err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping notifier...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	manager.Unsubscribe()
	stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Notifier stopped gracefully")
}
