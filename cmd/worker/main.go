package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/meowfish/shop-api/config"
	"github.com/meowfish/shop-api/internal/email"
	"github.com/meowfish/shop-api/internal/health"
	"github.com/meowfish/shop-api/internal/infrastructure/postgres"
	ctxlog "github.com/meowfish/shop-api/internal/log"
	"github.com/meowfish/shop-api/internal/metrics"
	"github.com/meowfish/shop-api/internal/notify"
	"github.com/meowfish/shop-api/internal/queue"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	taskRepo := postgres.NewTaskRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	productRepo := postgres.NewProductRepository(pool)

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	task := notify.NewTask(notificationRepo, productRepo, sender, cfg.NotifyTo, logger)

	policy := queue.RetryPolicy{
		MaxRetries:  cfg.NotifyMaxRetries,
		BackoffBase: time.Duration(cfg.NotifyBackoffBaseSec) * time.Second,
		BackoffCap:  time.Duration(cfg.NotifyBackoffCapSec) * time.Second,
	}

	worker := queue.NewWorker(
		taskRepo,
		task,
		policy,
		logger,
		time.Duration(cfg.PollIntervalSec)*time.Second,
		cfg.WorkerCount,
	)
	go worker.Start(ctx)

	// heartbeat fires every 10s — 30s timeout means 3 missed beats before a task is stale
	reaper := queue.NewReaper(taskRepo, logger, 30*time.Second, 30*time.Second)
	go reaper.Start(ctx)

	sweeper := queue.NewSweeper(
		notificationRepo,
		logger,
		cfg.RetentionCron,
		time.Duration(cfg.RetentionDays)*24*time.Hour,
	)
	go func() {
		if err := sweeper.Start(ctx); err != nil {
			logger.Error("retention sweeper", "error", err)
		}
	}()

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("worker shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
