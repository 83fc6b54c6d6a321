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

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/meowfish/shop-api/config"
	"github.com/meowfish/shop-api/internal/auth"
	"github.com/meowfish/shop-api/internal/health"
	"github.com/meowfish/shop-api/internal/infrastructure/postgres"
	ctxlog "github.com/meowfish/shop-api/internal/log"
	"github.com/meowfish/shop-api/internal/metrics"
	"github.com/meowfish/shop-api/internal/queue"
	httptransport "github.com/meowfish/shop-api/internal/transport/http"
	"github.com/meowfish/shop-api/internal/transport/http/handler"
	"github.com/meowfish/shop-api/internal/transport/http/middleware"
	"github.com/meowfish/shop-api/internal/usecase"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	tokens := auth.NewTokenService(
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.JWTAccessTTLMin)*time.Minute,
		time.Duration(cfg.JWTLoginTTLMin)*time.Minute,
	)

	// Auth
	employeeRepo := postgres.NewEmployeeRepository(pool)
	authUsecase := usecase.NewAuthUsecase(employeeRepo, tokens)
	authHandler := handler.NewAuthHandler(authUsecase, logger)

	// Products + notification enqueue
	taskRepo := postgres.NewTaskRepository(pool)
	notifyQueue := queue.NewQueue(taskRepo, queue.RetryPolicy{
		MaxRetries:  cfg.NotifyMaxRetries,
		BackoffBase: time.Duration(cfg.NotifyBackoffBaseSec) * time.Second,
		BackoffCap:  time.Duration(cfg.NotifyBackoffCapSec) * time.Second,
	})
	productRepo := postgres.NewProductRepository(pool)
	productUsecase := usecase.NewProductUsecase(productRepo, notifyQueue, logger)
	productHandler := handler.NewProductHandler(productUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, productHandler, middleware.Auth(tokens)),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
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
