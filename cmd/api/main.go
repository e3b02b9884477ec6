package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/terrep263/lakedirectory-sub002/internal/di"
	"github.com/terrep263/lakedirectory-sub002/internal/handler"
	"github.com/terrep263/lakedirectory-sub002/internal/monitor"
	"github.com/terrep263/lakedirectory-sub002/internal/repository"
	"github.com/terrep263/lakedirectory-sub002/pkg/config"
	"github.com/terrep263/lakedirectory-sub002/pkg/database"
	"github.com/terrep263/lakedirectory-sub002/pkg/logger"
	"github.com/terrep263/lakedirectory-sub002/pkg/middleware"
	"github.com/terrep263/lakedirectory-sub002/pkg/redis"
	"github.com/terrep263/lakedirectory-sub002/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.App.Environment == "development",
		OutputPath:  "stdout",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	if cfg.OTel.Enabled {
		if _, err := telemetry.Init(ctx, &telemetry.Config{
			Enabled:        true,
			ServiceName:    cfg.OTel.ServiceName,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			CollectorAddr:  cfg.OTel.CollectorAddr,
		}); err != nil {
			logger.Fatal("failed to init telemetry", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown failed", zap.Error(err))
			}
		}()
	}

	db, err := database.NewPostgres(ctx, database.FromConfig(&cfg.Database))
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	auditLogger := middleware.NewAuditLogger(middleware.DefaultAuditConfig(db.Pool()))
	defer auditLogger.Close()

	mon := monitor.New(
		monitor.FromAppConfig(&cfg.Monitor),
		monitor.NewRedisCounter(redisClient.Client),
		repository.NewPostgresReviewTaskRepository(db.Pool()),
		logger.Get(),
	)
	mon.Start()
	defer mon.Stop()

	container := di.NewContainer(&di.ContainerConfig{
		Config:      cfg,
		DB:          db,
		Redis:       redisClient,
		Observer:    mon,
		AuditLogger: auditLogger,
	})

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handler.SetupRoutes(router, container.Handlers)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
