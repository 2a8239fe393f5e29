package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SlpAus/quiz-share-backend/internal/api"
	"github.com/SlpAus/quiz-share-backend/internal/app"
	"github.com/SlpAus/quiz-share-backend/internal/platform/config"
	"github.com/SlpAus/quiz-share-backend/internal/platform/logging"
	"github.com/SlpAus/quiz-share-backend/internal/platform/shutdown"
	"github.com/SlpAus/quiz-share-backend/pkg/lifecycle"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Color)

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start application", "err", err)
		os.Exit(1)
	}

	checker := application.NewChecker()
	if err := checker.Initialize(ctx); err != nil {
		slog.Error("store health probe failed", "err", err)
		os.Exit(1)
	}
	checker.PerformCheck(ctx)

	gracefulMgr := lifecycle.NewManager("graceful")
	forcefulMgr := lifecycle.NewManager("forceful")

	healthHandle, err := gracefulMgr.NewServiceHandle("health-checker")
	if err != nil {
		slog.Error("failed to register health checker", "err", err)
		os.Exit(1)
	}
	go checker.Start(healthHandle)

	if application.Backup != nil {
		backupHandle, err := gracefulMgr.NewServiceHandle("backup-scheduler")
		if err != nil {
			slog.Error("failed to register backup scheduler", "err", err)
			os.Exit(1)
		}
		go application.Backup.StartScheduler(backupHandle, cfg.Backup.Interval, application.Status.Healthy)
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), api.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	api.SetupRoutes(r, application.Router, application.Status)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr, cfg.Server.ShutdownTimeout)
	if application.Backup != nil {
		coordinator.OnFinal("snapshot", func(ctx context.Context) error {
			_, err := application.Backup.Snapshot(ctx)
			return err
		})
	}
	coordinator.OnFinal("close-store", func(context.Context) error {
		return application.Close()
	})

	go func() {
		slog.Info("server listening", "address", cfg.Server.Address, "backend", cfg.Storage.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "err", err)
			os.Exit(1)
		}
	}()

	coordinator.ListenForSignalsAndShutdown(server)
}
