package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"alerthub/internal/api"
	"alerthub/internal/channel"
	"alerthub/internal/config"
	"alerthub/internal/dispatch"
	"alerthub/internal/logging"
	"alerthub/internal/reminder"
	"alerthub/internal/repository"
	"alerthub/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DB.SeedDemo {
		if err := db.SeedDemoData(ctx); err != nil {
			logging.Fatalf("Failed to seed demo data: %v", err)
		}
	}

	// Channel registry; the in-app inbox is always available, the rest is
	// opt-in.
	registry := channel.NewRegistry()
	inbox := channel.NewInAppChannel()
	registry.Register(inbox)
	if cfg.Channels.EmailEnabled {
		registry.Register(channel.NewEmailChannel())
	}
	if cfg.Channels.SMSEnabled {
		registry.Register(channel.NewSMSChannel())
	}

	dispatcher := dispatch.NewDispatcher(registry, db, cfg.Dispatch.Workers, cfg.Dispatch.TaskTimeout)
	alertService := service.NewAlertService(db, db, db, dispatcher)
	analyticsService := service.NewAnalyticsService(db)

	// Background reminder loop
	scheduler := reminder.NewScheduler(cfg.Reminder.Interval, db, db, alertService, dispatcher)
	scheduler.Start(ctx)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(alertService, analyticsService, inbox)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
