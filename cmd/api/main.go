package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/dibasaye/finance-manager/internal/cache"
	"github.com/dibasaye/finance-manager/internal/config"
	"github.com/dibasaye/finance-manager/internal/handler"
	"github.com/dibasaye/finance-manager/internal/integrations/rates"
	"github.com/dibasaye/finance-manager/internal/middleware"
	"github.com/dibasaye/finance-manager/internal/models"
	"github.com/dibasaye/finance-manager/internal/repository"
	"github.com/dibasaye/finance-manager/internal/scheduler"
	"github.com/dibasaye/finance-manager/internal/service"
	"github.com/dibasaye/finance-manager/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.Migrate(db, "postgres"); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, logger, cfg)

	if cfg.RedisAddr != "" {
		redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		svc.SetDashboardCache(cache.NewViewCache[models.DashboardStats](redisClient, time.Minute, logger))
		logger.Infof("Dashboard view cache enabled on %s", cfg.RedisAddr)
	}
	if cfg.SMTPHost != "" {
		svc.SetAlertMailer(email.NewSender(cfg, logger))
		logger.Info("Alert emails enabled")
	}
	if cfg.RefRateURL != "" {
		svc.SetReferenceRates(rates.NewClient(cfg.RefRateURL, logger))
	}

	if err := svc.BootstrapAdmin(context.Background()); err != nil {
		logger.Fatalf("Failed to bootstrap admin: %v", err)
	}

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	auth := middleware.NewAuth(cfg.JWTSecret, logger)
	h := handler.NewHandler(svc, logger)
	h.RegisterRoutes(r, auth.Handler)

	// Start scheduled jobs
	jobs := scheduler.NewScheduler(svc, logger)
	if err := jobs.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer jobs.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
