package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	httpapi "campground-backend/internal/api/http"
	"campground-backend/internal/config"
	"campground-backend/internal/logger"
	"campground-backend/internal/repository/postgres"
	"campground-backend/internal/security"
	"campground-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Campground Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	authMW := httpapi.NewAuthMiddleware(tokenManager)

	// Initialize Services
	notifierSvc := service.NewNotifierService(
		cfg.Gateway.URL,
		cfg.Gateway.Token,
		cfg.Email.SendGridKey,
		cfg.Email.From,
		cfg.Email.FromName,
		cfg.Email.AdminEmail,
	)
	staySvc := service.NewStayService(store, notifierSvc)
	parcelSvc := service.NewParcelService(store, time.Duration(cfg.Billing.SelectionTTLMinutes)*time.Minute)
	fusionSvc := service.NewFusionService(store, cfg.Billing.TentMergePolicy)
	settlementSvc := service.NewSettlementService(store, cfg.Billing.SettledThresholdCents)
	reportingSvc := service.NewReportingService(store, settlementSvc)
	tariffSvc := service.NewTariffService(store)
	authSvc := service.NewAuthService(store, tokenManager)

	// Initialize HTTP handlers
	authHandler := httpapi.NewAuthHandler(authSvc)
	stayHandler := httpapi.NewStayHandler(staySvc, fusionSvc, settlementSvc)
	parcelHandler := httpapi.NewParcelHandler(parcelSvc)
	reportHandler := httpapi.NewReportHandler(reportingSvc, tariffSvc)

	router := httpapi.NewRouter(authMW, authHandler, stayHandler, parcelHandler, reportHandler)

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
