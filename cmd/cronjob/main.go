package main

import (
	"database/sql"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"campground-backend/internal/config"
	"campground-backend/internal/jobs"
	"campground-backend/internal/logger"
	"campground-backend/internal/repository/postgres"
	"campground-backend/internal/scheduler"
	"campground-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-selections', 'debtor-reminders', 'flag-overdue', 'cash-summary', 'all-daily')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Campground Cronjob Runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Services
	notifierSvc := service.NewNotifierService(
		cfg.Gateway.URL,
		cfg.Gateway.Token,
		cfg.Email.SendGridKey,
		cfg.Email.From,
		cfg.Email.FromName,
		cfg.Email.AdminEmail,
	)
	settlementSvc := service.NewSettlementService(store, cfg.Billing.SettledThresholdCents)
	reportingSvc := service.NewReportingService(store, settlementSvc)

	jobServices := &jobs.Services{
		Reporting: reportingSvc,
		Notifier:  notifierSvc,
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store, jobServices, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutdown signal received")
	cronScheduler.Stop()
}

func runJobOnce(jr *jobs.JobRunner, name string) {
	switch name {
	case "expire-selections":
		jr.ExpireParcelSelections()
	case "debtor-reminders":
		jr.SendDebtorReminders()
	case "flag-overdue":
		jr.FlagOverdueStays()
	case "cash-summary":
		jr.SendDailyCashSummary()
	case "all-daily":
		jr.RunAllDailyJobs()
	default:
		logger.Error("Unknown job name", "job", name)
		os.Exit(1)
	}
}
