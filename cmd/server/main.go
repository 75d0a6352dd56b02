package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"doclib/database"
	"doclib/infrastructure/config"
	"doclib/infrastructure/factories"
	"doclib/interfaces/web"
	"doclib/logging"
	"doclib/spauth"
)

func main() {
	// Create app-wide context for graceful shutdown
	appCtx, appCancel := signal.NotifyContext(context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer appCancel()

	// Initialize configuration
	loadEnvironment()
	cfg := config.LoadAppConfigFromEnv()

	// Initialize logging
	logger := initializeLogging(cfg)

	// Initialize database
	db := initializeDatabase(cfg, logger)
	defer db.Close()

	// Build the browser stack
	stack := buildBrowserStack(cfg, db, logger)
	purgeExpiredFieldCache(appCtx, stack, logger)

	// Setup routes and start server
	router := web.NewRouter(web.Dependencies{
		DB:          db,
		Browser:     stack.Browser,
		Links:       stack.Client,
		Logger:      logger,
		HTTPLogPath: cfg.HTTPLogPath,
	})
	if err := web.Serve(appCtx, cfg.HTTPAddr, router, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func loadEnvironment() {
	if err := godotenv.Load(); err != nil {
		println("No .env file found, using environment variables")
	} else {
		println("Loaded configuration from .env file")
	}
}

func initializeLogging(cfg *config.AppConfig) *logging.Logger {
	logger := logging.NewLogger(cfg.Logging)
	logging.SetDefault(logger)

	logger.Info("Application starting",
		"version", "1.0.0",
		"log_level", cfg.Logging.Level,
		"log_format", cfg.Logging.Format,
		"db_path", cfg.Database.Path,
		"default_page_size", cfg.Browse.DefaultPageSize,
	)

	return logger
}

func initializeDatabase(cfg *config.AppConfig, logger *logging.Logger) *database.Database {
	db, err := database.New(*cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	return db
}

func buildBrowserStack(cfg *config.AppConfig, db *database.Database, logger *logging.Logger) *factories.BrowserStack {
	auth, err := spauth.FromEnv()
	if err != nil {
		logger.Error("Invalid SharePoint configuration", "error", err)
		os.Exit(1)
	}

	stack, err := factories.NewBrowserStack(cfg, auth, db)
	if err != nil {
		logger.Error("Failed to build document browser", "error", err)
		os.Exit(1)
	}

	logger.SharePoint("SharePoint client ready",
		"site_url", auth.SiteURL,
		"strategy", auth.Strategy,
		"requests_per_second", cfg.Browse.RequestsPerSecond)
	return stack
}

func purgeExpiredFieldCache(ctx context.Context, stack *factories.BrowserStack, logger *logging.Logger) {
	removed, err := stack.FieldCache.PurgeExpired(ctx)
	if err != nil {
		logger.Warn("Field cache purge failed", "error", err)
		return
	}
	if removed > 0 {
		logger.Database("Purged expired field cache entries", "removed", removed)
	}
}
