// Part of the doclib CLI: the root command and shared bootstrap.
package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"doclib/database"
	"doclib/infrastructure/config"
	"doclib/infrastructure/factories"
	"doclib/logging"
	"doclib/spauth"
)

var (
	envFile      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:          "doclib",
	Short:        "SharePoint document library browser",
	Long:         "doclib pages through SharePoint document libraries from the command line or over HTTP.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "json", "output format: json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")

	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(itemsCmd)
	rootCmd.AddCommand(serveCmd)
}

// app is the wired runtime shared by every subcommand.
type app struct {
	cfg    *config.AppConfig
	db     *database.Database
	stack  *factories.BrowserStack
	logger *logging.Logger
}

func (a *app) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

// bootstrap loads configuration and wires the browser. Unless logToStdout is set,
// logs go to stderr so command output on stdout stays machine readable.
func bootstrap(logToStdout bool) (*app, error) {
	// A missing dotenv file is fine; the environment may already be set.
	_ = godotenv.Load(envFile)

	cfg := config.LoadAppConfigFromEnv()
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if !logToStdout {
		cfg.Logging.Output = "stderr"
	}
	logger := logging.NewLogger(cfg.Logging)
	logging.SetDefault(logger)

	db, err := database.New(*cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	auth, err := spauth.FromEnv()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load sharepoint auth: %w", err)
	}

	stack, err := factories.NewBrowserStack(cfg, auth, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{cfg: cfg, db: db, stack: stack, logger: logger}, nil
}
