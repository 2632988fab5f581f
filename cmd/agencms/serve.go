package main

import (
	"fmt"
	"os"

	"github.com/artpar/agencms/bootstrap"
	"github.com/spf13/cobra"
)

var (
	serveMemory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the configuration server",
	Long: `Start the agencms server.

The server will:
  - Load configuration from agencms.yaml (or --config)
  - Or load configuration from AGENCMS_* environment variables
  - Open the permission database
  - Load route definitions and watch them for changes
  - Serve GET /agencms/config to authenticated users

Environment variables:
  AGENCMS_DATABASE_DSN      - Database path (default: agencms.db)
  AGENCMS_SERVER_PORT       - Server port (default: 8080)
  AGENCMS_AUTH_JWT_SECRET   - Token signing secret
  AGENCMS_DEFINITIONS_DIR   - Route definitions directory
  AGENCMS_LOG_LEVEL         - Log level: debug, info, warn, error

Examples:
  agencms serve
  agencms serve --config /etc/agencms/config.yaml
  agencms serve --memory`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "keep roles in memory instead of the database")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := bootstrap.SetupLogger(cfg.Logging, os.Stdout)

	app, err := bootstrap.New(cfg, logger, bootstrap.Options{
		Memory:  serveMemory,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}

	return app.Run()
}
