package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/artpar/agencms/bootstrap"
	"github.com/artpar/agencms/ports"
	"github.com/spf13/cobra"
)

var (
	dumpActor  string
	dumpEmail  string
	dumpMemory bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the configuration document served to a user",
	Long: `Build the configuration document exactly as GET /agencms/config would
for the given user and print it as JSON.

Examples:
  agencms dump --actor user-1
  agencms dump --actor user-1 --config /etc/agencms/config.yaml`,
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringVar(&dumpActor, "actor", "", "user ID (required)")
	dumpCmd.Flags().StringVar(&dumpEmail, "email", "", "user email")
	dumpCmd.Flags().BoolVar(&dumpMemory, "memory", false, "use an empty in-memory permission store")
	dumpCmd.MarkFlagRequired("actor")
}

func runDump(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Definitions.Watch = false
	cfg.Metrics.Enabled = false

	logger := bootstrap.SetupLogger(cfg.Logging, os.Stderr)

	app, err := bootstrap.New(cfg, logger, bootstrap.Options{Memory: dumpMemory, Version: version})
	if err != nil {
		return fmt.Errorf("error initializing: %w", err)
	}
	defer app.Shutdown()

	doc, err := app.Service.Build(context.Background(), ports.Actor{ID: dumpActor, Email: dumpEmail})
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
