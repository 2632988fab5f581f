package main

import (
	"fmt"
	"os"

	"github.com/artpar/agencms/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "agencms",
	Short: "Configuration service for the agencms admin UI",
	Long: `agencms serves the configuration document the admin UI renders:
routes, their field groups, and the endpoints each user may call.

Quick start:
  agencms init --admin ID    # Write config, sample routes and an admin role
  agencms serve              # Start the server
  agencms validate routes/   # Check route definitions

Management:
  agencms roles     # Manage roles and permissions
  agencms token     # Issue bearer tokens
  agencms dump      # Print the document served to a user`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "agencms.yaml", "config file path")
}

// loadConfig loads the config file, falling back to AGENCMS_* variables when
// it does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithFallback(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
