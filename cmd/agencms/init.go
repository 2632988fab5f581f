package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/artpar/agencms/app"
	"github.com/artpar/agencms/bootstrap"
	"github.com/spf13/cobra"
)

const checkMark = "✓"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Set up a new agencms installation",
	Long: `Initialize agencms in the current directory.

This will:
  1. Write the configuration file with a fresh token signing secret
  2. Create the route definitions directory with a sample route
  3. Create the permission database
  4. Create an admin role and assign it to --admin (optional)

Examples:
  agencms init
  agencms init --admin user-1
  agencms init --config /etc/agencms/agencms.yaml --definitions /etc/agencms/routes`,
	RunE: runInit,
}

var (
	initDatabase    string
	initDefinitions string
	initAdmin       string
	initForce       bool
)

// adminPermissions are granted to the role created by init.
var adminPermissions = []string{app.PermissionAdminAccess, app.PermissionSettingsRead}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initDatabase, "database", "agencms.db", "database file path")
	initCmd.Flags().StringVar(&initDefinitions, "definitions", "routes", "route definitions directory")
	initCmd.Flags().StringVar(&initAdmin, "admin", "", "user ID to receive the admin role")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(cfgFile); err == nil && !initForce {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", cfgFile)
	}

	secret, err := generateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate secret: %w", err)
	}

	if dir := filepath.Dir(cfgFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(cfgFile, []byte(generateConfig(initDatabase, initDefinitions, secret)), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Fprintf(out, "%s Generated %s\n", checkMark, cfgFile)

	if err := os.MkdirAll(initDefinitions, 0755); err != nil {
		return fmt.Errorf("failed to create definitions directory: %w", err)
	}
	sample := filepath.Join(initDefinitions, "pages.yaml")
	if _, err := os.Stat(sample); os.IsNotExist(err) {
		if err := os.WriteFile(sample, []byte(sampleRoutes), 0644); err != nil {
			return fmt.Errorf("failed to write sample route: %w", err)
		}
		fmt.Fprintf(out, "%s Created sample route %s\n", checkMark, sample)
	}

	ctx := context.Background()
	db, store, err := bootstrap.OpenStore(ctx, initDatabase)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()
	fmt.Fprintf(out, "%s Created database %s\n", checkMark, initDatabase)

	if initAdmin != "" {
		for _, p := range adminPermissions {
			if err := store.Grant(ctx, "admin", p); err != nil {
				return fmt.Errorf("failed to grant %s: %w", p, err)
			}
		}
		if err := store.Assign(ctx, initAdmin, "admin"); err != nil {
			return fmt.Errorf("failed to assign admin role: %w", err)
		}
		fmt.Fprintf(out, "%s Assigned role admin to %s\n", checkMark, initAdmin)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	if initAdmin != "" {
		fmt.Fprintf(out, "  agencms token issue --subject %s   # bearer token for the admin UI\n", initAdmin)
	} else {
		fmt.Fprintln(out, "  agencms roles grant admin admin_access settings_read")
		fmt.Fprintln(out, "  agencms roles assign <user-id> admin")
	}
	fmt.Fprintln(out, "  agencms serve")
	return nil
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func generateConfig(database, definitions, secret string) string {
	return fmt.Sprintf(`# agencms configuration
# Generated by 'agencms init'

server:
  host: "0.0.0.0"
  port: 8080

database:
  dsn: %q

auth:
  jwt_secret: %q
  token_ttl: 24h

logging:
  level: info
  format: console

metrics:
  enabled: true

definitions:
  dir: %q
  watch: true

permissions:
  open: [admin_access]
`, database, secret, definitions)
}

const sampleRoutes = `# Every .yaml file in this directory is loaded. Edit and save to reload.
routes:
  - slug: pages
    name: Pages
    section: Content
    permission: pages
    endpoints: agencms/pages
    icon: description
    groups:
      - name: Page
        size: 8
        fields:
          - { key: title, name: Title, required: true, list: 1 }
          - { key: slug, name: Slug, mode: slug, link: title, list: 2 }
          - { key: body, name: Body, rows: 5 }
      - name: Publishing
        size: 4
        fields:
          - { key: published_at, name: Published, type: date }
          - { key: hero, name: Hero Image, type: image, ratio: { width: 16, height: 9, resize: true } }
`
