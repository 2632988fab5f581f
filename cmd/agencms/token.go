package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/artpar/agencms/adapters/auth"
	"github.com/artpar/agencms/ports"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue bearer tokens",
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a bearer token for a user",
	Long: `Issue a signed bearer token for GET /agencms/config.

The token is signed with auth.jwt_secret, which must be set so the server
accepts it.

Examples:
  agencms token issue --subject user-1
  agencms token issue --subject user-1 --email ada@example.com --ttl 1h`,
	RunE: runTokenIssue,
}

var (
	tokenSubject string
	tokenEmail   string
	tokenTTL     time.Duration
)

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)

	tokenIssueCmd.Flags().StringVar(&tokenSubject, "subject", "", "user ID (required)")
	tokenIssueCmd.Flags().StringVar(&tokenEmail, "email", "", "user email")
	tokenIssueCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default: auth.token_ttl)")
	tokenIssueCmd.MarkFlagRequired("subject")
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must be set to issue tokens")
	}

	ttl := cfg.Auth.TokenTTL
	if tokenTTL > 0 {
		ttl = tokenTTL
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
	token, expiresAt, err := tokens.GenerateToken(ports.Actor{ID: tokenSubject, Email: tokenEmail})
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
