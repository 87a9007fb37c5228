package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"prediction-dashboard/internal/middleware"
)

var tokenFlags struct {
	subject string
	role    string
	ttl     time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the history management routes",
	RunE:  runToken,
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenFlags.subject, "subject", "operator", "Token subject")
	f.StringVar(&tokenFlags.role, "role", "admin", "Token role")
	f.DurationVar(&tokenFlags.ttl, "ttl", 24*time.Hour, "Token lifetime")
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(rootFlags.configPath)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured")
	}

	token, err := middleware.IssueToken([]byte(cfg.Auth.JWTSecret), tokenFlags.subject, tokenFlags.role, tokenFlags.ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
