package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"prediction-dashboard/internal/app"
)

var serveFlags struct {
	port string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.port, "port", "", "Listen port (overrides server.port)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(rootFlags.configPath)
	if err != nil {
		return err
	}
	if serveFlags.port != "" {
		cfg.Server.Port = serveFlags.port
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting Prediction Dashboard...", zap.String("env", cfg.App.Env))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Serve(ctx, cfg, logger)
}
