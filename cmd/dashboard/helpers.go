package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"prediction-dashboard/internal/app"
	"prediction-dashboard/internal/config"
	"prediction-dashboard/internal/models"
	"prediction-dashboard/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	highRisk     = color.New(color.FgRed, color.Bold).SprintFunc()
	moderateRisk = color.New(color.FgYellow).SprintFunc()
	lowRisk      = color.New(color.FgGreen).SprintFunc()
	dim          = color.New(color.Faint).SprintFunc()
	failed       = color.New(color.FgRed).SprintFunc()
)

// loadConfig reads the config file, falling back to defaults when it does not exist.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return config.LoadConfig(path)
}

// openApp builds the application for one command. The caller closes it.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(rootFlags.configPath)
	if err != nil {
		return nil, err
	}

	// CLI output goes to stdout; keep the logger quiet unless something is wrong.
	logger := zap.NewNop()
	if !cfg.IsDevelopment() {
		if logger, err = zap.NewProduction(zap.IncreaseLevel(zap.WarnLevel)); err != nil {
			return nil, err
		}
	}

	return app.New(cmd.Context(), cfg, logger)
}

func parseVariantArg(name string) (models.ModelVariant, error) {
	variant, err := models.ParseVariant(name)
	if err != nil {
		return "", fmt.Errorf("%w (known: %v)", err, models.Variants)
	}
	return variant, nil
}

func colorLevel(level, label string) string {
	switch level {
	case models.RiskHigh:
		return highRisk(label)
	case models.RiskModerate:
		return moderateRisk(label)
	default:
		return lowRisk(label)
	}
}

// predictionError prints the error the way the dashboard pages show it and
// returns the error to fail the command.
func predictionError(out io.Writer, err error) error {
	var transportErr *service.TransportError
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &transportErr):
		fmt.Fprintf(out, "%s\n", failed("Error"))
		fmt.Fprintf(out, "  status:  %d\n", transportErr.StatusCode)
		fmt.Fprintf(out, "  message: %s\n", transportErr.Message)
	case errors.As(err, &validationErr):
		fmt.Fprintf(out, "%s %s\n", failed("Invalid input:"), validationErr.Message)
	}
	return err
}
