package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"prediction-dashboard/internal/config"
	"prediction-dashboard/internal/ml_client"

	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Serve builds the application and serves the HTTP API until ctx is done,
// then shuts the server down gracefully.
func Serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	dashboard, err := New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer dashboard.Close()

	if _, ok := dashboard.Client.Health(ctx).(ml_client.Success); ok {
		logger.Info("Inference service reachable", zap.String("url", cfg.MLService.URL))
	} else {
		logger.Warn("Inference service not reachable yet", zap.String("url", cfg.MLService.URL))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: dashboard.Router(logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("Prediction Dashboard is running",
		zap.String("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Type),
		zap.Bool("auth", cfg.Auth.JWTSecret != ""))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
