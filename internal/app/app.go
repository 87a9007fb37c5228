package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"prediction-dashboard/internal/config"
	"prediction-dashboard/internal/handler"
	"prediction-dashboard/internal/history"
	"prediction-dashboard/internal/metrics"
	"prediction-dashboard/internal/middleware"
	"prediction-dashboard/internal/ml_client"
	"prediction-dashboard/internal/repository"
	"prediction-dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App bundles the components shared by the server and the CLI.
type App struct {
	Config    *config.Config
	Metrics   *metrics.Metrics
	Client    *ml_client.Client
	Store     *history.Store
	Predictor *service.Predictor
	// Auth is nil unless a JWT secret and an operator password hash are set.
	Auth *service.Authenticator

	closers []func() error
}

// NewLogger returns a development logger unless the config asks for production.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// New builds the inference client, history backend and predictor from cfg.
// The persisted history is loaded before New returns.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{
		Config:  cfg,
		Metrics: metrics.New(),
	}

	a.Client = ml_client.NewClient(ml_client.Config{
		BaseURL:       cfg.MLService.URL,
		RiskPath:      cfg.MLService.RiskPath,
		ComplaintPath: cfg.MLService.ComplaintPath,
		Timeout:       cfg.MLTimeout(),
	}, a.Metrics, logger)

	backend, err := a.openBackend(ctx, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Store = history.NewStore(backend, a.Metrics, logger)
	a.Store.Load(ctx)

	a.Predictor = service.NewPredictor(a.Client, a.Store, logger)

	if cfg.Auth.JWTSecret != "" && cfg.Auth.OperatorPasswordHash != "" {
		a.Auth = service.NewAuthenticator(cfg.Auth.OperatorUser, cfg.Auth.OperatorPasswordHash,
			[]byte(cfg.Auth.JWTSecret), cfg.TokenTTL(), logger)
	}
	return a, nil
}

func (a *App) openBackend(ctx context.Context, logger *zap.Logger) (history.Backend, error) {
	cfg := a.Config

	switch cfg.Database.Type {
	case repository.TypeRedis:
		client, err := repository.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		repo := repository.NewRedisHistoryRepository(client, logger)
		a.closers = append(a.closers, repo.Close)
		logger.Info("History backend ready", zap.String("type", "redis"), zap.String("addr", cfg.Redis.Addr))
		return repo, nil

	case repository.TypeSQLite, repository.TypePostgres:
		if cfg.Database.Type == repository.TypeSQLite {
			// Create data directory if not exists
			if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}

		db, err := repository.NewDB(cfg.Database.Type, cfg.Database.Path, logger)
		if err != nil {
			return nil, err
		}
		if err := repository.MigrateDB(db, cfg.Database.Type, logger); err != nil {
			db.Close()
			return nil, err
		}
		repo := repository.NewHistoryRepository(db, logger)
		a.closers = append(a.closers, repo.Close)
		logger.Info("History backend ready", zap.String("type", cfg.Database.Type))
		return repo, nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
}

// Router builds the gin engine serving the API and /metrics.
func (a *App) Router(logger *zap.Logger) *gin.Engine {
	if !a.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(middleware.CORS())

	handler.NewHandler(a.Predictor, a.Auth, logger).RegisterRoutes(router, []byte(a.Config.Auth.JWTSecret))
	router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))
	return router
}

// Close releases the history backend.
func (a *App) Close() error {
	var first error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}
