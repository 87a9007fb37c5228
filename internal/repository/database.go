package repository

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

// Supported SQL database types
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

//go:embed migrations
var migrationsFS embed.FS

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewDB opens and pings the configured SQL database.
func NewDB(dbType, dataSourceName string, logger *zap.Logger) (*sqlx.DB, error) {
	if dbType != TypeSQLite && dbType != TypePostgres {
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}

	db, err := sqlx.Connect(dbType, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", dbType, err)
	}

	if dbType == TypeSQLite {
		// A single writer keeps SQLite from returning SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	logger.Info("Successfully connected to the database", zap.String("type", dbType))
	return db, nil
}

// MigrateDB applies the embedded migrations for dbType.
func MigrateDB(db *sqlx.DB, dbType string, logger *zap.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations/"+dbType)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	var driver database.Driver
	switch dbType {
	case TypeSQLite:
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	case TypePostgres:
		driver, err = postgres.WithInstance(db.DB, &postgres.Config{})
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return fmt.Errorf("couldn't get database instance for running migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "prediction_dashboard", driver)
	if err != nil {
		return fmt.Errorf("couldn't create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("couldn't run database migration: %w", err)
	}

	logger.Info("Database migration was run successfully", zap.String("type", dbType))
	return nil
}
