package repository

import (
	"context"
	"fmt"
	"time"

	"prediction-dashboard/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// HistoryRepository stores one encoded history log per model variant in SQL.
type HistoryRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

type historyRow struct {
	Variant string `db:"variant"`
	Records string `db:"records"`
}

// NewHistoryRepository creates a new repository
func NewHistoryRepository(db *sqlx.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

// LoadAll returns every stored log keyed by variant.
func (r *HistoryRepository) LoadAll(ctx context.Context) (map[models.ModelVariant][]byte, error) {
	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT variant, records FROM history`); err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}

	out := make(map[models.ModelVariant][]byte, len(rows))
	for _, row := range rows {
		out[models.ModelVariant(row.Variant)] = []byte(row.Records)
	}
	return out, nil
}

// Save replaces the stored log of one variant.
func (r *HistoryRepository) Save(ctx context.Context, variant models.ModelVariant, data []byte) error {
	query := r.db.Rebind(`
		INSERT INTO history (variant, records, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (variant) DO UPDATE
		SET records = excluded.records, updated_at = excluded.updated_at
	`)

	if _, err := r.db.ExecContext(ctx, query, string(variant), string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	r.logger.Debug("History saved", zap.String("model", string(variant)), zap.Int("bytes", len(data)))
	return nil
}

// Close closes the underlying database.
func (r *HistoryRepository) Close() error {
	return r.db.Close()
}
