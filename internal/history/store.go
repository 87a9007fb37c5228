// Package history keeps the per-variant log of past predictions and flushes
// every change to a durable Backend before returning.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"prediction-dashboard/internal/models"

	"go.uber.org/zap"
)

// Backend is the durable key-value layout: one encoded log per variant.
type Backend interface {
	LoadAll(ctx context.Context) (map[models.ModelVariant][]byte, error)
	Save(ctx context.Context, variant models.ModelVariant, data []byte) error
}

// Observer is notified after every successful mutation. It may be nil.
type Observer interface {
	ObserveHistory(variant, op string, size int)
}

// Store is the in-memory view of the history log.
type Store struct {
	mu       sync.Mutex
	logs     map[models.ModelVariant][]models.PredictionRecord
	backend  Backend
	observer Observer
	logger   *zap.Logger
}

// NewStore creates an empty store. Call Load before serving.
func NewStore(backend Backend, observer Observer, logger *zap.Logger) *Store {
	return &Store{
		logs:     emptyLogs(),
		backend:  backend,
		observer: observer,
		logger:   logger,
	}
}

func emptyLogs() map[models.ModelVariant][]models.PredictionRecord {
	logs := make(map[models.ModelVariant][]models.PredictionRecord, len(models.Variants))
	for _, v := range models.Variants {
		logs[v] = []models.PredictionRecord{}
	}
	return logs
}

// Load replaces the in-memory log with the persisted one. Any read or decode
// failure leaves every variant empty; it is never returned as an error.
// A corrupt log is overwritten with empty logs so the next Load sees the
// same state. Rows stored under unknown models are ignored.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = emptyLogs()

	stored, err := s.backend.LoadAll(ctx)
	if err != nil {
		s.logger.Warn("Failed to read persisted history, starting empty", zap.Error(err))
		return
	}

	decoded := emptyLogs()
	for variant, data := range stored {
		if _, err := models.ParseVariant(string(variant)); err != nil {
			s.logger.Warn("Ignoring history stored under unknown model", zap.String("model", string(variant)))
			continue
		}
		records, err := Decode(variant, data)
		if err != nil {
			s.logger.Warn("Persisted history is corrupt, starting empty",
				zap.String("model", string(variant)),
				zap.Error(err))
			s.resetBackend(ctx)
			return
		}
		decoded[variant] = records
	}

	s.logs = decoded
	for v, records := range s.logs {
		s.logger.Info("History loaded", zap.String("model", string(v)), zap.Int("records", len(records)))
	}
}

// resetBackend persists an empty log for every variant.
// Must be called with s.mu held.
func (s *Store) resetBackend(ctx context.Context) {
	data, err := Encode(nil)
	if err != nil {
		s.logger.Warn("Failed to encode empty history", zap.Error(err))
		return
	}
	for _, v := range models.Variants {
		if err := s.backend.Save(ctx, v, data); err != nil {
			s.logger.Warn("Failed to reset persisted history",
				zap.String("model", string(v)),
				zap.Error(err))
		}
	}
}

// Append adds a record at the end of the variant's log.
func (s *Store) Append(ctx context.Context, variant models.ModelVariant, record models.PredictionRecord) error {
	if _, err := models.ParseVariant(string(variant)); err != nil {
		return err
	}
	record.Variant = variant
	if err := validate(variant, record); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.logs[variant]
	next := make([]models.PredictionRecord, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, record)

	return s.commit(ctx, variant, "append", next)
}

// Remove deletes the record at index. An index outside the log is a no-op.
func (s *Store) Remove(ctx context.Context, variant models.ModelVariant, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.logs[variant]
	if !ok || index < 0 || index >= len(prev) {
		s.logger.Debug("Ignoring remove outside history range",
			zap.String("model", string(variant)),
			zap.Int("index", index))
		return nil
	}

	next := make([]models.PredictionRecord, 0, len(prev)-1)
	next = append(next, prev[:index]...)
	next = append(next, prev[index+1:]...)

	return s.commit(ctx, variant, "remove", next)
}

// Clear empties the variant's log.
func (s *Store) Clear(ctx context.Context, variant models.ModelVariant) error {
	if _, err := models.ParseVariant(string(variant)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commit(ctx, variant, "clear", []models.PredictionRecord{})
}

// Records returns a copy of the variant's log in chronological order.
func (s *Store) Records(variant models.ModelVariant) []models.PredictionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.PredictionRecord, len(s.logs[variant]))
	copy(out, s.logs[variant])
	return out
}

// Latest returns the most recent record of the variant.
func (s *Store) Latest(variant models.ModelVariant) (models.PredictionRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.logs[variant]
	if len(log) == 0 {
		return models.PredictionRecord{}, false
	}
	return log[len(log)-1], true
}

// commit flushes next to the backend and only then swaps it in.
// Must be called with s.mu held.
func (s *Store) commit(ctx context.Context, variant models.ModelVariant, op string, next []models.PredictionRecord) error {
	data, err := Encode(next)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, variant, data); err != nil {
		s.logger.Error("Failed to persist history",
			zap.String("model", string(variant)),
			zap.String("op", op),
			zap.Error(err))
		return fmt.Errorf("failed to persist history: %w", err)
	}

	s.logs[variant] = next
	if s.observer != nil {
		s.observer.ObserveHistory(string(variant), op, len(next))
	}
	return nil
}

// Encode serializes one variant's log.
func Encode(records []models.PredictionRecord) ([]byte, error) {
	if records == nil {
		records = []models.PredictionRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return data, nil
}

// Decode parses one variant's log. Unknown fields, trailing data and records
// that break the class catalog are all rejected.
func Decode(variant models.ModelVariant, data []byte) ([]models.PredictionRecord, error) {
	if _, err := models.ParseVariant(string(variant)); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var records []models.PredictionRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("failed to decode history: trailing data")
	}
	if records == nil {
		records = []models.PredictionRecord{}
	}

	for i, rec := range records {
		if rec.Variant != variant {
			return nil, fmt.Errorf("record %d belongs to %q, stored under %q", i, rec.Variant, variant)
		}
		if err := validate(variant, rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return records, nil
}

func validate(variant models.ModelVariant, rec models.PredictionRecord) error {
	if rec.PredictedLabel == "" {
		return fmt.Errorf("%w: missing predicted label", models.ErrShapeContract)
	}
	if want := len(models.ClassCatalog[variant]); len(rec.Probabilities) != want {
		return fmt.Errorf("%w: %s expects %d classes, got %d",
			models.ErrShapeContract, variant, want, len(rec.Probabilities))
	}
	return nil
}
