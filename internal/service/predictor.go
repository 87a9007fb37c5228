package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"prediction-dashboard/internal/analytics"
	"prediction-dashboard/internal/history"
	"prediction-dashboard/internal/ml_client"
	"prediction-dashboard/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InferenceClient interface for the remote prediction API
type InferenceClient interface {
	PredictRisk(ctx context.Context, req models.RiskRequest) ml_client.Result
	PredictCategory(ctx context.Context, text string, variant models.ModelVariant) ml_client.Result
}

// TransportError is a Failure from the inference service: network problems or
// an error status. It is shown as a full error page.
type TransportError struct {
	StatusCode int
	Message    string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("inference service error (%d): %s", e.StatusCode, e.Message)
}

// ValidationError is an input problem reported inside a successful response.
// It is shown next to the form and never stored.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Predictor runs predictions, interprets payloads and records history
type Predictor struct {
	client   InferenceClient
	store    *history.Store
	sessions *Sessions
	logger   *zap.Logger
	now      func() time.Time
}

// NewPredictor creates a new predictor service
func NewPredictor(client InferenceClient, store *history.Store, logger *zap.Logger) *Predictor {
	return &Predictor{
		client:   client,
		store:    store,
		sessions: NewSessions(),
		logger:   logger,
		now:      time.Now,
	}
}

// RiskLevel maps the probability of disease onto a level.
func RiskLevel(p float64) string {
	switch {
	case p > 0.75:
		return models.RiskHigh
	case p > 0.5:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}

// RiskLabel is the display label for a level.
func RiskLabel(level string) string {
	switch level {
	case models.RiskHigh:
		return "High Risk"
	case models.RiskModerate:
		return "Moderate Risk"
	default:
		return "Low Risk"
	}
}

// AssessRisk runs the heart disease model and records the result.
func (p *Predictor) AssessRisk(ctx context.Context, sessionID string, input models.HeartDiseaseInput) (*models.PredictionRecord, error) {
	sess := p.sessions.Get(sessionID)
	generation := sess.Target(models.HeartDisease)

	req := input.Request()
	probs, row, err := p.interpret(models.HeartDisease, p.client.PredictRisk(ctx, req))
	if err != nil {
		return nil, err
	}

	risk := row[1] // probability of class 1 (disease)
	level := RiskLevel(risk)
	now := p.now()

	rec := models.PredictionRecord{
		ID:                uuid.New().String(),
		Variant:           models.HeartDisease,
		InputFields:       req.Fields(),
		PredictedLabel:    RiskLabel(level),
		Level:             level,
		ConfidencePercent: math.Round(risk*10000) / 100,
		Confidence:        fmt.Sprintf("%.2f", risk*100),
		Probabilities:     probs,
		Timestamp:         now.Format("3:04:05 PM"),
		CreatedAt:         now,
	}

	return p.record(ctx, sess, generation, rec)
}

// ClassifyComplaint runs the selected complaint classifier and records the result.
func (p *Predictor) ClassifyComplaint(ctx context.Context, sessionID, text string, variant models.ModelVariant) (*models.PredictionRecord, error) {
	if !variant.IsComplaintModel() {
		return nil, fmt.Errorf("%w: %q is not a complaint model", models.ErrUnknownVariant, variant)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &ValidationError{Message: "complaint text is required"}
	}

	sess := p.sessions.Get(sessionID)
	generation := sess.Target(variant)

	probs, row, err := p.interpret(variant, p.client.PredictCategory(ctx, text, variant))
	if err != nil {
		return nil, err
	}

	best := analytics.ArgMax(row)
	now := p.now()

	rec := models.PredictionRecord{
		ID:                uuid.New().String(),
		Variant:           variant,
		InputText:         text,
		PredictedLabel:    models.ClassCatalog[variant][best],
		ConfidencePercent: analytics.RoundPercent(row[best]),
		Confidence:        fmt.Sprintf("%.1f%%", row[best]*100),
		Probabilities:     probs,
		Timestamp:         now.Format("3:04:05 PM"),
		CreatedAt:         now,
	}

	return p.record(ctx, sess, generation, rec)
}

// SwitchVariant points the session at another model. Results still in flight
// for the previous model no longer become the current result.
func (p *Predictor) SwitchVariant(sessionID string, variant models.ModelVariant) error {
	if _, err := models.ParseVariant(string(variant)); err != nil {
		return err
	}
	p.sessions.Get(sessionID).Target(variant)
	return nil
}

// Current returns the session's active model and the result shown for it.
func (p *Predictor) Current(sessionID string) (models.ModelVariant, *models.PredictionRecord) {
	return p.sessions.Get(sessionID).Current()
}

// History builds the dashboard view for one variant.
func (p *Predictor) History(variant models.ModelVariant) analytics.HistoryView {
	return analytics.Dashboard(variant, p.store.Records(variant))
}

// Records returns the raw history of one variant.
func (p *Predictor) Records(variant models.ModelVariant) []models.PredictionRecord {
	return p.store.Records(variant)
}

// RemoveEntry deletes one history entry; out of range indexes are ignored.
func (p *Predictor) RemoveEntry(ctx context.Context, variant models.ModelVariant, index int) error {
	return p.store.Remove(ctx, variant, index)
}

// ClearHistory empties one variant's history.
func (p *Predictor) ClearHistory(ctx context.Context, variant models.ModelVariant) error {
	return p.store.Clear(ctx, variant)
}

// interpret turns a Result into labelled probabilities and the raw row.
func (p *Predictor) interpret(variant models.ModelVariant, res ml_client.Result) ([]models.ClassProbability, []float64, error) {
	switch r := res.(type) {
	case ml_client.Failure:
		return nil, nil, &TransportError{StatusCode: r.StatusCode, Message: r.Message}

	case ml_client.Success:
		pred, err := ml_client.DecodePrediction(r)
		if err != nil {
			return nil, nil, p.shapeViolation(variant, fmt.Errorf("%w: %v", models.ErrShapeContract, err))
		}
		if msg, ok := pred.DomainError(); ok {
			p.logger.Info("Inference service rejected input",
				zap.String("model", string(variant)),
				zap.String("message", msg))
			return nil, nil, &ValidationError{Message: msg}
		}
		row, ok := pred.Row()
		if !ok {
			return nil, nil, p.shapeViolation(variant, fmt.Errorf("%w: prediction is missing", models.ErrShapeContract))
		}
		probs, err := analytics.BuildProbabilities(variant, row)
		if err != nil {
			return nil, nil, p.shapeViolation(variant, err)
		}
		return probs, row, nil

	default:
		return nil, nil, &TransportError{StatusCode: http.StatusInternalServerError, Message: fmt.Sprintf("unexpected result %T", res)}
	}
}

// shapeViolation logs a broken data contract. With a development logger
// DPanic panics, so the mismatch cannot go unnoticed.
func (p *Predictor) shapeViolation(variant models.ModelVariant, err error) error {
	p.logger.DPanic("Prediction does not match class catalog",
		zap.String("model", string(variant)),
		zap.Error(err))
	return err
}

func (p *Predictor) record(ctx context.Context, sess *Session, generation uint64, rec models.PredictionRecord) (*models.PredictionRecord, error) {
	if err := p.store.Append(ctx, rec.Variant, rec); err != nil {
		if errors.Is(err, models.ErrShapeContract) {
			return nil, p.shapeViolation(rec.Variant, err)
		}
		return nil, fmt.Errorf("failed to record prediction: %w", err)
	}

	if !sess.Offer(generation, &rec) {
		p.logger.Info("Discarding stale result",
			zap.String("model", string(rec.Variant)),
			zap.String("id", rec.ID))
	}

	p.logger.Info("Prediction recorded",
		zap.String("model", string(rec.Variant)),
		zap.String("category", rec.PredictedLabel),
		zap.String("confidence", rec.Confidence))

	return &rec, nil
}
