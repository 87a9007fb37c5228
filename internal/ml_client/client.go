package ml_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"prediction-dashboard/internal/models"

	"go.uber.org/zap"
)

// Endpoint labels used for logging and metrics
const (
	EndpointRisk      = "heart_disease"
	EndpointComplaint = "banking_complaint"
	EndpointHealth    = "health"
)

// Recorder receives the outcome of every call. It may be nil.
type Recorder interface {
	ObserveCall(endpoint, outcome string, elapsed time.Duration)
}

// Config holds configuration for the inference client.
type Config struct {
	BaseURL       string
	RiskPath      string
	ComplaintPath string
	Timeout       time.Duration
}

// Client is a client for the ML inference API
type Client struct {
	baseURL       string
	riskPath      string
	complaintPath string
	httpClient    *http.Client
	recorder      Recorder
	logger        *zap.Logger
}

// NewClient creates a new inference client
func NewClient(cfg Config, recorder Recorder, logger *zap.Logger) *Client {
	if cfg.RiskPath == "" {
		cfg.RiskPath = "/heart_disease/predict"
	}
	if cfg.ComplaintPath == "" {
		cfg.ComplaintPath = "/banking_complaint/predict"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		riskPath:      cfg.RiskPath,
		complaintPath: cfg.ComplaintPath,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		recorder:      recorder,
		logger:        logger,
	}
}

// PredictRisk sends the clinical fields to the heart disease model.
func (c *Client) PredictRisk(ctx context.Context, req models.RiskRequest) Result {
	return c.post(ctx, EndpointRisk, c.riskPath, req)
}

// PredictCategory sends complaint text to the selected classifier.
func (c *Client) PredictCategory(ctx context.Context, text string, variant models.ModelVariant) Result {
	return c.post(ctx, EndpointComplaint, c.complaintPath, models.ComplaintRequest{
		Text:  text,
		Model: variant,
	})
}

// Health checks if the inference service is reachable
func (c *Client) Health(ctx context.Context) Result {
	return c.run(ctx, EndpointHealth, func(ctx context.Context) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		return c.httpClient.Do(req)
	})
}

func (c *Client) post(ctx context.Context, endpoint, path string, body any) Result {
	return c.run(ctx, endpoint, func(ctx context.Context) (*http.Response, error) {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		return c.httpClient.Do(req)
	})
}

func (c *Client) run(ctx context.Context, endpoint string, call Call) Result {
	start := time.Now()
	res := Normalize(ctx, c.logger.With(zap.String("endpoint", endpoint)), call)

	outcome := "success"
	if _, failed := res.(Failure); failed {
		outcome = "failure"
	}
	if c.recorder != nil {
		c.recorder.ObserveCall(endpoint, outcome, time.Since(start))
	}

	c.logger.Debug("Inference call finished",
		zap.String("endpoint", endpoint),
		zap.String("outcome", outcome),
		zap.Duration("elapsed", time.Since(start)))

	return res
}
