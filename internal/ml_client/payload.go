package ml_client

import (
	"encoding/json"
	"fmt"
)

// PredictionResponse is the envelope returned by both prediction endpoints.
type PredictionResponse struct {
	Detail struct {
		Data *struct {
			Prediction [][]float64 `json:"prediction"`
		} `json:"data,omitempty"`
		Errors *struct {
			Message string `json:"message"`
		} `json:"errors,omitempty"`
	} `json:"detail"`
}

// DecodePrediction parses a successful payload.
func DecodePrediction(s Success) (*PredictionResponse, error) {
	var resp PredictionResponse
	if err := json.Unmarshal(s.Payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode prediction: %w", err)
	}
	return &resp, nil
}

// DomainError reports a validation error the service embedded in a
// successful response.
func (r *PredictionResponse) DomainError() (string, bool) {
	if r.Detail.Errors == nil {
		return "", false
	}
	if r.Detail.Errors.Message == "" {
		return "Invalid input", true
	}
	return r.Detail.Errors.Message, true
}

// Row returns prediction[0], the probability vector for the single input.
func (r *PredictionResponse) Row() ([]float64, bool) {
	if r.Detail.Data == nil || len(r.Detail.Data.Prediction) == 0 {
		return nil, false
	}
	return r.Detail.Data.Prediction[0], true
}
