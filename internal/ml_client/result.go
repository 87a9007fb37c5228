package ml_client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

const unexpectedError = "Unexpected error"

// Result is the outcome of one call to the inference service.
// It is always either a Success or a Failure; callers must type switch on it.
type Result interface {
	result()
}

// Success carries the raw response body of a completed call.
type Success struct {
	StatusCode int
	Payload    json.RawMessage
}

// Failure describes a call that did not produce a usable response.
type Failure struct {
	StatusCode int
	Message    string
}

func (Success) result() {}
func (Failure) result() {}

// Call performs exactly one HTTP round trip.
type Call func(ctx context.Context) (*http.Response, error)

// Normalize runs call and folds every way it can fail into a Failure.
// It never retries.
func Normalize(ctx context.Context, logger *zap.Logger, call Call) Result {
	resp, err := call(ctx)
	if err != nil {
		logger.Error("Inference request failed", zap.Error(err))
		msg := err.Error()
		if msg == "" {
			msg = unexpectedError
		}
		return Failure{StatusCode: http.StatusInternalServerError, Message: msg}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Failed to read inference response",
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return Failure{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf("failed to read response: %v", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fallback := fmt.Sprintf("Request failed with status code %d", resp.StatusCode)
		msg := extractMessage(body, fallback)
		logger.Error("Inference service returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return Failure{StatusCode: resp.StatusCode, Message: msg}
	}

	if !json.Valid(body) {
		logger.Error("Inference service returned malformed body",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return Failure{
			StatusCode: http.StatusInternalServerError,
			Message:    "failed to decode response: invalid JSON",
		}
	}

	// Gateway style bodies can report an error with a 2xx status.
	if msg, ok := topLevelError(body); ok {
		logger.Error("Inference service embedded an error", zap.String("message", msg))
		return Failure{StatusCode: http.StatusInternalServerError, Message: msg}
	}

	return Success{StatusCode: resp.StatusCode, Payload: json.RawMessage(body)}
}

// extractMessage picks the most specific message from an error body:
// detail.errors.message, then message, then error.message, then fallback.
func extractMessage(body []byte, fallback string) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nonEmpty(fallback)
	}

	if msg := nestedMessage(fields["detail"], "errors"); msg != "" {
		return msg
	}
	if msg := stringField(fields["message"]); msg != "" {
		return msg
	}
	if msg, ok := topLevelError(body); ok {
		return msg
	}
	return nonEmpty(fallback)
}

func topLevelError(body []byte) (string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", false
	}
	raw, ok := fields["error"]
	if !ok || string(raw) == "null" {
		return "", false
	}
	if msg := stringField(raw); msg != "" {
		return msg, true
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return nonEmpty(obj.Message), true
	}
	return "", false
}

func nestedMessage(raw json.RawMessage, key string) string {
	if len(raw) == 0 {
		return ""
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return ""
	}
	var inner struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(obj[key], &inner); err != nil {
		return ""
	}
	return inner.Message
}

func stringField(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func nonEmpty(msg string) string {
	if msg == "" {
		return unexpectedError
	}
	return msg
}
