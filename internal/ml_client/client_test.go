package ml_client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"prediction-dashboard/internal/models"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

type fakeRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *fakeRecorder) ObserveCall(endpoint, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, endpoint+":"+outcome)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *fakeRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	rec := &fakeRecorder{}
	return NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, rec, zap.NewNop()), rec
}

func TestNormalize_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "nested errors message preferred",
			status:     http.StatusUnprocessableEntity,
			body:       `{"detail":{"errors":{"message":"age out of range"}},"message":"generic"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "age out of range",
		},
		{
			name:       "falls back to message",
			status:     http.StatusInternalServerError,
			body:       `{"message":"model not loaded"}`,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "model not loaded",
		},
		{
			name:       "fastapi string detail falls back to status text",
			status:     http.StatusNotFound,
			body:       `{"detail":"Not Found"}`,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Request failed with status code 404",
		},
		{
			name:       "plain text 5xx",
			status:     http.StatusBadGateway,
			body:       `upstream down`,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Request failed with status code 502",
		},
		{
			name:       "malformed json on 200",
			status:     http.StatusOK,
			body:       `{"detail": {"data": `,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "failed to decode response: invalid JSON",
		},
		{
			name:       "top level error object on 200",
			status:     http.StatusOK,
			body:       `{"error":{"message":"quota exceeded"}}`,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			res := client.PredictRisk(context.Background(), models.DefaultHeartDiseaseInput().Request())
			failure, ok := res.(Failure)
			if !ok {
				t.Fatalf("got %T, want Failure", res)
			}
			if failure.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", failure.StatusCode, tt.wantStatus)
			}
			if failure.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", failure.Message, tt.wantMsg)
			}
		})
	}
}

func TestNormalize_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(Config{BaseURL: url}, nil, zap.NewNop())
	res := client.PredictCategory(context.Background(), "card charged twice", models.SixClass)

	failure, ok := res.(Failure)
	if !ok {
		t.Fatalf("got %T, want Failure", res)
	}
	if failure.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", failure.StatusCode)
	}
	if failure.Message == "" {
		t.Error("message is empty")
	}
}

func TestNormalize_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil, zap.NewNop())
	res := client.Health(context.Background())

	failure, ok := res.(Failure)
	if !ok {
		t.Fatalf("got %T, want Failure", res)
	}
	if failure.StatusCode != http.StatusInternalServerError || failure.Message == "" {
		t.Errorf("got %+v", failure)
	}
}

func TestNormalize_EmptyErrorMessage(t *testing.T) {
	res := Normalize(context.Background(), zap.NewNop(), func(ctx context.Context) (*http.Response, error) {
		return nil, errors.New("")
	})
	want := Failure{StatusCode: http.StatusInternalServerError, Message: "Unexpected error"}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPredictRisk_SendsMappedFields(t *testing.T) {
	var got map[string]float64
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/heart_disease/predict" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %s", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"detail":{"data":{"prediction":[[0.2,0.82]]}}}`))
	})

	res := client.PredictRisk(context.Background(), models.DefaultHeartDiseaseInput().Request())
	success, ok := res.(Success)
	if !ok {
		t.Fatalf("got %T, want Success", res)
	}

	want := map[string]float64{
		"age": 50, "sex": 1, "cp": 2, "trestbps": 150, "chol": 200, "fbs": 0,
		"restecg": 1, "thalach": 180, "exang": 0, "oldpeak": 0.5, "slope": 1, "ca": 0, "thal": 1,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}

	pred, err := DecodePrediction(success)
	if err != nil {
		t.Fatalf("DecodePrediction: %v", err)
	}
	row, ok := pred.Row()
	if !ok || len(row) != 2 || row[1] != 0.82 {
		t.Errorf("row = %v, ok = %v", row, ok)
	}
	if diff := cmp.Diff([]string{"heart_disease:success"}, rec.calls); diff != "" {
		t.Errorf("recorder mismatch (-want +got):\n%s", diff)
	}
}

func TestPredictCategory_DomainErrorIsSuccess(t *testing.T) {
	var body models.ComplaintRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = w.Write([]byte(`{"detail":{"errors":{"message":"text too short"}}}`))
	})

	res := client.PredictCategory(context.Background(), "hi", models.ThreeClass)
	success, ok := res.(Success)
	if !ok {
		t.Fatalf("got %T, want Success", res)
	}
	if body.Text != "hi" || body.Model != models.ThreeClass {
		t.Errorf("request body = %+v", body)
	}

	pred, err := DecodePrediction(success)
	if err != nil {
		t.Fatalf("DecodePrediction: %v", err)
	}
	msg, isErr := pred.DomainError()
	if !isErr || msg != "text too short" {
		t.Errorf("DomainError() = %q, %v", msg, isErr)
	}
	if _, ok := pred.Row(); ok {
		t.Error("Row() reported data on an error payload")
	}
}
