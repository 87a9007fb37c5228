package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New()
	m.ObserveCall("heart_disease", "success", 120*time.Millisecond)
	m.ObserveCall("heart_disease", "failure", time.Second)
	m.ObserveCall("heart_disease", "success", 80*time.Millisecond)
	m.ObserveHistory("6-class", "append", 4)

	if got := testutil.ToFloat64(m.InferenceTotal.WithLabelValues("heart_disease", "success")); got != 2 {
		t.Errorf("success calls = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HistorySize.WithLabelValues("6-class")); got != 4 {
		t.Errorf("history size = %v, want 4", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "dashboard_inference_requests_total") {
		t.Error("metrics output missing inference counter")
	}
}
