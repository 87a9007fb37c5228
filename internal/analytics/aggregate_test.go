package analytics

import (
	"errors"
	"testing"

	"prediction-dashboard/internal/models"

	"github.com/google/go-cmp/cmp"
)

func labelled(labels ...string) []models.PredictionRecord {
	out := make([]models.PredictionRecord, len(labels))
	for i, l := range labels {
		out[i] = models.PredictionRecord{Variant: models.SixClass, PredictedLabel: l}
	}
	return out
}

func TestCategoryDistribution(t *testing.T) {
	got := CategoryDistribution(labelled("A", "B", "A", "C", "A"))
	want := []CategoryCount{{"A", 3}, {"B", 1}, {"C", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if got := CategoryDistribution(nil); len(got) != 0 {
		t.Errorf("empty input: got %v", got)
	}
}

func TestCategoryDistribution_DoesNotMutate(t *testing.T) {
	in := labelled("B", "A")
	_ = CategoryDistribution(in)
	if in[0].PredictedLabel != "B" || in[1].PredictedLabel != "A" {
		t.Errorf("input reordered: %v", in)
	}
}

func TestBuildProbabilities(t *testing.T) {
	row := []float64{0.1, 0.05, 0.6, 0.1, 0.1, 0.05}
	got, err := BuildProbabilities(models.SixClass, row)
	if err != nil {
		t.Fatalf("BuildProbabilities: %v", err)
	}
	want := []models.ClassProbability{
		{Label: "Class A", Percent: 10}, {Label: "Class B", Percent: 5}, {Label: "Class C", Percent: 60},
		{Label: "Class D", Percent: 10}, {Label: "Class E", Percent: 10}, {Label: "Class F", Percent: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if len(got) != len(models.ClassCatalog[models.SixClass]) {
		t.Errorf("len = %d", len(got))
	}
}

func TestBuildProbabilities_ShapeContract(t *testing.T) {
	cases := map[string]struct {
		variant models.ModelVariant
		row     []float64
	}{
		"empty":           {models.ThreeClass, nil},
		"too short":       {models.SixClass, []float64{0.5, 0.5}},
		"too long":        {models.ThreeClass, []float64{0.25, 0.25, 0.25, 0.25}},
		"unknown variant": {models.ModelVariant("9-class"), []float64{1}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := BuildProbabilities(tc.variant, tc.row)
			if !errors.Is(err, models.ErrShapeContract) {
				t.Errorf("err = %v, want ErrShapeContract", err)
			}
		})
	}
}

func TestRoundPercent(t *testing.T) {
	cases := map[float64]float64{
		0.82:    82,
		0.1234:  12.3,
		0:       0,
		1:       100,
		0.33333: 33.3,
	}
	for in, want := range cases {
		if got := RoundPercent(in); got != want {
			t.Errorf("RoundPercent(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestArgMax(t *testing.T) {
	if got := ArgMax([]float64{0.1, 0.05, 0.6, 0.1, 0.1, 0.05}); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
	if got := ArgMax([]float64{0.5, 0.5}); got != 0 {
		t.Errorf("tie: got %d, want 0", got)
	}
	if got := ArgMax(nil); got != -1 {
		t.Errorf("empty: got %d, want -1", got)
	}
}

func TestProbabilityBreakdown(t *testing.T) {
	rec := models.PredictionRecord{
		Probabilities: []models.ClassProbability{{Label: "Class X", Percent: 20}, {Label: "Class Y", Percent: 70}, {Label: "Class Z", Percent: 10}},
	}
	want := []ChartPoint{{"Class X", 20}, {"Class Y", 70}, {"Class Z", 10}}
	if diff := cmp.Diff(want, ProbabilityBreakdown(rec)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if got := ProbabilityBreakdown(models.PredictionRecord{}); len(got) != 0 {
		t.Errorf("zero classes: got %v", got)
	}
}

func TestDashboard(t *testing.T) {
	records := []models.PredictionRecord{
		{ID: "1", Variant: models.ThreeClass, InputText: "late fee", PredictedLabel: "Class X", Confidence: "70.0%",
			Probabilities: []models.ClassProbability{{Label: "Class X", Percent: 70}, {Label: "Class Y", Percent: 20}, {Label: "Class Z", Percent: 10}}},
		{ID: "2", Variant: models.ThreeClass, InputText: "atm ate card", PredictedLabel: "Class Z", Confidence: "55.0%",
			Probabilities: []models.ClassProbability{{Label: "Class X", Percent: 15}, {Label: "Class Y", Percent: 30}, {Label: "Class Z", Percent: 55}}},
	}

	view := Dashboard(models.ThreeClass, records)
	if view.Total != 2 || len(view.Rows) != 2 {
		t.Fatalf("view = %+v", view)
	}
	if view.Latest == nil || view.Latest.ID != "2" {
		t.Errorf("latest = %+v", view.Latest)
	}
	wantBreakdown := []ChartPoint{{"Class X", 15}, {"Class Y", 30}, {"Class Z", 55}}
	if diff := cmp.Diff(wantBreakdown, view.Breakdown); diff != "" {
		t.Errorf("breakdown mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Class X", "Class Y", "Class Z"}, view.Classes); diff != "" {
		t.Errorf("classes mismatch (-want +got):\n%s", diff)
	}
	if view.Rows[1].Index != 1 || view.Rows[1].Input != "atm ate card" {
		t.Errorf("row = %+v", view.Rows[1])
	}

	empty := Dashboard(models.SixClass, nil)
	if empty.Latest != nil || len(empty.Breakdown) != 0 || len(empty.Distribution) != 0 {
		t.Errorf("empty view = %+v", empty)
	}
}

func TestInputSummary_Fields(t *testing.T) {
	rec := models.PredictionRecord{InputFields: map[string]float64{"sex": 1, "age": 50, "oldpeak": 0.5}}
	if got, want := InputSummary(rec), "age=50 oldpeak=0.5 sex=1"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
