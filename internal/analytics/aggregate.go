// Package analytics derives chart and table view models from prediction history.
// Every function here is pure: inputs are never mutated.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"prediction-dashboard/internal/models"
)

// CategoryCount is one slice of the category distribution chart.
type CategoryCount struct {
	Label string `json:"name"`
	Count int    `json:"value"`
}

// ChartPoint is one bar of the probability breakdown chart.
type ChartPoint struct {
	Label string  `json:"name"`
	Value float64 `json:"value"`
}

// HistoryRow is one line of the history table.
type HistoryRow struct {
	Index      int    `json:"index"`
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	Input      string `json:"input"`
	Category   string `json:"category"`
	Model      string `json:"model"`
	Confidence string `json:"confidence"`
}

// HistoryView is everything the dashboard renders for one variant.
type HistoryView struct {
	Variant      models.ModelVariant      `json:"model"`
	Classes      []string                 `json:"classes"`
	Total        int                      `json:"total"`
	Rows         []HistoryRow             `json:"rows"`
	Distribution []CategoryCount          `json:"distribution"`
	Latest       *models.PredictionRecord `json:"latest,omitempty"`
	Breakdown    []ChartPoint             `json:"breakdown"`
}

// CategoryDistribution counts records per predicted label. The result is
// sorted by label so that charts render in a stable order.
func CategoryDistribution(records []models.PredictionRecord) []CategoryCount {
	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.PredictedLabel]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for label, n := range counts {
		out = append(out, CategoryCount{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// ProbabilityBreakdown returns the record's class probabilities in catalog order.
func ProbabilityBreakdown(record models.PredictionRecord) []ChartPoint {
	out := make([]ChartPoint, 0, len(record.Probabilities))
	for _, p := range record.Probabilities {
		out = append(out, ChartPoint{Label: p.Label, Value: p.Percent})
	}
	return out
}

// BuildProbabilities labels a probability vector with the variant's catalog.
// Percentages are rounded to one decimal place.
func BuildProbabilities(variant models.ModelVariant, row []float64) ([]models.ClassProbability, error) {
	catalog := models.ClassCatalog[variant]
	if len(row) == 0 || len(row) != len(catalog) {
		return nil, fmt.Errorf("%w: %s expects %d classes, got %d",
			models.ErrShapeContract, variant, len(catalog), len(row))
	}

	out := make([]models.ClassProbability, len(row))
	for i, p := range row {
		out[i] = models.ClassProbability{Label: catalog[i], Percent: RoundPercent(p)}
	}
	return out, nil
}

// RoundPercent converts a probability to a percentage with one decimal.
func RoundPercent(p float64) float64 {
	return math.Round(p*1000) / 10
}

// ArgMax returns the index of the largest value; ties go to the lowest index.
func ArgMax(row []float64) int {
	best := -1
	for i, p := range row {
		if best < 0 || p > row[best] {
			best = i
		}
	}
	return best
}

// Dashboard assembles the full view for one variant's history.
func Dashboard(variant models.ModelVariant, records []models.PredictionRecord) HistoryView {
	view := HistoryView{
		Variant:      variant,
		Classes:      variant.Classes(),
		Total:        len(records),
		Rows:         make([]HistoryRow, 0, len(records)),
		Distribution: CategoryDistribution(records),
		Breakdown:    []ChartPoint{},
	}

	for i, rec := range records {
		view.Rows = append(view.Rows, HistoryRow{
			Index:      i,
			ID:         rec.ID,
			Timestamp:  rec.Timestamp,
			Input:      InputSummary(rec),
			Category:   rec.PredictedLabel,
			Model:      string(rec.Variant),
			Confidence: rec.Confidence,
		})
	}

	if len(records) > 0 {
		latest := records[len(records)-1]
		view.Latest = &latest
		view.Breakdown = ProbabilityBreakdown(latest)
	}

	return view
}

// InputSummary renders a record's input for the history table.
func InputSummary(rec models.PredictionRecord) string {
	if rec.InputText != "" || len(rec.InputFields) == 0 {
		return rec.InputText
	}

	keys := make([]string, 0, len(rec.InputFields))
	for k := range rec.InputFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, rec.InputFields[k]))
	}
	return strings.Join(parts, " ")
}
