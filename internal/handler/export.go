package handler

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"prediction-dashboard/internal/analytics"

	"github.com/gin-gonic/gin"
)

// ExportCSV exports one variant's history to CSV
func (h *Handler) ExportCSV(c *gin.Context) {
	variant, ok := h.variantParam(c)
	if !ok {
		return
	}
	records := h.predictor.Records(variant)

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=history-%s.csv", variant))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// Write header
	header := []string{"timestamp", "input", "category", "model", "confidence"}
	header = append(header, variant.Classes()...)
	writer.Write(header)

	// Write data
	for _, rec := range records {
		row := []string{
			rec.Timestamp,
			analytics.InputSummary(rec),
			rec.PredictedLabel,
			string(rec.Variant),
			rec.Confidence,
		}
		for _, p := range rec.Probabilities {
			row = append(row, strconv.FormatFloat(p.Percent, 'f', 1, 64))
		}
		writer.Write(row)
	}
}

// ExportJSON exports one variant's history to JSON
func (h *Handler) ExportJSON(c *gin.Context) {
	variant, ok := h.variantParam(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=history-%s.json", variant))

	encoder := json.NewEncoder(c.Writer)
	encoder.SetIndent("", "  ")
	encoder.Encode(h.predictor.Records(variant))
}
