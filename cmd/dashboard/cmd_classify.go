package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"prediction-dashboard/internal/models"
)

var classifyFlags struct {
	model string
}

var classifyCmd = &cobra.Command{
	Use:   "classify [complaint text]",
	Short: "Classify a banking complaint",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyFlags.model, "model", "m", string(models.SixClass), "Classifier variant (6-class or 3-class)")
}

func runClassify(cmd *cobra.Command, args []string) error {
	variant, err := parseVariantArg(classifyFlags.model)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	rec, err := a.Predictor.ClassifyComplaint(cmd.Context(), rootFlags.session, strings.Join(args, " "), variant)
	if err != nil {
		return predictionError(out, err)
	}

	fmt.Fprintf(out, "Category:   %s\n", rec.PredictedLabel)
	fmt.Fprintf(out, "Confidence: %s\n", rec.Confidence)
	for _, p := range rec.Probabilities {
		fmt.Fprintf(out, "  %-10s %5.1f%%\n", p.Label, p.Percent)
	}
	return nil
}
