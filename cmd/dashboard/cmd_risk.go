package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"prediction-dashboard/internal/models"
)

var riskInput = models.DefaultHeartDiseaseInput()

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Assess heart disease risk for one patient",
	Long: `Sends the clinical fields to the heart disease model and prints the risk level.
Chest pain type, slope and thal use the form's 1-based codes.`,
	RunE: runRisk,
}

func init() {
	f := riskCmd.Flags()
	f.IntVar(&riskInput.Age, "age", riskInput.Age, "Age in years")
	f.IntVar(&riskInput.Sex, "sex", riskInput.Sex, "Sex (0 female, 1 male)")
	f.IntVar(&riskInput.ChestPainType, "chest-pain", riskInput.ChestPainType, "Chest pain type (1-4)")
	f.IntVar(&riskInput.RestingBP, "resting-bp", riskInput.RestingBP, "Resting blood pressure (mm Hg)")
	f.IntVar(&riskInput.Cholesterol, "cholesterol", riskInput.Cholesterol, "Serum cholesterol (mg/dl)")
	f.IntVar(&riskInput.FastingBS, "fasting-bs", riskInput.FastingBS, "Fasting blood sugar > 120 mg/dl (0/1)")
	f.IntVar(&riskInput.RestECG, "rest-ecg", riskInput.RestECG, "Resting ECG result (0-2)")
	f.IntVar(&riskInput.MaxHR, "max-hr", riskInput.MaxHR, "Maximum heart rate achieved")
	f.IntVar(&riskInput.ExerciseAngina, "exercise-angina", riskInput.ExerciseAngina, "Exercise induced angina (0/1)")
	f.Float64Var(&riskInput.Oldpeak, "oldpeak", riskInput.Oldpeak, "ST depression induced by exercise")
	f.IntVar(&riskInput.Slope, "slope", riskInput.Slope, "Slope of peak exercise ST segment (1-3)")
	f.IntVar(&riskInput.CA, "ca", riskInput.CA, "Major vessels colored by fluoroscopy (0-4)")
	f.IntVar(&riskInput.Thal, "thal", riskInput.Thal, "Thalassemia (1-4)")
}

func runRisk(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	rec, err := a.Predictor.AssessRisk(cmd.Context(), rootFlags.session, riskInput)
	if err != nil {
		return predictionError(out, err)
	}

	fmt.Fprintf(out, "Prediction: %s\n", colorLevel(rec.Level, rec.PredictedLabel))
	fmt.Fprintf(out, "Confidence: %s%%\n", rec.Confidence)
	fmt.Fprintf(out, "%s\n", dim(rec.Timestamp))
	return nil
}
