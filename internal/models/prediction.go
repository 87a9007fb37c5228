package models

import "time"

// Risk levels reported by the heart disease model
const (
	RiskLow      = "low"
	RiskModerate = "moderate"
	RiskHigh     = "high"
)

// ClassProbability is one labelled entry of a probability vector, in percent.
type ClassProbability struct {
	Label   string  `json:"label"`
	Percent float64 `json:"percent"`
}

// PredictionRecord is one persisted history entry.
type PredictionRecord struct {
	ID                string             `json:"id"`
	Variant           ModelVariant       `json:"model"`
	InputText         string             `json:"text,omitempty"`
	InputFields       map[string]float64 `json:"input_fields,omitempty"`
	PredictedLabel    string             `json:"category"`
	Level             string             `json:"level,omitempty"` // Risk level, heart disease only
	ConfidencePercent float64            `json:"confidence_percent"`
	Confidence        string             `json:"confidence"` // Display form, e.g. "60.0%" or "82.00"
	Probabilities     []ClassProbability `json:"probabilities"`
	Timestamp         string             `json:"timestamp"`
	CreatedAt         time.Time          `json:"created_at"`
}

// ComplaintRequest is the body sent to the complaint classification endpoint.
type ComplaintRequest struct {
	Text  string       `json:"text"`
	Model ModelVariant `json:"model"`
}

// HeartDiseaseInput holds the clinical fields as entered on the form.
// Chest pain type, slope and thal are 1-based here and shifted to the
// 0-based codes the model expects by Request.
type HeartDiseaseInput struct {
	Age            int     `json:"age" binding:"min=0,max=120"`
	Sex            int     `json:"sex" binding:"min=0,max=1"`
	ChestPainType  int     `json:"chestPainType" binding:"required,min=1,max=4"`
	RestingBP      int     `json:"restingBP" binding:"required,min=80,max=250"`
	Cholesterol    int     `json:"cholesterol" binding:"required,min=100,max=600"`
	FastingBS      int     `json:"fastingBS" binding:"min=0,max=1"`
	RestECG        int     `json:"restECG" binding:"min=0,max=2"`
	MaxHR          int     `json:"maxHR" binding:"required,min=50,max=250"`
	ExerciseAngina int     `json:"exerciseAngina" binding:"min=0,max=1"`
	Oldpeak        float64 `json:"oldpeak" binding:"min=0,max=10"`
	Slope          int     `json:"slope" binding:"required,min=1,max=3"`
	CA             int     `json:"ca" binding:"min=0,max=4"`
	Thal           int     `json:"thal" binding:"required,min=1,max=4"`
}

// DefaultHeartDiseaseInput returns the form's initial values.
func DefaultHeartDiseaseInput() HeartDiseaseInput {
	return HeartDiseaseInput{
		Age:           50,
		Sex:           1,
		ChestPainType: 3,
		RestingBP:     150,
		Cholesterol:   200,
		RestECG:       1,
		MaxHR:         180,
		Oldpeak:       0.5,
		Slope:         2,
		Thal:          2,
	}
}

// RiskRequest is the body sent to the heart disease endpoint.
type RiskRequest struct {
	Age      int     `json:"age"`
	Sex      int     `json:"sex"`
	CP       int     `json:"cp"`
	Trestbps int     `json:"trestbps"`
	Chol     int     `json:"chol"`
	Fbs      int     `json:"fbs"`
	Restecg  int     `json:"restecg"`
	Thalach  int     `json:"thalach"`
	Exang    int     `json:"exang"`
	Oldpeak  float64 `json:"oldpeak"`
	Slope    int     `json:"slope"`
	CA       int     `json:"ca"`
	Thal     int     `json:"thal"`
}

// Request maps form fields onto the model's request schema.
func (in HeartDiseaseInput) Request() RiskRequest {
	return RiskRequest{
		Age:      in.Age,
		Sex:      in.Sex,
		CP:       in.ChestPainType - 1,
		Trestbps: in.RestingBP,
		Chol:     in.Cholesterol,
		Fbs:      in.FastingBS,
		Restecg:  in.RestECG,
		Thalach:  in.MaxHR,
		Exang:    in.ExerciseAngina,
		Oldpeak:  in.Oldpeak,
		Slope:    in.Slope - 1,
		CA:       in.CA,
		Thal:     in.Thal - 1,
	}
}

// Fields flattens the request into the map kept on history records.
func (r RiskRequest) Fields() map[string]float64 {
	return map[string]float64{
		"age":      float64(r.Age),
		"sex":      float64(r.Sex),
		"cp":       float64(r.CP),
		"trestbps": float64(r.Trestbps),
		"chol":     float64(r.Chol),
		"fbs":      float64(r.Fbs),
		"restecg":  float64(r.Restecg),
		"thalach":  float64(r.Thalach),
		"exang":    float64(r.Exang),
		"oldpeak":  r.Oldpeak,
		"slope":    float64(r.Slope),
		"ca":       float64(r.CA),
		"thal":     float64(r.Thal),
	}
}
