package risk

import (
	"strings"
	"time"
)

// Risk levels produced by the scoring service.
const (
	LevelLow      = "low"
	LevelModerate = "moderate"
	LevelHigh     = "high"
	LevelCritical = "critical"
)

// Factor is one contributing risk factor. Order matters and is preserved.
type Factor struct {
	Name   string `json:"name"`
	Impact string `json:"impact"` // low, medium, high
}

// Assessment is an externally computed disease-risk record. Immutable once
// created; assessments accumulate as a history.
type Assessment struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	DiseaseName     string    `json:"disease_name"`
	RiskLevel       string    `json:"risk_level"`
	RiskScore       float64   `json:"risk_score"`
	RiskFactors     []Factor  `json:"risk_factors"`
	Recommendations string    `json:"recommendations,omitempty"`
	AssessmentDate  time.Time `json:"assessment_date"`
	ModelVersion    string    `json:"model_version"`
}

// AdditionalFactors is the lifestyle questionnaire sent with a prediction
// request.
type AdditionalFactors struct {
	Smoking            bool   `json:"smoking"`
	PhysicalActivity   string `json:"physical_activity"`
	HighSodiumDiet     bool   `json:"high_sodium_diet"`
	StressLevel        string `json:"stress_level"`
	SleepQuality       string `json:"sleep_quality"`
	AlcoholConsumption string `json:"alcohol_consumption"`
}

// PredictRequest is the body of POST /api/users/{id}/predict-health-risks.
type PredictRequest struct {
	AdditionalFactors AdditionalFactors `json:"additional_factors"`
}

// ValidLevel reports whether the scoring service returned a known level.
// Unknown levels are stored as-is; rendering falls back to a default class.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case LevelLow, LevelModerate, LevelHigh, LevelCritical:
		return true
	}
	return false
}
