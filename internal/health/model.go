package health

import (
	"math"
	"strings"
	"time"
)

// MetricSample is a timestamped numeric health measurement. Samples are
// append-only: they are created by manual entry or device sync and never
// mutated afterwards.
type MetricSample struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	Source     string    `json:"source"`
	RecordedAt time.Time `json:"recorded_at"`
}

// SymptomRecord is a user-reported symptom occurrence. Severity is stored on
// the canonical 1-10 scale; chart-axis views derive the 3-point band from it.
type SymptomRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	SymptomID       string    `json:"symptom_id,omitempty"`
	SymptomName     string    `json:"symptom_name"`
	Severity        int       `json:"severity"`
	Notes           string    `json:"notes,omitempty"`
	MedicationTaken string    `json:"medication_taken,omitempty"`
	DoctorVisited   bool      `json:"doctor_visited"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// CatalogSymptom is an entry in the global symptom catalog.
type CatalogSymptom struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// Profile holds the per-user health data surfaced by /api/user/health.
type Profile struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	HeightCM  float64   `json:"height_cm,omitempty"`
	WeightKG  float64   `json:"weight_kg,omitempty"`
	BloodType string    `json:"blood_type,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BMI returns the body-mass index, or 0 when height/weight are unset.
func (p *Profile) BMI() float64 {
	if p == nil || p.HeightCM <= 0 || p.WeightKG <= 0 {
		return 0
	}
	h := p.HeightCM / 100
	bmi := p.WeightKG / (h * h)
	return math.Round(bmi*10) / 10
}

// BMICategory buckets the BMI into the standard bands.
func (p *Profile) BMICategory() string {
	bmi := p.BMI()
	switch {
	case bmi == 0:
		return ""
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}

// Summary is the health_summary block of the dashboard payload.
type Summary struct {
	BMI            float64    `json:"bmi,omitempty"`
	BMICategory    string     `json:"bmi_category,omitempty"`
	MetricCount    int        `json:"metric_count"`
	SymptomCount   int        `json:"symptom_count"`
	LastRecordedAt *time.Time `json:"last_recorded_at,omitempty"`
}

// TimeWindow bounds a query by recorded_at. Nil bounds mean unbounded.
type TimeWindow struct {
	Start *time.Time
	End   *time.Time
}

// Validate rejects inverted windows.
func (w TimeWindow) Validate() error {
	if w.Start != nil && w.End != nil && w.Start.After(*w.End) {
		return ErrInvalidDateRange
	}
	return nil
}

// Contains reports whether t falls inside the window. The end bound is
// inclusive of the whole end day since callers pass bare dates.
func (w TimeWindow) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(w.End.Add(24*time.Hour-time.Nanosecond)) {
		return false
	}
	return true
}

// AddMetricRequest is a single metric submission. A batch request is a JSON
// array of these.
type AddMetricRequest struct {
	MetricType string    `json:"metric_type"`
	Value      float64   `json:"value"`
	Unit       string    `json:"unit"`
	Source     string    `json:"source"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Validate enforces the sample invariants before anything touches storage.
func (r *AddMetricRequest) Validate() error {
	if strings.TrimSpace(r.MetricType) == "" {
		return ErrMissingMetricType
	}
	if math.IsNaN(r.Value) || math.IsInf(r.Value, 0) {
		return ErrInvalidValue
	}
	return nil
}

// CreateSymptomRequest is the body for POST /api/users/{id}/symptoms.
type CreateSymptomRequest struct {
	SymptomID       string    `json:"symptom_id,omitempty"`
	SymptomName     string    `json:"symptom_name"`
	Severity        int       `json:"severity"`
	Notes           string    `json:"notes,omitempty"`
	MedicationTaken string    `json:"medication_taken,omitempty"`
	DoctorVisited   bool      `json:"doctor_visited"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// Validate enforces the severity scale and required fields.
func (r *CreateSymptomRequest) Validate() error {
	if strings.TrimSpace(r.SymptomName) == "" && strings.TrimSpace(r.SymptomID) == "" {
		return ErrMissingSymptom
	}
	if r.Severity < 1 || r.Severity > 10 {
		return ErrInvalidSeverity
	}
	return nil
}

// UpdateProfileRequest is the body for POST /api/user/health.
type UpdateProfileRequest struct {
	Name      string  `json:"name,omitempty"`
	Age       int     `json:"age,omitempty"`
	Gender    string  `json:"gender,omitempty"`
	HeightCM  float64 `json:"height_cm,omitempty"`
	WeightKG  float64 `json:"weight_kg,omitempty"`
	BloodType string  `json:"blood_type,omitempty"`
}

// Validate rejects non-finite or negative measurements.
func (r *UpdateProfileRequest) Validate() error {
	for _, v := range []float64{r.HeightCM, r.WeightKG} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return ErrInvalidValue
		}
	}
	return nil
}
