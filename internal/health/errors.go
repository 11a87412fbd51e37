package health

import "errors"

var (
	// ErrSymptomNotFound is returned when a symptom record does not exist
	// or belongs to another user.
	ErrSymptomNotFound = errors.New("health: symptom record not found")

	// ErrProfileNotFound is returned when a user has no health profile yet.
	ErrProfileNotFound = errors.New("health: profile not found")

	ErrMissingUserID     = errors.New("health: user id required")
	ErrInvalidValue      = errors.New("health: metric value must be finite")
	ErrMissingMetricType = errors.New("health: metric_type required")
	ErrInvalidSeverity   = errors.New("health: severity must be between 1 and 10")
	ErrMissingSymptom    = errors.New("health: symptom name required")
	ErrInvalidDateRange  = errors.New("health: start_date must not be after end_date")
)
