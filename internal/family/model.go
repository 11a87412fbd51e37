package family

import (
	"strings"
	"time"

	"github.com/swasthya/healthlog-platform/internal/health"
	"github.com/swasthya/healthlog-platform/internal/risk"
)

// Access levels control how much of a relative's health data the viewer sees.
const (
	AccessFull    = "full"
	AccessLimited = "limited"
	AccessNone    = "none"
)

// Member links a user to a relative. The nested health summary is assembled
// at read time and gated by AccessLevel; it is never stored.
type Member struct {
	UserID        string         `json:"user_id"`
	RelativeID    string         `json:"relative_id"`
	Name          string         `json:"name"`
	Relationship  string         `json:"relationship"`
	AccessLevel   string         `json:"access_level"`
	HealthSummary *HealthSummary `json:"health_summary,omitempty"`
}

// HealthSummary is the gated view of a relative's health state.
// RecentSymptoms is populated only for full access.
type HealthSummary struct {
	BMI                  float64                `json:"bmi,omitempty"`
	BMICategory          string                 `json:"bmi_category,omitempty"`
	LatestRiskAssessment *risk.Assessment       `json:"latest_risk_assessment,omitempty"`
	RecentSymptoms       []health.SymptomRecord `json:"recent_symptoms,omitempty"`
}

// HistoryEntry is one hereditary-condition record. Entries are append-only
// per relationship bucket.
type HistoryEntry struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ConditionName  string    `json:"condition_name"`
	Relationship   string    `json:"relationship"`
	AgeAtDiagnosis int       `json:"age_at_diagnosis,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AddMemberRequest is the body for POST /api/users/{id}/family-members.
type AddMemberRequest struct {
	RelativeID       string `json:"relative_id"`
	Name             string `json:"name,omitempty"`
	RelationshipType string `json:"relationship_type"`
	AccessLevel      string `json:"access_level"`
}

// Validate enforces required fields and the access-level enum. An empty
// access level defaults to limited.
func (r *AddMemberRequest) Validate() error {
	if strings.TrimSpace(r.RelativeID) == "" {
		return ErrMissingRelativeID
	}
	if strings.TrimSpace(r.RelationshipType) == "" {
		return ErrMissingRelationship
	}
	switch r.AccessLevel {
	case "":
		r.AccessLevel = AccessLimited
	case AccessFull, AccessLimited, AccessNone:
	default:
		return ErrInvalidAccessLevel
	}
	return nil
}

// AddHistoryRequest is the body for POST /api/users/{id}/family-history.
type AddHistoryRequest struct {
	ConditionName  string `json:"condition_name"`
	Relationship   string `json:"relationship"`
	AgeAtDiagnosis int    `json:"age_at_diagnosis,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// Validate enforces required history fields.
func (r *AddHistoryRequest) Validate() error {
	if strings.TrimSpace(r.ConditionName) == "" {
		return ErrMissingCondition
	}
	if strings.TrimSpace(r.Relationship) == "" {
		return ErrMissingRelationship
	}
	return nil
}

// DashboardPayload is the response of GET /api/users/{id}/family-dashboard.
// History is bucketed by relationship.
type DashboardPayload struct {
	FamilyMembers       []Member                  `json:"family_members"`
	FamilyHealthHistory map[string][]HistoryEntry `json:"family_health_history"`
}
