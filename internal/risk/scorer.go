package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/swasthya/healthlog-platform/pkg/logging"
)

// Scorer produces risk assessments from a questionnaire. The actual scoring
// model is an external service; this package only ships transport and a
// development stub.
type Scorer interface {
	Score(ctx context.Context, userID string, factors AdditionalFactors) ([]Assessment, error)
}

// HTTPScorer calls the external scoring service.
type HTTPScorer struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewHTTPScorer creates a scorer client with sane defaults.
func NewHTTPScorer(baseURL string, timeout time.Duration, logger *logging.Logger) *HTTPScorer {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPScorer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type scoreRequest struct {
	UserID            string            `json:"user_id"`
	AdditionalFactors AdditionalFactors `json:"additional_factors"`
}

// Score posts the questionnaire and decodes the returned assessments.
func (s *HTTPScorer) Score(ctx context.Context, userID string, factors AdditionalFactors) ([]Assessment, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	body, err := json.Marshal(scoreRequest{UserID: userID, AdditionalFactors: factors})
	if err != nil {
		return nil, fmt.Errorf("risk: encode score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("risk: build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScorerFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrScorerFailed, resp.StatusCode)
	}

	var assessments []Assessment
	if err := json.NewDecoder(resp.Body).Decode(&assessments); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrScorerFailed, err)
	}
	for i := range assessments {
		if assessments[i].ID == "" {
			assessments[i].ID = uuid.NewString()
		}
		assessments[i].UserID = userID
		if assessments[i].AssessmentDate.IsZero() {
			assessments[i].AssessmentDate = time.Now().UTC()
		}
	}
	return assessments, nil
}

// StubScorer is a deterministic questionnaire-driven scorer used when no
// external service is configured. It is not a medical model.
type StubScorer struct {
	now func() time.Time
}

// NewStubScorer creates the development scorer.
func NewStubScorer() *StubScorer {
	return &StubScorer{now: func() time.Time { return time.Now().UTC() }}
}

// Score derives coarse scores from the questionnaire alone.
func (s *StubScorer) Score(ctx context.Context, userID string, factors AdditionalFactors) ([]Assessment, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	var cardiacScore float64 = 10
	var cardiacFactors []Factor
	if factors.Smoking {
		cardiacScore += 30
		cardiacFactors = append(cardiacFactors, Factor{Name: "smoking", Impact: "high"})
	}
	if factors.HighSodiumDiet {
		cardiacScore += 20
		cardiacFactors = append(cardiacFactors, Factor{Name: "high_sodium_diet", Impact: "medium"})
	}
	if factors.PhysicalActivity == "low" || factors.PhysicalActivity == "sedentary" {
		cardiacScore += 15
		cardiacFactors = append(cardiacFactors, Factor{Name: "physical_activity", Impact: "medium"})
	}

	var stressScore float64 = 5
	var stressFactors []Factor
	if factors.StressLevel == "high" {
		stressScore += 35
		stressFactors = append(stressFactors, Factor{Name: "stress_level", Impact: "high"})
	}
	if factors.SleepQuality == "poor" {
		stressScore += 25
		stressFactors = append(stressFactors, Factor{Name: "sleep_quality", Impact: "medium"})
	}
	if factors.AlcoholConsumption == "heavy" {
		stressScore += 20
		stressFactors = append(stressFactors, Factor{Name: "alcohol_consumption", Impact: "medium"})
	}

	now := s.now()
	return []Assessment{
		{
			ID:              uuid.NewString(),
			UserID:          userID,
			DiseaseName:     "Cardiovascular Disease",
			RiskLevel:       levelForScore(cardiacScore),
			RiskScore:       clampScore(cardiacScore),
			RiskFactors:     cardiacFactors,
			Recommendations: "Review lifestyle factors with a physician.",
			AssessmentDate:  now,
			ModelVersion:    "stub-1",
		},
		{
			ID:              uuid.NewString(),
			UserID:          userID,
			DiseaseName:     "Hypertension",
			RiskLevel:       levelForScore(stressScore),
			RiskScore:       clampScore(stressScore),
			RiskFactors:     stressFactors,
			AssessmentDate:  now,
			ModelVersion:    "stub-1",
		},
	}, nil
}

func levelForScore(score float64) string {
	switch {
	case score >= 75:
		return LevelCritical
	case score >= 50:
		return LevelHigh
	case score >= 25:
		return LevelModerate
	default:
		return LevelLow
	}
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

var _ Scorer = (*HTTPScorer)(nil)
var _ Scorer = (*StubScorer)(nil)
