package risk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubScorerDeterministic(t *testing.T) {
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	scorer := NewStubScorer()
	scorer.now = func() time.Time { return now }

	factors := AdditionalFactors{
		Smoking:          true,
		HighSodiumDiet:   true,
		PhysicalActivity: "low",
		StressLevel:      "high",
		SleepQuality:     "poor",
	}
	assessments, err := scorer.Score(context.Background(), "user-1", factors)
	require.NoError(t, err)
	require.Len(t, assessments, 2)

	cardiac := assessments[0]
	assert.Equal(t, "Cardiovascular Disease", cardiac.DiseaseName)
	assert.Equal(t, 75.0, cardiac.RiskScore)
	assert.Equal(t, LevelCritical, cardiac.RiskLevel)
	assert.Len(t, cardiac.RiskFactors, 3)
	assert.Equal(t, now, cardiac.AssessmentDate)

	stress := assessments[1]
	assert.Equal(t, "Hypertension", stress.DiseaseName)
	assert.Equal(t, 65.0, stress.RiskScore)
	assert.Equal(t, LevelHigh, stress.RiskLevel)
}

func TestStubScorerBaseline(t *testing.T) {
	scorer := NewStubScorer()
	assessments, err := scorer.Score(context.Background(), "user-1", AdditionalFactors{})
	require.NoError(t, err)
	for _, a := range assessments {
		assert.Equal(t, LevelLow, a.RiskLevel)
		assert.Empty(t, a.RiskFactors)
	}
}

func TestStubScorerRequiresUserID(t *testing.T) {
	scorer := NewStubScorer()
	_, err := scorer.Score(context.Background(), "", AdditionalFactors{})
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{10, LevelLow},
		{25, LevelModerate},
		{49, LevelModerate},
		{50, LevelHigh},
		{75, LevelCritical},
		{100, LevelCritical},
	}
	for _, tt := range tests {
		if got := levelForScore(tt.score); got != tt.want {
			t.Errorf("levelForScore(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestHTTPScorer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/score", r.URL.Path)

		var req struct {
			UserID string `json:"user_id"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "user-1", req.UserID)

		_ = json.NewEncoder(w).Encode([]Assessment{
			{DiseaseName: "Diabetes", RiskLevel: LevelModerate, RiskScore: 40},
		})
	}))
	defer srv.Close()

	scorer := NewHTTPScorer(srv.URL, 5*time.Second, nil)
	assessments, err := scorer.Score(context.Background(), "user-1", AdditionalFactors{})
	require.NoError(t, err)
	require.Len(t, assessments, 1)
	// The client fills in identity fields the service omits.
	assert.NotEmpty(t, assessments[0].ID)
	assert.Equal(t, "user-1", assessments[0].UserID)
	assert.False(t, assessments[0].AssessmentDate.IsZero())
}

func TestHTTPScorerUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	scorer := NewHTTPScorer(srv.URL, 5*time.Second, nil)
	_, err := scorer.Score(context.Background(), "user-1", AdditionalFactors{})
	assert.ErrorIs(t, err, ErrScorerFailed)
}
