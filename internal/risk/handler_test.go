package risk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swasthya/healthlog-platform/pkg/logging"
)

type failingScorer struct{}

func (failingScorer) Score(ctx context.Context, userID string, factors AdditionalFactors) ([]Assessment, error) {
	return nil, ErrScorerFailed
}

type failingRepo struct{}

func (failingRepo) Save(ctx context.Context, assessments []Assessment) error {
	return errors.New("db down")
}

func (failingRepo) ListByUser(ctx context.Context, userID string) ([]Assessment, error) {
	return nil, errors.New("db down")
}

func newTestRouter(repo Repository, scorer Scorer) *chi.Mux {
	h := NewHandler(repo, scorer, logging.New("error"))
	r := chi.NewRouter()
	r.Get("/api/users/{id}/risk-assessments", h.ListAssessments)
	r.Post("/api/users/{id}/predict-health-risks", h.Predict)
	return r
}

func TestListAssessments(t *testing.T) {
	repo := NewInMemoryRepository()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(context.Background(), []Assessment{
		{ID: "a1", UserID: "user-1", DiseaseName: "Hypertension", RiskLevel: LevelModerate, AssessmentDate: now.Add(-time.Hour)},
		{ID: "a2", UserID: "user-1", DiseaseName: "Hypertension", RiskLevel: LevelHigh, AssessmentDate: now},
	}))
	router := newTestRouter(repo, NewStubScorer())

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/risk-assessments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out []Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "a2", out[0].ID, "history should be newest first")
}

func TestListAssessmentsEmptyIsArray(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository(), NewStubScorer())

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/risk-assessments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestPredict(t *testing.T) {
	repo := NewInMemoryRepository()
	router := newTestRouter(repo, NewStubScorer())

	body := `{"additional_factors":{"smoking":true,"stress_level":"high"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/user-1/predict-health-risks", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var out []Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 2)

	stored, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, stored, 2, "predictions should be persisted")
}

func TestPredictScorerUnavailable(t *testing.T) {
	router := newTestRouter(NewInMemoryRepository(), failingScorer{})

	req := httptest.NewRequest(http.MethodPost, "/api/users/user-1/predict-health-risks", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPredictSaveFailure(t *testing.T) {
	router := newTestRouter(failingRepo{}, NewStubScorer())

	req := httptest.NewRequest(http.MethodPost, "/api/users/user-1/predict-health-risks", bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
