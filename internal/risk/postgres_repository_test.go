package risk

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresSave(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepositoryWithDB(mock)

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	factors := []Factor{{Name: "smoking", Impact: "high"}}
	encoded, err := json.Marshal(factors)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO risk_assessments").
		WithArgs("a1", "user-1", "Cardiovascular Disease", LevelHigh, 60.0,
			encoded, "See a physician.", now, "stub-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Save(context.Background(), []Assessment{{
		ID:              "a1",
		UserID:          "user-1",
		DiseaseName:     "Cardiovascular Disease",
		RiskLevel:       LevelHigh,
		RiskScore:       60,
		RiskFactors:     factors,
		Recommendations: "See a physician.",
		AssessmentDate:  now,
		ModelVersion:    "stub-1",
	}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveRequiresUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepositoryWithDB(mock)

	err = repo.Save(context.Background(), []Assessment{{ID: "a1"}})
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestPostgresListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewPostgresRepositoryWithDB(mock)

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	factors, err := json.Marshal([]Factor{{Name: "stress_level", Impact: "high"}})
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"id", "user_id", "disease_name", "risk_level", "risk_score",
		"risk_factors", "recommendations", "assessment_date", "model_version"}).
		AddRow("a1", "user-1", "Hypertension", LevelModerate, 40.0, factors, "", now, "stub-1")
	mock.ExpectQuery("SELECT id, user_id, disease_name").
		WithArgs("user-1").
		WillReturnRows(rows)

	out, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Hypertension", out[0].DiseaseName)
	require.Len(t, out[0].RiskFactors, 1)
	assert.Equal(t, "stress_level", out[0].RiskFactors[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
