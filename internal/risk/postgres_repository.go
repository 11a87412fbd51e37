package risk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores the assessment history in the relational database.
// risk_factors keeps its ordered sequence as a jsonb array.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("risk: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB wires an arbitrary query interface, used by tests.
func NewPostgresRepositoryWithDB(db db) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save inserts assessments. Rows are never updated afterwards.
func (r *PostgresRepository) Save(ctx context.Context, assessments []Assessment) error {
	query := `
		INSERT INTO risk_assessments
			(id, user_id, disease_name, risk_level, risk_score, risk_factors, recommendations, assessment_date, model_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, a := range assessments {
		if a.UserID == "" {
			return ErrMissingUserID
		}
		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}
		factors, err := json.Marshal(a.RiskFactors)
		if err != nil {
			return fmt.Errorf("risk: encode factors: %w", err)
		}
		if _, err := r.db.Exec(ctx, query,
			id, a.UserID, a.DiseaseName, a.RiskLevel, a.RiskScore,
			factors, a.Recommendations, a.AssessmentDate, a.ModelVersion,
		); err != nil {
			return fmt.Errorf("risk: insert assessment failed: %w", err)
		}
	}
	return nil
}

// ListByUser returns the history, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Assessment, error) {
	query := `
		SELECT id, user_id, disease_name, risk_level, risk_score, risk_factors, recommendations, assessment_date, model_version
		FROM risk_assessments
		WHERE user_id = $1
		ORDER BY assessment_date DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("risk: list assessments failed: %w", err)
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		var a Assessment
		var factors []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.DiseaseName, &a.RiskLevel, &a.RiskScore,
			&factors, &a.Recommendations, &a.AssessmentDate, &a.ModelVersion); err != nil {
			return nil, fmt.Errorf("risk: scan assessment failed: %w", err)
		}
		if len(factors) > 0 {
			if err := json.Unmarshal(factors, &a.RiskFactors); err != nil {
				return nil, fmt.Errorf("risk: decode factors: %w", err)
			}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("risk: iterate assessments failed: %w", err)
	}
	return out, nil
}

var _ Repository = (*PostgresRepository)(nil)
