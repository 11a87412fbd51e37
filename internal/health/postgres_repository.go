package health

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// PostgresRepository stores health logs in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("health: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB wires an arbitrary query interface, used by tests.
func NewPostgresRepositoryWithDB(db db) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AddMetrics inserts validated samples one per row.
func (r *PostgresRepository) AddMetrics(ctx context.Context, userID string, reqs []AddMetricRequest) ([]MetricSample, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	for i := range reqs {
		if err := reqs[i].Validate(); err != nil {
			return nil, err
		}
	}

	query := `
		INSERT INTO health_metrics (id, user_id, metric_type, value, unit, source, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING recorded_at
	`
	created := make([]MetricSample, 0, len(reqs))
	for _, req := range reqs {
		id := uuid.New()
		recordedAt := req.RecordedAt
		if recordedAt.IsZero() {
			recordedAt = time.Now().UTC()
		}
		var stored time.Time
		if err := r.db.QueryRow(ctx, query,
			id, userID, req.MetricType, req.Value, req.Unit, req.Source, recordedAt,
		).Scan(&stored); err != nil {
			return nil, fmt.Errorf("health: insert metric failed: %w", err)
		}
		created = append(created, MetricSample{
			ID:         id.String(),
			UserID:     userID,
			MetricType: req.MetricType,
			Value:      req.Value,
			Unit:       req.Unit,
			Source:     req.Source,
			RecordedAt: stored,
		})
	}
	return created, nil
}

// ListMetrics returns samples within the window, oldest first.
func (r *PostgresRepository) ListMetrics(ctx context.Context, userID string, window TimeWindow) ([]MetricSample, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	query := `
		SELECT id, user_id, metric_type, value, unit, source, recorded_at
		FROM health_metrics
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR recorded_at >= $2)
		  AND ($3::timestamptz IS NULL OR recorded_at < $3 + interval '1 day')
		ORDER BY recorded_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("health: list metrics failed: %w", err)
	}
	defer rows.Close()

	var out []MetricSample
	for rows.Next() {
		var s MetricSample
		if err := rows.Scan(&s.ID, &s.UserID, &s.MetricType, &s.Value, &s.Unit, &s.Source, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("health: scan metric failed: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("health: iterate metrics failed: %w", err)
	}
	return out, nil
}

// CreateSymptom inserts a new symptom record.
func (r *PostgresRepository) CreateSymptom(ctx context.Context, userID string, req *CreateSymptomRequest) (*SymptomRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	recordedAt := req.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO symptom_records
			(id, user_id, symptom_id, symptom_name, severity, notes, medication_taken, doctor_visited, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING symptom_name
	`
	var name string
	if err := r.db.QueryRow(ctx, query,
		id, userID, req.SymptomID, req.SymptomName, req.Severity,
		req.Notes, req.MedicationTaken, req.DoctorVisited, recordedAt,
	).Scan(&name); err != nil {
		return nil, fmt.Errorf("health: insert symptom failed: %w", err)
	}

	return &SymptomRecord{
		ID:              id.String(),
		UserID:          userID,
		SymptomID:       req.SymptomID,
		SymptomName:     name,
		Severity:        req.Severity,
		Notes:           req.Notes,
		MedicationTaken: req.MedicationTaken,
		DoctorVisited:   req.DoctorVisited,
		RecordedAt:      recordedAt,
	}, nil
}

// ListSymptoms returns records within the window, newest first.
func (r *PostgresRepository) ListSymptoms(ctx context.Context, userID string, window TimeWindow) ([]SymptomRecord, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	query := `
		SELECT id, user_id, symptom_id, symptom_name, severity, notes, medication_taken, doctor_visited, recorded_at
		FROM symptom_records
		WHERE user_id = $1
		  AND ($2::timestamptz IS NULL OR recorded_at >= $2)
		  AND ($3::timestamptz IS NULL OR recorded_at < $3 + interval '1 day')
		ORDER BY recorded_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("health: list symptoms failed: %w", err)
	}
	defer rows.Close()

	var out []SymptomRecord
	for rows.Next() {
		var s SymptomRecord
		if err := rows.Scan(&s.ID, &s.UserID, &s.SymptomID, &s.SymptomName, &s.Severity,
			&s.Notes, &s.MedicationTaken, &s.DoctorVisited, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("health: scan symptom failed: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("health: iterate symptoms failed: %w", err)
	}
	return out, nil
}

// DeleteSymptom hard-deletes a record scoped to its owner.
func (r *PostgresRepository) DeleteSymptom(ctx context.Context, userID, recordID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM symptom_records WHERE id = $1 AND user_id = $2`, recordID, userID)
	if err != nil {
		return fmt.Errorf("health: delete symptom failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSymptomNotFound
	}
	return nil
}

// ListCatalog returns the symptom catalog.
func (r *PostgresRepository) ListCatalog(ctx context.Context) ([]CatalogSymptom, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, category FROM symptom_catalog ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("health: list catalog failed: %w", err)
	}
	defer rows.Close()

	var out []CatalogSymptom
	for rows.Next() {
		var c CatalogSymptom
		if err := rows.Scan(&c.ID, &c.Name, &c.Category); err != nil {
			return nil, fmt.Errorf("health: scan catalog failed: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("health: iterate catalog failed: %w", err)
	}
	return out, nil
}

// GetProfile returns the user's health profile.
func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	query := `
		SELECT user_id, name, age, gender, height_cm, weight_kg, blood_type, updated_at
		FROM health_profiles
		WHERE user_id = $1
	`
	var p Profile
	if err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Name, &p.Age, &p.Gender, &p.HeightCM, &p.WeightKG, &p.BloodType, &p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("health: select profile failed: %w", err)
	}
	return &p, nil
}

// UpsertProfile creates or patches the profile row. COALESCE keeps stored
// values where the request field is zero.
func (r *PostgresRepository) UpsertProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*Profile, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO health_profiles (user_id, name, age, gender, height_cm, weight_kg, blood_type, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (user_id) DO UPDATE SET
			name       = COALESCE(NULLIF(EXCLUDED.name, ''), health_profiles.name),
			age        = COALESCE(NULLIF(EXCLUDED.age, 0), health_profiles.age),
			gender     = COALESCE(NULLIF(EXCLUDED.gender, ''), health_profiles.gender),
			height_cm  = COALESCE(NULLIF(EXCLUDED.height_cm, 0), health_profiles.height_cm),
			weight_kg  = COALESCE(NULLIF(EXCLUDED.weight_kg, 0), health_profiles.weight_kg),
			blood_type = COALESCE(NULLIF(EXCLUDED.blood_type, ''), health_profiles.blood_type),
			updated_at = now()
		RETURNING user_id, name, age, gender, height_cm, weight_kg, blood_type, updated_at
	`
	var p Profile
	if err := r.db.QueryRow(ctx, query,
		userID, req.Name, req.Age, req.Gender, req.HeightCM, req.WeightKG, req.BloodType,
	).Scan(&p.UserID, &p.Name, &p.Age, &p.Gender, &p.HeightCM, &p.WeightKG, &p.BloodType, &p.UpdatedAt); err != nil {
		return nil, fmt.Errorf("health: upsert profile failed: %w", err)
	}
	return &p, nil
}

var _ Repository = (*PostgresRepository)(nil)
