package family

import (
	"context"
	"errors"
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

// PostgresRepository stores family relations in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("family: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB wires an arbitrary query interface, used by tests.
func NewPostgresRepositoryWithDB(db db) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AddMember inserts a relation. The (user_id, relative_id) pair is unique.
func (r *PostgresRepository) AddMember(ctx context.Context, userID string, req *AddMemberRequest) (*Member, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO family_members (user_id, relative_id, name, relationship, access_level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING user_id, relative_id, name, relationship, access_level
	`
	var m Member
	if err := r.db.QueryRow(ctx, query,
		userID, req.RelativeID, req.Name, req.RelationshipType, req.AccessLevel,
	).Scan(&m.UserID, &m.RelativeID, &m.Name, &m.Relationship, &m.AccessLevel); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateRelation
		}
		return nil, fmt.Errorf("family: insert member failed: %w", err)
	}
	return &m, nil
}

// ListMembers returns relations in insertion order.
func (r *PostgresRepository) ListMembers(ctx context.Context, userID string) ([]Member, error) {
	query := `
		SELECT user_id, relative_id, name, relationship, access_level
		FROM family_members
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("family: list members failed: %w", err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.RelativeID, &m.Name, &m.Relationship, &m.AccessLevel); err != nil {
			return nil, fmt.Errorf("family: scan member failed: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("family: iterate members failed: %w", err)
	}
	return out, nil
}

// AddHistory appends a hereditary-condition entry.
func (r *PostgresRepository) AddHistory(ctx context.Context, userID string, req *AddHistoryRequest) (*HistoryEntry, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO family_health_history (id, user_id, condition_name, relationship, age_at_diagnosis, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	entry := HistoryEntry{
		ID:             uuid.NewString(),
		UserID:         userID,
		ConditionName:  req.ConditionName,
		Relationship:   req.Relationship,
		AgeAtDiagnosis: req.AgeAtDiagnosis,
		Notes:          req.Notes,
	}
	if err := r.db.QueryRow(ctx, query,
		entry.ID, userID, req.ConditionName, req.Relationship, req.AgeAtDiagnosis, req.Notes,
	).Scan(&entry.CreatedAt); err != nil {
		return nil, fmt.Errorf("family: insert history failed: %w", err)
	}
	return &entry, nil
}

// ListHistory returns entries in insertion order.
func (r *PostgresRepository) ListHistory(ctx context.Context, userID string) ([]HistoryEntry, error) {
	query := `
		SELECT id, user_id, condition_name, relationship, age_at_diagnosis, notes, created_at
		FROM family_health_history
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("family: list history failed: %w", err)
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.ConditionName, &e.Relationship,
			&e.AgeAtDiagnosis, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("family: scan history failed: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("family: iterate history failed: %w", err)
	}
	return out, nil
}

var _ Repository = (*PostgresRepository)(nil)
