package auth

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

// PostgresRepository stores users in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("auth: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB wires an arbitrary query interface, used by tests.
func NewPostgresRepositoryWithDB(db db) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new unverified user. Phone numbers are unique.
func (r *PostgresRepository) Create(ctx context.Context, req *RegisterRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user := User{
		ID:       uuid.NewString(),
		Phone:    req.Phone,
		Name:     req.Name,
		Language: req.Language,
	}
	query := `
		INSERT INTO users (id, phone, name, language, verified)
		VALUES ($1, $2, $3, $4, false)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query, user.ID, user.Phone, user.Name, user.Language).Scan(&user.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("auth: insert user failed: %w", err)
	}
	return &user, nil
}

// GetByPhone looks a user up by phone number.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*User, error) {
	query := `
		SELECT id, phone, name, language, verified, created_at
		FROM users
		WHERE phone = $1
	`
	var u User
	if err := r.db.QueryRow(ctx, query, phone).Scan(
		&u.ID, &u.Phone, &u.Name, &u.Language, &u.Verified, &u.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("auth: select user failed: %w", err)
	}
	return &u, nil
}

// MarkVerified flips the verified flag.
func (r *PostgresRepository) MarkVerified(ctx context.Context, userID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET verified = true WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("auth: mark verified failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
