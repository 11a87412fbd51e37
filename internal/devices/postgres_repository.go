package devices

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

// PostgresRepository stores wearable devices in the relational database.
type PostgresRepository struct {
	db db
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("devices: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB wires an arbitrary query interface, used by tests.
func NewPostgresRepositoryWithDB(db db) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Connect inserts an active device row.
func (r *PostgresRepository) Connect(ctx context.Context, userID string, req *ConnectRequest) (*WearableDevice, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	device := WearableDevice{
		ID:         uuid.NewString(),
		UserID:     userID,
		DeviceType: req.DeviceType,
		DeviceID:   deviceID,
		IsActive:   true,
	}
	query := `
		INSERT INTO wearable_devices (id, user_id, device_type, device_id, is_active)
		VALUES ($1, $2, $3, $4, true)
	`
	if _, err := r.db.Exec(ctx, query, device.ID, userID, device.DeviceType, device.DeviceID); err != nil {
		return nil, fmt.Errorf("devices: insert device failed: %w", err)
	}
	return &device, nil
}

// List returns the user's devices, newest first.
func (r *PostgresRepository) List(ctx context.Context, userID string) ([]WearableDevice, error) {
	query := `
		SELECT id, user_id, device_type, device_id, is_active, last_synced_at
		FROM wearable_devices
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("devices: list devices failed: %w", err)
	}
	defer rows.Close()

	var out []WearableDevice
	for rows.Next() {
		var d WearableDevice
		if err := rows.Scan(&d.ID, &d.UserID, &d.DeviceType, &d.DeviceID, &d.IsActive, &d.LastSyncedAt); err != nil {
			return nil, fmt.Errorf("devices: scan device failed: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("devices: iterate devices failed: %w", err)
	}
	return out, nil
}

// Get returns a single device.
func (r *PostgresRepository) Get(ctx context.Context, userID, deviceID string) (*WearableDevice, error) {
	query := `
		SELECT id, user_id, device_type, device_id, is_active, last_synced_at
		FROM wearable_devices
		WHERE id = $1 AND user_id = $2
	`
	var d WearableDevice
	if err := r.db.QueryRow(ctx, query, deviceID, userID).Scan(
		&d.ID, &d.UserID, &d.DeviceType, &d.DeviceID, &d.IsActive, &d.LastSyncedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("devices: select device failed: %w", err)
	}
	return &d, nil
}

// Disconnect flips is_active off. Already-inactive rows report ErrDeviceInactive.
func (r *PostgresRepository) Disconnect(ctx context.Context, userID, deviceID string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE wearable_devices SET is_active = false WHERE id = $1 AND user_id = $2 AND is_active`,
		deviceID, userID)
	if err != nil {
		return fmt.Errorf("devices: disconnect failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.Get(ctx, userID, deviceID); getErr != nil {
			return getErr
		}
		return ErrDeviceInactive
	}
	return nil
}

// MarkSynced stamps the last sync time.
func (r *PostgresRepository) MarkSynced(ctx context.Context, userID, deviceID string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE wearable_devices SET last_synced_at = $3 WHERE id = $1 AND user_id = $2`,
		deviceID, userID, at)
	if err != nil {
		return fmt.Errorf("devices: mark synced failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

var _ Repository = (*PostgresRepository)(nil)
