package hub

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// InstanceRepository defines the interface for hub instance persistence.
type InstanceRepository interface {
	GetByHousehold(ctx context.Context, householdID int64) (*Instance, error)
	Upsert(ctx context.Context, instance *Instance) error
	Delete(ctx context.Context, householdID int64) error
}

// SQLiteInstanceRepository implements InstanceRepository using SQLite.
type SQLiteInstanceRepository struct {
	db *sql.DB
}

// NewSQLiteInstanceRepository creates a new SQLite-backed instance repository.
func NewSQLiteInstanceRepository(db *sql.DB) *SQLiteInstanceRepository {
	return &SQLiteInstanceRepository{db: db}
}

// GetByHousehold returns the hub instance for a household.
// Returns ErrNotConfigured when the household has no hub row.
func (r *SQLiteInstanceRepository) GetByHousehold(ctx context.Context, householdID int64) (*Instance, error) {
	var inst Instance
	var createdAt string

	err := r.db.QueryRowContext(ctx,
		`SELECT id, household_id, base_url, access_token, created_at
		 FROM hub_instances WHERE household_id = ?`, householdID,
	).Scan(&inst.ID, &inst.HouseholdID, &inst.BaseURL, &inst.AccessToken, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: household %d", ErrNotConfigured, householdID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting hub instance: %w", err)
	}

	inst.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled
	return &inst, nil
}

// Upsert creates or replaces the hub instance for a household.
// The UNIQUE constraint on household_id enforces one hub per household.
func (r *SQLiteInstanceRepository) Upsert(ctx context.Context, instance *Instance) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO hub_instances (household_id, base_url, access_token)
		 VALUES (?, ?, ?)
		 ON CONFLICT(household_id) DO UPDATE SET
		   base_url = excluded.base_url,
		   access_token = excluded.access_token`,
		instance.HouseholdID, instance.BaseURL, instance.AccessToken,
	)
	if err != nil {
		return fmt.Errorf("upserting hub instance: %w", err)
	}
	return nil
}

// Delete removes the hub instance for a household.
func (r *SQLiteInstanceRepository) Delete(ctx context.Context, householdID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM hub_instances WHERE household_id = ?", householdID,
	); err != nil {
		return fmt.Errorf("deleting hub instance: %w", err)
	}
	return nil
}
