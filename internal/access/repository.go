package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// HouseholdRepository defines the interface for household persistence.
type HouseholdRepository interface {
	Get(ctx context.Context, id int64) (*Household, error)
	ListForUser(ctx context.Context, userID int64) ([]Household, error)
	Create(ctx context.Context, household *Household) error
}

// SQLiteHouseholdRepository implements HouseholdRepository using SQLite.
type SQLiteHouseholdRepository struct {
	db *sql.DB
}

// NewSQLiteHouseholdRepository creates a new SQLite-backed household repository.
func NewSQLiteHouseholdRepository(db *sql.DB) *SQLiteHouseholdRepository {
	return &SQLiteHouseholdRepository{db: db}
}

// Get returns a household by id.
func (r *SQLiteHouseholdRepository) Get(ctx context.Context, id int64) (*Household, error) {
	var h Household
	var createdAt string

	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, owner_id, created_at FROM households WHERE id = ?", id,
	).Scan(&h.ID, &h.Name, &h.OwnerID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrHouseholdNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting household: %w", err)
	}

	h.CreatedAt = parseTimestamp(createdAt)
	return &h, nil
}

// ListForUser returns every household the user owns or is a member of,
// ordered by name.
func (r *SQLiteHouseholdRepository) ListForUser(ctx context.Context, userID int64) ([]Household, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT h.id, h.name, h.owner_id, h.created_at
		 FROM households h
		 LEFT JOIN household_members m ON m.household_id = h.id
		 WHERE h.owner_id = ? OR m.user_id = ?
		 ORDER BY h.name`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing households: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read side only

	var households []Household
	for rows.Next() {
		var h Household
		var createdAt string
		if err := rows.Scan(&h.ID, &h.Name, &h.OwnerID, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning household: %w", err)
		}
		h.CreatedAt = parseTimestamp(createdAt)
		households = append(households, h)
	}
	return households, rows.Err()
}

// Create inserts a household and sets its generated id.
func (r *SQLiteHouseholdRepository) Create(ctx context.Context, household *Household) error {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO households (name, owner_id) VALUES (?, ?)",
		household.Name, household.OwnerID)
	if err != nil {
		return fmt.Errorf("creating household: %w", err)
	}
	household.ID, _ = result.LastInsertId() //nolint:errcheck // sqlite always reports it
	return nil
}

func parseTimestamp(value string) time.Time {
	t, _ := time.Parse(time.RFC3339, value) //nolint:errcheck // format is controlled
	return t
}
