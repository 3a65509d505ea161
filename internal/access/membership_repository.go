package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// MembershipRepository defines the interface for membership persistence.
type MembershipRepository interface {
	Get(ctx context.Context, householdID, userID int64) (*Membership, error)
	ListForHousehold(ctx context.Context, householdID int64) ([]Membership, error)
	Upsert(ctx context.Context, membership *Membership) error
	Delete(ctx context.Context, householdID, userID int64) error
}

// SQLiteMembershipRepository implements MembershipRepository using SQLite.
type SQLiteMembershipRepository struct {
	db *sql.DB
}

// NewSQLiteMembershipRepository creates a new SQLite-backed membership repository.
func NewSQLiteMembershipRepository(db *sql.DB) *SQLiteMembershipRepository {
	return &SQLiteMembershipRepository{db: db}
}

const membershipColumns = "id, household_id, user_id, role, area_filter, label_filter_csv, created_at"

// Get returns the membership for a (household, user) pair.
// Returns ErrMembershipNotFound when no row exists.
func (r *SQLiteMembershipRepository) Get(ctx context.Context, householdID, userID int64) (*Membership, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+membershipColumns+" FROM household_members WHERE household_id = ? AND user_id = ?",
		householdID, userID)

	m, err := scanMembership(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: household %d user %d", ErrMembershipNotFound, householdID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("getting membership: %w", err)
	}
	return m, nil
}

// ListForHousehold returns all memberships of a household ordered by
// creation time.
func (r *SQLiteMembershipRepository) ListForHousehold(ctx context.Context, householdID int64) ([]Membership, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+membershipColumns+" FROM household_members WHERE household_id = ? ORDER BY created_at, id",
		householdID)
	if err != nil {
		return nil, fmt.Errorf("listing memberships: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read side only

	var memberships []Membership
	for rows.Next() {
		m, err := scanMembership(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning membership: %w", err)
		}
		memberships = append(memberships, *m)
	}
	return memberships, rows.Err()
}

// Upsert creates or replaces the membership for a (household, user)
// pair. Blank filters are normalized to NULL so they read back as "no
// restriction".
func (r *SQLiteMembershipRepository) Upsert(ctx context.Context, membership *Membership) error {
	if !membership.Role.Valid() {
		return fmt.Errorf("invalid role %q", membership.Role)
	}

	area := normalizeFilter(membership.AreaFilter)
	labels := normalizeFilter(membership.LabelFilterCSV)

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO household_members (household_id, user_id, role, area_filter, label_filter_csv)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(household_id, user_id) DO UPDATE SET
		   role = excluded.role,
		   area_filter = excluded.area_filter,
		   label_filter_csv = excluded.label_filter_csv`,
		membership.HouseholdID, membership.UserID, membership.Role, area, labels)
	if err != nil {
		return fmt.Errorf("upserting membership: %w", err)
	}
	return nil
}

// Delete removes a membership. Deleting a missing row is not an error.
func (r *SQLiteMembershipRepository) Delete(ctx context.Context, householdID, userID int64) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM household_members WHERE household_id = ? AND user_id = ?",
		householdID, userID,
	); err != nil {
		return fmt.Errorf("deleting membership: %w", err)
	}
	return nil
}

func scanMembership(scan func(...any) error) (*Membership, error) {
	var m Membership
	var createdAt string
	if err := scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role,
		&m.AreaFilter, &m.LabelFilterCSV, &createdAt); err != nil {
		return nil, err
	}
	m.CreatedAt = parseTimestamp(createdAt)
	return &m, nil
}

func normalizeFilter(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
