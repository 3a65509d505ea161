// Package audit records every control command the bridge attempted,
// whether it succeeded, was denied, or failed.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Command sources.
const (
	SourceAPI    = "api"
	SourceToggle = "toggle"
	SourceAlexa  = "alexa"
	SourceGoogle = "google"
)

// Command outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeDenied = "denied"
	OutcomeError  = "error"
)

// CommandRecord is one audit trail entry for a control command.
type CommandRecord struct {
	ID          string    `json:"id"`
	HouseholdID int64     `json:"household_id"`
	UserID      *int64    `json:"user_id,omitempty"`
	EntityID    string    `json:"entity_id"`
	Domain      string    `json:"domain"`
	Service     string    `json:"service"`
	Source      string    `json:"source"`
	Outcome     string    `json:"outcome"`
	Status      *int      `json:"status,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Filter controls which command records to return.
type Filter struct {
	HouseholdID int64  // required
	Source      string // optional: api, toggle, alexa, google
	Outcome     string // optional: ok, denied, error
	EntityID    string // optional: filter by target entity
	Limit       int    // default 50, max 200
	Offset      int    // pagination offset
}

// ListResult contains the paginated command records.
type ListResult struct {
	Records []CommandRecord `json:"records"`
	Total   int             `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// Repository defines the interface for command audit persistence.
type Repository interface {
	Record(ctx context.Context, record *CommandRecord) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository stores command records in SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new command audit repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Record inserts a command record. The ID and CreatedAt are generated
// if empty.
func (r *SQLiteRepository) Record(ctx context.Context, record *CommandRecord) error {
	if record.ID == "" {
		record.ID = "cmd-" + uuid.NewString()[:8]
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO command_audit (id, household_id, user_id, entity_id, domain, service, source, outcome, status, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.HouseholdID, record.UserID,
		record.EntityID, record.Domain, record.Service,
		record.Source, record.Outcome, record.Status,
		nullableString(record.Error),
		record.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting command record: %w", err)
	}
	return nil
}

// List returns command records matching the filter, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	// Clamp limit.
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 { //nolint:mnd // max page size for audit queries
		filter.Limit = 200
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	conditions := []string{"household_id = ?"}
	args := []any{filter.HouseholdID}

	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Outcome != "" {
		conditions = append(conditions, "outcome = ?")
		args = append(args, filter.Outcome)
	}
	if filter.EntityID != "" {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, filter.EntityID)
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM command_audit " + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting command records: %w", err)
	}

	query := "SELECT id, household_id, user_id, entity_id, domain, service, source, outcome, status, error, created_at " +
		"FROM command_audit " + where + " ORDER BY created_at DESC, id LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying command records: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read side only

	var records []CommandRecord
	for rows.Next() {
		var rec CommandRecord
		var userID sql.NullInt64
		var status sql.NullInt64
		var errText sql.NullString
		var createdAt string

		if err := rows.Scan(&rec.ID, &rec.HouseholdID, &userID,
			&rec.EntityID, &rec.Domain, &rec.Service,
			&rec.Source, &rec.Outcome, &status, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning command record: %w", err)
		}

		if userID.Valid {
			rec.UserID = &userID.Int64
		}
		if status.Valid {
			s := int(status.Int64)
			rec.Status = &s
		}
		rec.Error = errText.String

		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing command record timestamp %q: %w", createdAt, err)
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating command records: %w", err)
	}

	if records == nil {
		records = []CommandRecord{}
	}

	return &ListResult{
		Records: records,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}

// nullableString returns nil for empty strings, or the string otherwise.
// Used for nullable TEXT columns in SQLite.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
