package plans

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository stores versioned trip plans.
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a repo backed by database/sql.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		panic("plans: db required")
	}
	return &Repository{db: db}
}

const planColumns = `id, trip_id, itinerary_json, hotels_json, flights_json, daily_budget,
	total_estimated_cost, generated_at, updated_at, status, version, agent_metadata`

// Create inserts a plan record. The (trip_id, version) pair must be unused.
func (r *Repository) Create(ctx context.Context, record *Record) (*Record, error) {
	if record.Status == "" {
		record.Status = StatusDraft
	}
	if !ValidStatus(record.Status) {
		return nil, ErrInvalidStatus
	}
	if record.Version < 1 {
		record.Version = 1
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO trip_plans (trip_id, itinerary_json, hotels_json, flights_json, daily_budget,
			total_estimated_cost, generated_at, updated_at, status, version, agent_metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		record.TripID,
		record.ItineraryJSON,
		record.HotelsJSON,
		record.FlightsJSON,
		record.DailyBudget,
		record.TotalEstimatedCost,
		now,
		now,
		record.Status,
		record.Version,
		record.AgentMetadata,
	)
	if err != nil {
		return nil, fmt.Errorf("plans: insert failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("plans: insert id: %w", err)
	}

	created := *record
	created.ID = id
	created.GeneratedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// GetByTripID fetches one plan for a trip. A nil version resolves to the
// highest version, the "current" plan.
func (r *Repository) GetByTripID(ctx context.Context, tripID int64, version *int) (*Record, error) {
	var row *sql.Row
	if version != nil {
		query := `SELECT ` + planColumns + ` FROM trip_plans WHERE trip_id = ? AND version = ?`
		row = r.db.QueryRowContext(ctx, query, tripID, *version)
	} else {
		query := `SELECT ` + planColumns + ` FROM trip_plans WHERE trip_id = ? ORDER BY version DESC LIMIT 1`
		row = r.db.QueryRowContext(ctx, query, tripID)
	}
	return r.scanOne(row)
}

// GetByID fetches a plan by its own id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Record, error) {
	query := `SELECT ` + planColumns + ` FROM trip_plans WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// ListVersions returns all plan versions for a trip, oldest version first.
func (r *Repository) ListVersions(ctx context.Context, tripID int64) ([]Record, error) {
	query := `SELECT ` + planColumns + ` FROM trip_plans WHERE trip_id = ? ORDER BY version ASC`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("plans: select failed: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("plans: scan failed: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("plans: rows: %w", err)
	}
	return records, nil
}

// NextVersion returns the version number a re-plan of this trip should use.
// Re-planning inserts a new row; existing versions are never overwritten.
func (r *Repository) NextVersion(ctx context.Context, tripID int64) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM trip_plans WHERE trip_id = ?`,
		tripID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("plans: next version: %w", err)
	}
	return next, nil
}

// UpdateStatus sets the status of one plan row.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE trip_plans SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("plans: update status failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("plans: update status rows: %w", err)
	}
	if affected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// Delete removes one plan row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trip_plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("plans: delete failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("plans: delete rows: %w", err)
	}
	if affected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	if err := row.Scan(
		&record.ID,
		&record.TripID,
		&record.ItineraryJSON,
		&record.HotelsJSON,
		&record.FlightsJSON,
		&record.DailyBudget,
		&record.TotalEstimatedCost,
		&record.GeneratedAt,
		&record.UpdatedAt,
		&record.Status,
		&record.Version,
		&record.AgentMetadata,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) scanOne(row *sql.Row) (*Record, error) {
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("plans: select failed: %w", err)
	}
	return record, nil
}
