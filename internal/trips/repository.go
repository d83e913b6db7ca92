package trips

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository stores trips in the relational database.
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a repo backed by database/sql.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		panic("trips: db required")
	}
	return &Repository{db: db}
}

const tripColumns = `id, user_id, phase, title, origin, destination, trip_startdate, trip_enddate,
	accommodation_type, no_of_adults, no_of_children, budget, currency, trip_status, purpose,
	travel_preferences, travel_constraints, created_at, updated_at`

// Create validates and inserts a new trip.
func (r *Repository) Create(ctx context.Context, trip *Trip) (*Trip, error) {
	if err := trip.Validate(true); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO trips (user_id, phase, title, origin, destination, trip_startdate, trip_enddate,
			accommodation_type, no_of_adults, no_of_children, budget, currency, trip_status, purpose,
			travel_preferences, travel_constraints, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		trip.UserID,
		trip.Phase,
		trip.Title,
		trip.Origin,
		trip.Destination,
		trip.StartDate,
		trip.EndDate,
		trip.AccommodationType,
		trip.NoOfAdults,
		trip.NoOfChildren,
		trip.Budget,
		trip.Currency,
		trip.Status,
		trip.Purpose,
		trip.TravelPreferences,
		trip.TravelConstraints,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("trips: insert failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("trips: insert id: %w", err)
	}

	created := *trip
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

// GetByID fetches a trip by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetActiveForUser returns the most recent non-terminal trip for a user, or
// ErrTripNotFound when the user has none.
func (r *Repository) GetActiveForUser(ctx context.Context, userID int64) (*Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE user_id = ? AND trip_status NOT IN (?, ?)
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, userID, StatusCompleted, StatusCancelled))
}

// UpdateStatus transitions a trip to a new lifecycle status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status string) error {
	if !ValidStatus(status) {
		return ErrInvalidStatus
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE trips SET trip_status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("trips: update status failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("trips: update status rows: %w", err)
	}
	if affected == 0 {
		return ErrTripNotFound
	}
	return nil
}

func (r *Repository) scanOne(row *sql.Row) (*Trip, error) {
	var trip Trip
	if err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&trip.Phase,
		&trip.Title,
		&trip.Origin,
		&trip.Destination,
		&trip.StartDate,
		&trip.EndDate,
		&trip.AccommodationType,
		&trip.NoOfAdults,
		&trip.NoOfChildren,
		&trip.Budget,
		&trip.Currency,
		&trip.Status,
		&trip.Purpose,
		&trip.TravelPreferences,
		&trip.TravelConstraints,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTripNotFound
		}
		return nil, fmt.Errorf("trips: select failed: %w", err)
	}
	return &trip, nil
}
