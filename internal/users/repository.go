package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository stores users in the relational database.
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a repo backed by database/sql.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		panic("users: db required")
	}
	return &Repository{db: db}
}

// Create inserts a new row.
func (r *Repository) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO users (name, email, profile, travel_preferences, travel_constraints, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		req.Name,
		req.Email,
		req.Profile,
		req.TravelPreferences,
		req.TravelConstraints,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("users: insert failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("users: insert id: %w", err)
	}

	return &User{
		ID:                id,
		Name:              req.Name,
		Email:             req.Email,
		Profile:           req.Profile,
		TravelPreferences: req.TravelPreferences,
		TravelConstraints: req.TravelConstraints,
		CreatedAt:         now,
	}, nil
}

// GetByID fetches a user by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT id, name, email, profile, travel_preferences, travel_constraints, created_at
		FROM users
		WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, query, id)
	var user User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Profile,
		&user.TravelPreferences,
		&user.TravelConstraints,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return &user, nil
}

// GetByEmail fetches a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, profile, travel_preferences, travel_constraints, created_at
		FROM users
		WHERE email = ?
	`
	row := r.db.QueryRowContext(ctx, query, email)
	var user User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Profile,
		&user.TravelPreferences,
		&user.TravelConstraints,
		&user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("users: select failed: %w", err)
	}
	return &user, nil
}
