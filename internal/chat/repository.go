package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repository is the append-only store for chat messages.
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a repo backed by database/sql.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		panic("chat: db required")
	}
	return &Repository{db: db}
}

// Save appends one message to the log and returns it with its id set.
func (r *Repository) Save(ctx context.Context, msg *Message) (*Message, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO chat_history (trip_id, user_id, role, phase, content, metadata, sequence_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		msg.TripID,
		msg.UserID,
		msg.Role,
		msg.Phase,
		msg.Content,
		msg.Metadata,
		msg.SequenceNumber,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("chat: insert failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("chat: insert id: %w", err)
	}

	saved := *msg
	saved.ID = id
	saved.CreatedAt = now
	return &saved, nil
}

// RecentByUser returns the most recent limit messages for a user across all
// trips and phases, ordered oldest to newest.
func (r *Repository) RecentByUser(ctx context.Context, userID int64, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT id, trip_id, user_id, role, phase, content, metadata, sequence_number, created_at
		FROM chat_history
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("chat: select failed: %w", err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	// query returns newest first; callers want conversational order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// LoadByTrip returns the full message log for a trip, oldest first.
func (r *Repository) LoadByTrip(ctx context.Context, tripID int64) ([]Message, error) {
	query := `
		SELECT id, trip_id, user_id, role, phase, content, metadata, sequence_number, created_at
		FROM chat_history
		WHERE trip_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("chat: select failed: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var messages []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(
			&msg.ID,
			&msg.TripID,
			&msg.UserID,
			&msg.Role,
			&msg.Phase,
			&msg.Content,
			&msg.Metadata,
			&msg.SequenceNumber,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("chat: scan failed: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chat: rows: %w", err)
	}
	return messages, nil
}
