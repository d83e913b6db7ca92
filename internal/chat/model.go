package chat

import "time"

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one append-only chat log entry. TripID is nil for pre-trip
// conversation turns.
type Message struct {
	ID             int64     `json:"id"`
	TripID         *int64    `json:"trip_id,omitempty"`
	UserID         int64     `json:"user_id"`
	Role           string    `json:"role"`
	Phase          string    `json:"phase"`
	Content        string    `json:"content"`
	Metadata       string    `json:"metadata,omitempty"`
	SequenceNumber *int      `json:"sequence_number,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
