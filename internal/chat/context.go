package chat

import (
	"context"
	"fmt"
	"strings"
)

// triggerPhrases reset the conversation: a message containing any of them is
// extracted on its own, without prior history.
var triggerPhrases = []string{"plan", "new trip", "start trip", "plan a trip"}

// HistorySource provides recent conversation turns for a user.
type HistorySource interface {
	RecentByUser(ctx context.Context, userID int64, limit int) ([]Message, error)
}

// ContextBuilder assembles the multi-turn transcript handed to the
// requirements extractor. This is a heuristic: it merges the last few turns
// across all trips and phases, which can mix unrelated conversations.
type ContextBuilder struct {
	history HistorySource
	window  int
}

// NewContextBuilder creates a context builder reading up to window prior
// messages per user.
func NewContextBuilder(history HistorySource, window int) *ContextBuilder {
	if window <= 0 {
		window = 6
	}
	return &ContextBuilder{history: history, window: window}
}

// Build returns the transcript to extract requirements from. A trigger
// phrase in the new input discards history and starts fresh.
func (b *ContextBuilder) Build(ctx context.Context, userID int64, newInput string) (string, error) {
	lower := strings.ToLower(newInput)
	for _, phrase := range triggerPhrases {
		if strings.Contains(lower, phrase) {
			return "User: " + newInput, nil
		}
	}

	history, err := b.history.RecentByUser(ctx, userID, b.window)
	if err != nil {
		return "", fmt.Errorf("chat: build context: %w", err)
	}

	var lines []string
	for _, msg := range history {
		role := "Assistant"
		if msg.Role == RoleUser {
			role = "User"
		}
		lines = append(lines, role+": "+msg.Content)
	}
	lines = append(lines, "User: "+newInput)
	return strings.Join(lines, "\n"), nil
}
