// Package prompt builds the ephemeral role-tagged sequence a model invocation
// consumes. A sequence is a per-request view over persisted history; it is
// never stored.
package prompt

import (
	"errors"

	"promptgate/internal/model"
)

// ErrMalformedHistory is returned when a history entry is missing its role or
// content. The assembler refuses to coerce such entries silently.
var ErrMalformedHistory = errors.New("history entry missing role or content")

type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Assemble maps history to turns in original chronological order and appends
// the new question as the final user turn. It does no filtering, deduplication,
// or truncation; limit enforcement belongs to the caller.
func Assemble(history []model.Message, question string) ([]Turn, error) {
	turns := make([]Turn, 0, len(history)+1)
	for _, entry := range history {
		if entry.Role == "" || entry.Content == "" {
			return nil, ErrMalformedHistory
		}
		turns = append(turns, Turn{Role: entry.Role, Content: entry.Content})
	}
	turns = append(turns, Turn{Role: model.RoleUser, Content: question})
	return turns, nil
}
