package domain

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the conversation history. The client keeps the
// full history and resubmits it on every request; the server holds no
// conversation state between requests.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ParseTurn decodes and validates a single JSON-encoded turn as submitted
// in a repeated "message" form field.
func ParseTurn(data []byte) (Turn, error) {
	var turn Turn
	if err := json.Unmarshal(data, &turn); err != nil {
		return Turn{}, fmt.Errorf("malformed message entry: %w", err)
	}
	if turn.Role != RoleUser && turn.Role != RoleAssistant {
		return Turn{}, fmt.Errorf("invalid role %q", turn.Role)
	}
	if turn.Content == "" {
		return Turn{}, fmt.Errorf("message content must not be empty")
	}
	return turn, nil
}

// Recording is an uploaded voice segment together with the metadata the
// browser declared for it. The declared MIME type is forwarded to
// providers untouched; it is never verified locally.
type Recording struct {
	Data     []byte
	Name     string
	MIMEType string
}

// Input is the user's submission for one request: either typed text or a
// voice recording, never both.
type Input struct {
	Text      string
	Recording *Recording
}

// IsText reports whether the input arrived as a typed string.
func (i Input) IsText() bool {
	return i.Recording == nil
}
