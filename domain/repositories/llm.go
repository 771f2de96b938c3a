package repositories

import (
	"context"

	"github.com/Modawn-AI/voice/domain"
)

// Completer abstracts any chat/LLM provider.
type Completer interface {
	// Complete produces the assistant reply for one exchange. The message
	// list sent to the provider is system + history + user, in that order;
	// history is passed through exactly as the client supplied it.
	Complete(ctx context.Context, system string, history []domain.Turn, user domain.Turn) (string, error)
}
