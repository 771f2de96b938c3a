package repositories

import (
	"context"

	"github.com/Modawn-AI/voice/domain"
)

// Transcriber abstracts speech recognition services.
type Transcriber interface {
	// Transcribe converts a voice recording to trimmed text. Silent or
	// unintelligible audio is reported as an error, never as an empty
	// string with a nil error.
	Transcribe(ctx context.Context, rec domain.Recording) (string, error)
}
