package repositories

import (
	"context"

	"github.com/Modawn-AI/voice/domain"
)

// EmotionAnalyzer abstracts prosody-analysis services.
type EmotionAnalyzer interface {
	// Analyze scores vocal emotion over a recording. A malformed provider
	// payload degrades to an empty reading with a nil error; only
	// transport-level failures surface as errors.
	Analyze(ctx context.Context, rec domain.Recording) (domain.EmotionReading, error)
}
