package repositories

import "context"

// Synthesis is a speech-synthesis result ready to be forwarded. Chunks is
// closed by the adapter when the provider stream ends; the consumer owns
// draining it. The provider's status has already been resolved by the
// time a Synthesis is returned, so every chunk is audio, never an error
// payload.
type Synthesis struct {
	ContentType string
	Chunks      <-chan []byte
}

// Synthesizer abstracts speech-synthesis services.
type Synthesizer interface {
	// Synthesize converts reply text into a streamed audio byte sequence.
	// A non-success provider response is returned as an error.
	Synthesize(ctx context.Context, text string) (*Synthesis, error)
}
