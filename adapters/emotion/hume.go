// Package emotion wraps the Hume expression-measurement API. Two
// integration styles exist, a batch job flow and a streaming socket;
// both reshape prosody predictions into domain.EmotionReading and both
// degrade to an empty reading when the payload lacks the expected shape.
package emotion

import (
	"os"
	"time"
)

const (
	defaultHumeBaseURL      = "https://api.hume.ai"
	defaultHumeStreamURL    = "wss://api.hume.ai/v0/stream/models"
	defaultHumeTimeout      = 30 * time.Second
	defaultHumePollInterval = 500 * time.Millisecond
)

// HumeConfig holds configuration shared by both Hume adapters.
// Required fields:
// - APIKey: Your Hume API key
// Optional fields with defaults:
// - APIBaseURL: Batch API base URL (default: "https://api.hume.ai")
// - StreamURL: Streaming socket URL (default: "wss://api.hume.ai/v0/stream/models")
// - Timeout: Overall budget for one analysis (default: 30s)
// - PollInterval: Batch polling interval (default: 500ms)
type HumeConfig struct {
	APIKey       string
	APIBaseURL   string
	StreamURL    string
	Timeout      time.Duration
	PollInterval time.Duration
}

// NewHumeConfigFromEnv creates a new HumeConfig from environment variables
func NewHumeConfigFromEnv() HumeConfig {
	return HumeConfig{
		APIKey:     os.Getenv("HUME_API_KEY"),
		APIBaseURL: os.Getenv("HUME_API_BASE_URL"),
		StreamURL:  os.Getenv("HUME_STREAM_URL"),
	}
}

func (c HumeConfig) withDefaults() HumeConfig {
	if c.APIBaseURL == "" {
		c.APIBaseURL = defaultHumeBaseURL
	}
	if c.StreamURL == "" {
		c.StreamURL = defaultHumeStreamURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultHumeTimeout
	}
	if c.PollInterval == 0 {
		c.PollInterval = defaultHumePollInterval
	}
	return c
}
