package tts

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Modawn-AI/voice/domain/repositories"
)

const (
	defaultCartesiaBaseURL  = "https://api.cartesia.ai"
	defaultCartesiaVersion  = "2024-06-30"
	defaultCartesiaModelID  = "sonic-multilingual"
	defaultCartesiaVoiceID  = "9c0afccc-ce37-46d7-8e68-52794655ea20"
	defaultCartesiaLanguage = "ko"
	defaultCartesiaTimeout  = 60 * time.Second
)

// CartesiaConfig holds configuration for the Cartesia adapter.
// Required fields:
// - APIKey: Your Cartesia API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the Cartesia API (default: "https://api.cartesia.ai")
// - ModelID: The synthesis model (default: "sonic-multilingual")
// - VoiceID: The voice to speak with (default: the Korean demo voice)
// - Language: Target language tag (default: "ko")
// - Timeout: Per-request timeout covering the whole stream (default: 60s)
type CartesiaConfig struct {
	APIKey     string
	APIBaseURL string
	ModelID    string
	VoiceID    string
	Language   string
	Timeout    time.Duration
}

// Cartesia implements Synthesizer using the Cartesia server-sent-events
// endpoint. Audio arrives as base64 chunks inside SSE data events and is
// decoded into raw pcm_f32le at 24 kHz before forwarding.
type Cartesia struct {
	apiKey     string
	apiBaseURL string
	modelID    string
	voiceID    string
	language   string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure Cartesia implements the Synthesizer interface
var _ repositories.Synthesizer = (*Cartesia)(nil)

// NewCartesia creates a new Cartesia TTS instance
func NewCartesia(config CartesiaConfig, logger *zap.Logger) (*Cartesia, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("cartesia API key is required")
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultCartesiaBaseURL
		logger.Info("Using default API base URL", zap.String("apiBaseURL", apiBaseURL))
	}

	modelID := config.ModelID
	if modelID == "" {
		modelID = defaultCartesiaModelID
		logger.Info("Using default model ID", zap.String("modelID", modelID))
	}

	voiceID := config.VoiceID
	if voiceID == "" {
		voiceID = defaultCartesiaVoiceID
		logger.Info("Using default voice ID", zap.String("voiceID", voiceID))
	}

	language := config.Language
	if language == "" {
		language = defaultCartesiaLanguage
		logger.Info("Using default language", zap.String("language", language))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultCartesiaTimeout
	}

	return &Cartesia{
		apiKey:     config.APIKey,
		apiBaseURL: apiBaseURL,
		modelID:    modelID,
		voiceID:    voiceID,
		language:   language,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// NewCartesiaConfigFromEnv creates a new CartesiaConfig from environment variables
func NewCartesiaConfigFromEnv() CartesiaConfig {
	return CartesiaConfig{
		APIKey:     os.Getenv("CARTESIA_API_KEY"),
		APIBaseURL: os.Getenv("CARTESIA_API_BASE_URL"),
		ModelID:    os.Getenv("CARTESIA_MODEL_ID"),
		VoiceID:    os.Getenv("CARTESIA_VOICE_ID"),
		Language:   os.Getenv("CARTESIA_LANGUAGE"),
	}
}

type cartesiaRequest struct {
	ModelID    string `json:"model_id"`
	Transcript string `json:"transcript"`
	Voice      struct {
		Mode string `json:"mode"`
		ID   string `json:"id"`
	} `json:"voice"`
	Language     string `json:"language"`
	OutputFormat struct {
		Container  string `json:"container"`
		Encoding   string `json:"encoding"`
		SampleRate int    `json:"sample_rate"`
	} `json:"output_format"`
}

type cartesiaEvent struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// Synthesize requests speech for the reply text and streams the decoded
// audio. The provider status is resolved before returning, so a non-2xx
// never reaches the chunk channel.
func (c *Cartesia) Synthesize(ctx context.Context, text string) (*repositories.Synthesis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	request := cartesiaRequest{
		ModelID:    c.modelID,
		Transcript: text,
		Language:   c.language,
	}
	request.Voice.Mode = "id"
	request.Voice.ID = c.voiceID
	request.OutputFormat.Container = "raw"
	request.OutputFormat.Encoding = "pcm_f32le"
	request.OutputFormat.SampleRate = 24000

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/tts/sse", c.apiBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Cartesia-Version", defaultCartesiaVersion)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		c.logger.Error("Cartesia API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return nil, fmt.Errorf("cartesia API returned status %d", resp.StatusCode)
	}

	chunks := make(chan []byte, 10)

	go func() {
		defer close(chunks)
		defer resp.Body.Close()

		totalBytes := 0
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}

			var event cartesiaEvent
			if err := json.Unmarshal([]byte(strings.TrimSpace(line[len("data:"):])), &event); err != nil {
				c.logger.Warn("Skipping unparseable SSE event", zap.Error(err))
				continue
			}

			switch event.Type {
			case "chunk":
				audio, err := base64.StdEncoding.DecodeString(event.Data)
				if err != nil {
					c.logger.Warn("Skipping undecodable audio chunk", zap.Error(err))
					continue
				}
				totalBytes += len(audio)
				select {
				case chunks <- audio:
				case <-ctx.Done():
					c.logger.Warn("Context cancelled while streaming audio data")
					return
				}
			case "done":
				c.logger.Info("Finished streaming audio data", zap.Int("totalBytes", totalBytes))
				return
			}
		}

		if err := scanner.Err(); err != nil {
			c.logger.Error("Error reading SSE stream", zap.Error(err))
		}
	}()

	return &repositories.Synthesis{
		ContentType: "audio/pcm",
		Chunks:      chunks,
	}, nil
}
