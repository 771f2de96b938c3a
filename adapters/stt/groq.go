package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Modawn-AI/voice/domain"
	"github.com/Modawn-AI/voice/domain/repositories"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "whisper-large-v3"
	defaultGroqTimeout = 30 * time.Second
)

// GroqConfig holds configuration for the GroqWhisper adapter.
// Required fields:
// - APIKey: Your Groq API key
// Optional fields with defaults:
// - APIBaseURL: The base URL for the Groq API (default: "https://api.groq.com/openai/v1")
// - Model: The transcription model to use (default: "whisper-large-v3")
// - Timeout: Per-request timeout (default: 30s)
type GroqConfig struct {
	APIKey     string
	APIBaseURL string
	Model      string
	Timeout    time.Duration
}

// GroqWhisper implements Transcriber using Groq's OpenAI-compatible
// audio transcription endpoint.
type GroqWhisper struct {
	apiKey     string
	apiBaseURL string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure GroqWhisper implements the Transcriber interface
var _ repositories.Transcriber = (*GroqWhisper)(nil)

// NewGroqWhisper creates a new Groq whisper transcription instance
func NewGroqWhisper(config GroqConfig, logger *zap.Logger) (*GroqWhisper, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("groq API key is required")
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultGroqBaseURL
		logger.Info("Using default API base URL", zap.String("apiBaseURL", apiBaseURL))
	}

	model := config.Model
	if model == "" {
		model = defaultGroqModel
		logger.Info("Using default transcription model", zap.String("model", model))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultGroqTimeout
	}

	return &GroqWhisper{
		apiKey:     config.APIKey,
		apiBaseURL: apiBaseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// NewGroqConfigFromEnv creates a new GroqConfig from environment variables
func NewGroqConfigFromEnv() GroqConfig {
	return GroqConfig{
		APIKey:     os.Getenv("GROQ_API_KEY"),
		APIBaseURL: os.Getenv("GROQ_API_BASE_URL"),
		Model:      os.Getenv("GROQ_WHISPER_MODEL"),
	}
}

type groqTranscriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends the recording to the transcription endpoint and returns
// the trimmed transcript. Empty audio surfaces as an error so the caller
// can reject the request without guessing.
func (g *GroqWhisper) Transcribe(ctx context.Context, rec domain.Recording) (string, error) {
	if len(rec.Data) == 0 {
		return "", fmt.Errorf("recording is empty")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	name := rec.Name
	if name == "" {
		name = "audio.wav"
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(rec.Data); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.WriteField("model", g.model); err != nil {
		return "", fmt.Errorf("failed to write model field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	url := fmt.Sprintf("%s/audio/transcriptions", g.apiBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		g.logger.Error("Groq transcription returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return "", fmt.Errorf("transcription API returned status %d", resp.StatusCode)
	}

	var result groqTranscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}

	transcript := strings.TrimSpace(result.Text)
	if transcript == "" {
		return "", fmt.Errorf("no speech detected in audio")
	}

	g.logger.Info("Transcription completed",
		zap.String("model", g.model),
		zap.Int("audioBytes", len(rec.Data)),
		zap.Int("transcriptLength", len(transcript)))

	return transcript, nil
}
