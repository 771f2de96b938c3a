package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Modawn-AI/voice/domain"
	"github.com/Modawn-AI/voice/domain/repositories"
)

const (
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenAIMaxTokens = 150
	defaultOpenAITimeout   = 30 * time.Second
)

// OpenAIConfig holds configuration for the OpenAICompletion adapter.
// Required fields:
// - APIKey: API key for the provider
// Optional fields with defaults:
// - APIBaseURL: Chat-completions base URL (default: "https://api.openai.com/v1");
//   point it at Groq's OpenAI-compatible endpoint to use Groq models
// - Model: The chat model (default: "gpt-4o-mini")
// - MaxTokens: Reply token cap (default: 150)
// - Timeout: Per-request timeout (default: 30s)
type OpenAIConfig struct {
	APIKey     string
	APIBaseURL string
	Model      string
	MaxTokens  int
	Timeout    time.Duration
}

// OpenAICompletion implements Completer against any OpenAI-compatible
// chat-completions endpoint.
type OpenAICompletion struct {
	apiKey     string
	apiBaseURL string
	model      string
	maxTokens  int
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure OpenAICompletion implements the Completer interface
var _ repositories.Completer = (*OpenAICompletion)(nil)

// NewOpenAICompletion creates a new OpenAI-compatible completion instance
func NewOpenAICompletion(config OpenAIConfig, logger *zap.Logger) (*OpenAICompletion, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	apiBaseURL := config.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultOpenAIBaseURL
		logger.Info("Using default API base URL", zap.String("apiBaseURL", apiBaseURL))
	}

	model := config.Model
	if model == "" {
		model = defaultOpenAIModel
		logger.Info("Using default completion model", zap.String("model", model))
	}

	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultOpenAIMaxTokens
		logger.Info("Using default max tokens", zap.Int("maxTokens", maxTokens))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultOpenAITimeout
	}

	return &OpenAICompletion{
		apiKey:     config.APIKey,
		apiBaseURL: apiBaseURL,
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// NewOpenAIConfigFromEnv creates a new OpenAIConfig from environment variables
func NewOpenAIConfigFromEnv() OpenAIConfig {
	config := OpenAIConfig{
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		APIBaseURL: os.Getenv("OPENAI_API_BASE_URL"),
		Model:      os.Getenv("OPENAI_MODEL"),
	}

	if maxTokensStr := os.Getenv("OPENAI_MAX_TOKENS"); maxTokensStr != "" {
		if maxTokens, err := strconv.Atoi(maxTokensStr); err == nil && maxTokens > 0 {
			config.MaxTokens = maxTokens
		}
	}

	return config
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []openAIMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends system + history + user to the provider and returns the
// first choice's content.
func (o *OpenAICompletion) Complete(ctx context.Context, system string, history []domain.Turn, user domain.Turn) (string, error) {
	messages := make([]openAIMessage, 0, len(history)+2)
	messages = append(messages, openAIMessage{Role: "system", Content: system})
	for _, turn := range history {
		messages = append(messages, openAIMessage{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, openAIMessage{Role: string(user.Role), Content: user.Content})

	requestBody, err := json.Marshal(openAIRequest{
		Model:     o.model,
		MaxTokens: o.maxTokens,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", o.apiBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		o.logger.Error("Completion API returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return "", fmt.Errorf("completion API returned status %d", resp.StatusCode)
	}

	var result openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	reply := result.Choices[0].Message.Content
	if reply == "" {
		return "", fmt.Errorf("completion response was empty")
	}

	o.logger.Info("Completion generated",
		zap.String("model", o.model),
		zap.Int("historyLength", len(history)),
		zap.Int("replyLength", len(reply)))

	return reply, nil
}
