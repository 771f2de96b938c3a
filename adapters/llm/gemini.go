package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Modawn-AI/voice/domain"
	"github.com/Modawn-AI/voice/domain/repositories"
)

const (
	defaultGeminiModel     = "gemini-2.0-flash"
	defaultGeminiMaxTokens = 150
	defaultGeminiTimeout   = 30 * time.Second
)

// GeminiConfig holds configuration for the Gemini adapter.
// Required fields:
// - APIKey: Your Google AI API key
// Optional fields with defaults:
// - Model: The model to use (default: "gemini-2.0-flash")
// - MaxTokens: Reply token cap (default: 150)
// - Timeout: Per-request timeout (default: 30s)
type GeminiConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Gemini implements Completer using Google's Gemini API. The genai client
// is created once and reused across requests.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    *zap.Logger
}

var _ repositories.Completer = (*Gemini)(nil)

// NewGemini creates a new Gemini completion instance
func NewGemini(ctx context.Context, config GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("google AI API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.Model
	if model == "" {
		model = defaultGeminiModel
		logger.Info("Using default model", zap.String("model", model))
	}

	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultGeminiMaxTokens
		logger.Info("Using default max tokens", zap.Int("maxTokens", maxTokens))
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultGeminiTimeout
	}

	return &Gemini{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// NewGeminiConfigFromEnv creates a new GeminiConfig from environment variables
func NewGeminiConfigFromEnv() GeminiConfig {
	return GeminiConfig{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}
}

// Complete sends system + history + user as one GenerateContent call and
// returns the first candidate's text.
func (g *Gemini) Complete(ctx context.Context, system string, history []domain.Turn, user domain.Turn) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+2)

	// Gemini has no system role on the content list; the persona rides as
	// the first user message.
	contents = append(contents, genai.NewContentFromText(system, genai.RoleUser))
	for _, turn := range history {
		contents = append(contents, genai.NewContentFromText(turn.Content, geminiRole(turn.Role)))
	}
	contents = append(contents, genai.NewContentFromText(user.Content, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.maxTokens),
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	response, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var reply string
	for _, part := range response.Candidates[0].Content.Parts {
		if part.Text != "" {
			reply += part.Text
		}
	}
	if reply == "" {
		return "", fmt.Errorf("completion response was empty")
	}

	g.logger.Info("Completion generated",
		zap.String("model", g.model),
		zap.Int("historyLength", len(history)),
		zap.Int("replyLength", len(reply)))

	return reply, nil
}

func geminiRole(role domain.Role) genai.Role {
	if role == domain.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}
