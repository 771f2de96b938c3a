package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Modawn-AI/voice/domain"
)

func TestNewOpenAICompletion(t *testing.T) {
	logger := zaptest.NewLogger(t)

	if _, err := NewOpenAICompletion(OpenAIConfig{}, logger); err == nil {
		t.Error("Expected error when API key is not set")
	}

	completion, err := NewOpenAICompletion(OpenAIConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create OpenAICompletion: %v", err)
	}
	if completion.model != defaultOpenAIModel {
		t.Errorf("Expected default model %q, got %q", defaultOpenAIModel, completion.model)
	}
	if completion.maxTokens != defaultOpenAIMaxTokens {
		t.Errorf("Expected default max tokens %d, got %d", defaultOpenAIMaxTokens, completion.maxTokens)
	}
}

func TestOpenAIComplete(t *testing.T) {
	logger := zaptest.NewLogger(t)

	var captured openAIRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": [{"message": {"content": "hi there"}}]}`))
	}))
	defer server.Close()

	completion, err := NewOpenAICompletion(OpenAIConfig{APIKey: "test-api-key", APIBaseURL: server.URL}, logger)
	if err != nil {
		t.Fatalf("Failed to create OpenAICompletion: %v", err)
	}

	history := []domain.Turn{
		{Role: domain.RoleUser, Content: "earlier question"},
		{Role: domain.RoleAssistant, Content: "earlier answer"},
	}
	user := domain.Turn{Role: domain.RoleUser, Content: "hello"}

	reply, err := completion.Complete(context.Background(), "persona", history, user)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if reply != "hi there" {
		t.Errorf("Expected reply 'hi there', got %q", reply)
	}

	if captured.MaxTokens != defaultOpenAIMaxTokens {
		t.Errorf("Expected max_tokens %d, got %d", defaultOpenAIMaxTokens, captured.MaxTokens)
	}
	if len(captured.Messages) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[0].Content != "persona" {
		t.Errorf("System message wrong: %+v", captured.Messages[0])
	}
	if captured.Messages[1].Content != "earlier question" || captured.Messages[2].Content != "earlier answer" {
		t.Errorf("History not passed through in order: %+v", captured.Messages)
	}
	if captured.Messages[3].Role != "user" || captured.Messages[3].Content != "hello" {
		t.Errorf("User message wrong: %+v", captured.Messages[3])
	}
}

func TestOpenAICompleteProviderError(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	completion, err := NewOpenAICompletion(OpenAIConfig{APIKey: "test-api-key", APIBaseURL: server.URL}, logger)
	if err != nil {
		t.Fatalf("Failed to create OpenAICompletion: %v", err)
	}

	_, err = completion.Complete(context.Background(), "persona", nil, domain.Turn{Role: domain.RoleUser, Content: "hello"})
	if err == nil {
		t.Error("Expected error for provider failure")
	}
}

func TestOpenAICompleteNoChoices(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	completion, err := NewOpenAICompletion(OpenAIConfig{APIKey: "test-api-key", APIBaseURL: server.URL}, logger)
	if err != nil {
		t.Fatalf("Failed to create OpenAICompletion: %v", err)
	}

	_, err = completion.Complete(context.Background(), "persona", nil, domain.Turn{Role: domain.RoleUser, Content: "hello"})
	if err == nil {
		t.Error("Expected error for empty choices")
	}
}
