package stt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Modawn-AI/voice/domain"
)

func TestNewGroqWhisper(t *testing.T) {
	logger := zaptest.NewLogger(t)

	if _, err := NewGroqWhisper(GroqConfig{}, logger); err == nil {
		t.Error("Expected error when API key is not set")
	}

	whisper, err := NewGroqWhisper(GroqConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create GroqWhisper: %v", err)
	}

	if whisper.apiBaseURL != defaultGroqBaseURL {
		t.Errorf("Expected default base URL %q, got %q", defaultGroqBaseURL, whisper.apiBaseURL)
	}
	if whisper.model != defaultGroqModel {
		t.Errorf("Expected default model %q, got %q", defaultGroqModel, whisper.model)
	}
}

func TestGroqWhisperTranscribe(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("Unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-api-key" {
			t.Errorf("Unexpected authorization header %q", auth)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("Failed to parse multipart form: %v", err)
		}
		if model := r.FormValue("model"); model != defaultGroqModel {
			t.Errorf("Expected model %q, got %q", defaultGroqModel, model)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "  hello world  "}`))
	}))
	defer server.Close()

	whisper, err := NewGroqWhisper(GroqConfig{APIKey: "test-api-key", APIBaseURL: server.URL}, logger)
	if err != nil {
		t.Fatalf("Failed to create GroqWhisper: %v", err)
	}

	transcript, err := whisper.Transcribe(context.Background(), domain.Recording{
		Data:     []byte("fake audio"),
		Name:     "audio.wav",
		MIMEType: "audio/wav",
	})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if transcript != "hello world" {
		t.Errorf("Expected trimmed transcript 'hello world', got %q", transcript)
	}
}

func TestGroqWhisperTranscribeEmptyResult(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "   "}`))
	}))
	defer server.Close()

	whisper, err := NewGroqWhisper(GroqConfig{APIKey: "test-api-key", APIBaseURL: server.URL}, logger)
	if err != nil {
		t.Fatalf("Failed to create GroqWhisper: %v", err)
	}

	_, err = whisper.Transcribe(context.Background(), domain.Recording{Data: []byte("silence")})
	if err == nil {
		t.Error("Expected error for whitespace-only transcript")
	}
}

func TestGroqWhisperTranscribeProviderError(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad audio"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	whisper, err := NewGroqWhisper(GroqConfig{APIKey: "test-api-key", APIBaseURL: server.URL}, logger)
	if err != nil {
		t.Fatalf("Failed to create GroqWhisper: %v", err)
	}

	_, err = whisper.Transcribe(context.Background(), domain.Recording{Data: []byte("noise")})
	if err == nil {
		t.Error("Expected error for provider failure")
	}

	_, err = whisper.Transcribe(context.Background(), domain.Recording{})
	if err == nil {
		t.Error("Expected error for empty recording")
	}
}
