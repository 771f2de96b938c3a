package config

import (
	"strings"
	"testing"
)

// providerKeys are every credential the validator may look for; clearing
// them gives each test a known baseline.
var providerKeys = []string{
	"GROQ_API_KEY",
	"OPENAI_API_KEY",
	"GEMINI_API_KEY",
	"CARTESIA_API_KEY",
	"ELEVEN_LABS_API_KEY",
	"HUME_API_KEY",
}

var selectorKeys = []string{
	"PORT",
	"PERSONA_PROMPT",
	"STT_PROVIDER",
	"LLM_PROVIDER",
	"TTS_PROVIDER",
	"EMOTION_PROVIDER",
	"GOOGLE_SPEECH_LANGUAGE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range append(append([]string{}, providerKeys...), selectorKeys...) {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gk")
	t.Setenv("OPENAI_API_KEY", "ok")
	t.Setenv("CARTESIA_API_KEY", "ck")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.STTProvider != STTGroq {
		t.Errorf("Expected default STT provider %q, got %q", STTGroq, cfg.STTProvider)
	}
	if cfg.LLMProvider != LLMOpenAI {
		t.Errorf("Expected default LLM provider %q, got %q", LLMOpenAI, cfg.LLMProvider)
	}
	if cfg.TTSProvider != TTSCartesia {
		t.Errorf("Expected default TTS provider %q, got %q", TTSCartesia, cfg.TTSProvider)
	}
	if cfg.EmotionProvider != EmotionOff {
		t.Errorf("Expected emotion scoring off by default, got %q", cfg.EmotionProvider)
	}
	if !strings.Contains(cfg.Persona, "이모맵") {
		t.Errorf("Expected default persona, got %q", cfg.Persona)
	}
}

func TestLoadMissingKeyForSelectedProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "ok")
	t.Setenv("CARTESIA_API_KEY", "ck")
	// GROQ_API_KEY deliberately unset while groq is the default STT.

	if _, err := Load(); err == nil {
		t.Error("Expected error when selected provider has no API key")
	}
}

func TestLoadMissingEmotionKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gk")
	t.Setenv("OPENAI_API_KEY", "ok")
	t.Setenv("CARTESIA_API_KEY", "ck")
	t.Setenv("EMOTION_PROVIDER", EmotionHumeBatch)

	if _, err := Load(); err == nil {
		t.Error("Expected error when emotion provider is enabled without HUME_API_KEY")
	}
}

func TestLoadUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("GROQ_API_KEY", "gk")
	t.Setenv("OPENAI_API_KEY", "ok")
	t.Setenv("CARTESIA_API_KEY", "ck")
	t.Setenv("TTS_PROVIDER", "polly")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown TTS provider")
	}
}

func TestLoadProviderOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STT_PROVIDER", STTGoogle)
	t.Setenv("LLM_PROVIDER", LLMGemini)
	t.Setenv("TTS_PROVIDER", TTSElevenLabs)
	t.Setenv("GEMINI_API_KEY", "gk")
	t.Setenv("ELEVEN_LABS_API_KEY", "ek")
	t.Setenv("GOOGLE_SPEECH_LANGUAGE", "en-US")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.STTProvider != STTGoogle || cfg.LLMProvider != LLMGemini || cfg.TTSProvider != TTSElevenLabs {
		t.Errorf("Provider overrides not applied: %+v", cfg)
	}
	if cfg.GoogleLanguage != "en-US" {
		t.Errorf("Expected language en-US, got %q", cfg.GoogleLanguage)
	}
}
