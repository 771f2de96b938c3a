// Package config resolves process configuration from the environment.
// Provider API keys are read once at startup; a missing key for a
// selected provider is a startup error, never a per-request one.
package config

import (
	"fmt"
	"os"
)

// Provider selections.
const (
	STTGroq   = "groq"
	STTGoogle = "google"

	LLMOpenAI = "openai"
	LLMGemini = "gemini"

	TTSCartesia   = "cartesia"
	TTSElevenLabs = "elevenlabs"

	EmotionHumeBatch  = "hume-batch"
	EmotionHumeStream = "hume-stream"
	EmotionOff        = "off"
)

// defaultPersona is the system prompt of the original deployment: a Yonsei
// student facilitating the EmoMap emotional-awareness game, answering
// briefly in Korean.
const defaultPersona = `당신은 연세대학교 학생 "박지영"으로, 친구들과 함께 감정 이해와 정서적 인식을 높일 수 있는 흥미로운 활동을 제안해야 합니다. 이 활동은 "이모맵" 이라는 게임 기반 도구를 중심으로 이루어집니다. 이 도구는 감정 단어, 표정 인식, 기억력 및 집중력 측정을 포함한 여러 가지 게임으로 구성되어 있으며, 사람들이 자신의 정서와 타인의 감정을 이해하는 데 도움을 줍니다.
항상 짧게 대답해줘.
`

// Config is the resolved process configuration.
type Config struct {
	Port            string
	Persona         string
	STTProvider     string
	LLMProvider     string
	TTSProvider     string
	EmotionProvider string
	GoogleLanguage  string
}

// Load builds the configuration from the environment and validates that
// every selected provider has the credentials it needs.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            envOrDefault("PORT", "8080"),
		Persona:         envOrDefault("PERSONA_PROMPT", defaultPersona),
		STTProvider:     envOrDefault("STT_PROVIDER", STTGroq),
		LLMProvider:     envOrDefault("LLM_PROVIDER", LLMOpenAI),
		TTSProvider:     envOrDefault("TTS_PROVIDER", TTSCartesia),
		EmotionProvider: envOrDefault("EMOTION_PROVIDER", EmotionOff),
		GoogleLanguage:  os.Getenv("GOOGLE_SPEECH_LANGUAGE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.STTProvider {
	case STTGroq:
		if err := requireEnv("GROQ_API_KEY"); err != nil {
			return err
		}
	case STTGoogle:
		// Credentials resolved by the Google client library at startup.
	default:
		return fmt.Errorf("unknown STT_PROVIDER %q", c.STTProvider)
	}

	switch c.LLMProvider {
	case LLMOpenAI:
		if err := requireEnv("OPENAI_API_KEY"); err != nil {
			return err
		}
	case LLMGemini:
		if err := requireEnv("GEMINI_API_KEY"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.TTSProvider {
	case TTSCartesia:
		if err := requireEnv("CARTESIA_API_KEY"); err != nil {
			return err
		}
	case TTSElevenLabs:
		if err := requireEnv("ELEVEN_LABS_API_KEY"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown TTS_PROVIDER %q", c.TTSProvider)
	}

	switch c.EmotionProvider {
	case EmotionHumeBatch, EmotionHumeStream:
		if err := requireEnv("HUME_API_KEY"); err != nil {
			return err
		}
	case EmotionOff:
	default:
		return fmt.Errorf("unknown EMOTION_PROVIDER %q", c.EmotionProvider)
	}

	return nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func requireEnv(key string) error {
	if os.Getenv(key) == "" {
		return fmt.Errorf("%s environment variable is required", key)
	}
	return nil
}
