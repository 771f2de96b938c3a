package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Modawn-AI/voice/adapters/emotion"
	"github.com/Modawn-AI/voice/adapters/llm"
	"github.com/Modawn-AI/voice/adapters/stt"
	"github.com/Modawn-AI/voice/adapters/tts"
	"github.com/Modawn-AI/voice/domain/repositories"
	"github.com/Modawn-AI/voice/internal/api"
	"github.com/Modawn-AI/voice/internal/config"
	"github.com/Modawn-AI/voice/internal/metrics"
	"github.com/Modawn-AI/voice/usecase"
)

func main() {
	godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Provider clients live for the whole process and are shared across
	// requests; they hold no per-request state.
	transcriber, err := buildTranscriber(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize transcription provider", zap.Error(err))
	}

	analyzer, err := buildEmotionAnalyzer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize emotion provider", zap.Error(err))
	}

	completer, err := buildCompleter(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize completion provider", zap.Error(err))
	}

	synthesizer, err := buildSynthesizer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize synthesis provider", zap.Error(err))
	}

	collector := metrics.NewCollector("voice", prometheus.DefaultRegisterer)
	pipeline := usecase.NewPipeline(transcriber, analyzer, completer, synthesizer, cfg.Persona, collector, logger)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	api.InitRoutes(e, pipeline, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("stt", cfg.STTProvider),
		zap.String("llm", cfg.LLMProvider),
		zap.String("tts", cfg.TTSProvider),
		zap.String("emotion", cfg.EmotionProvider))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func buildTranscriber(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.Transcriber, error) {
	switch cfg.STTProvider {
	case config.STTGoogle:
		return stt.NewGoogleSpeechToText(ctx, cfg.GoogleLanguage, logger)
	default:
		return stt.NewGroqWhisper(stt.NewGroqConfigFromEnv(), logger)
	}
}

func buildEmotionAnalyzer(cfg *config.Config, logger *zap.Logger) (repositories.EmotionAnalyzer, error) {
	switch cfg.EmotionProvider {
	case config.EmotionHumeBatch:
		return emotion.NewHumeBatch(emotion.NewHumeConfigFromEnv(), logger)
	case config.EmotionHumeStream:
		return emotion.NewHumeStream(emotion.NewHumeConfigFromEnv(), logger)
	default:
		return nil, nil
	}
}

func buildCompleter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.Completer, error) {
	switch cfg.LLMProvider {
	case config.LLMGemini:
		return llm.NewGemini(ctx, llm.NewGeminiConfigFromEnv(), logger)
	default:
		return llm.NewOpenAICompletion(llm.NewOpenAIConfigFromEnv(), logger)
	}
}

func buildSynthesizer(cfg *config.Config, logger *zap.Logger) (repositories.Synthesizer, error) {
	switch cfg.TTSProvider {
	case config.TTSElevenLabs:
		return tts.NewElevenLabs(tts.NewElevenLabsConfigFromEnv(), logger)
	default:
		return tts.NewCartesia(tts.NewCartesiaConfigFromEnv(), logger)
	}
}
