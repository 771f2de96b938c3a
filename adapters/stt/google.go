package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/Modawn-AI/voice/domain"
	"github.com/Modawn-AI/voice/domain/repositories"
)

// GoogleSpeechToText implements Transcriber using Google Cloud
// Speech-to-Text. The client is created once at startup and reused
// across requests.
type GoogleSpeechToText struct {
	client     *speech.Client
	sampleRate int32
	language   string
	logger     *zap.Logger
}

var _ repositories.Transcriber = (*GoogleSpeechToText)(nil)

// NewGoogleSpeechToText creates the Google Cloud Speech client. Credentials
// are resolved by the client library (GOOGLE_APPLICATION_CREDENTIALS).
func NewGoogleSpeechToText(ctx context.Context, language string, logger *zap.Logger) (*GoogleSpeechToText, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}

	if language == "" {
		language = "ko-KR"
		logger.Info("Using default recognition language", zap.String("language", language))
	}

	return &GoogleSpeechToText{
		client:     client,
		sampleRate: 16000,
		language:   language,
		logger:     logger,
	}, nil
}

// Close releases the underlying gRPC connection.
func (g *GoogleSpeechToText) Close() error {
	return g.client.Close()
}

// Transcribe runs a one-shot recognition over the whole recording.
func (g *GoogleSpeechToText) Transcribe(ctx context.Context, rec domain.Recording) (string, error) {
	if len(rec.Data) == 0 {
		return "", fmt.Errorf("recording is empty")
	}

	resp, err := g.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encodingForMIMEType(rec.MIMEType),
			SampleRateHertz: g.sampleRate,
			LanguageCode:    g.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: rec.Data},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to recognize audio: %w", err)
	}

	var transcript string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript += result.Alternatives[0].Transcript
		}
	}

	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return "", fmt.Errorf("no speech detected in audio")
	}

	g.logger.Info("Transcription completed",
		zap.String("language", g.language),
		zap.Int("transcriptLength", len(transcript)))

	return transcript, nil
}

// encodingForMIMEType maps the browser's declared MIME type to a Google
// Speech encoding. Unknown types fall back to LINEAR16, which matches the
// WAV segments the capture client uploads.
func encodingForMIMEType(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	switch {
	case strings.Contains(mimeType, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.Contains(mimeType, "ogg"):
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(mimeType, "flac"):
		return speechpb.RecognitionConfig_FLAC
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}
