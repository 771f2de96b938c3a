package emotion

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Modawn-AI/voice/domain"
	"github.com/Modawn-AI/voice/domain/repositories"
)

// HumeStream implements EmotionAnalyzer over the expression-measurement
// streaming socket: one connection per request, one base64 audio frame
// sent, one prediction message read back.
type HumeStream struct {
	apiKey    string
	streamURL string
	timeout   time.Duration
	dialer    *websocket.Dialer
	logger    *zap.Logger
}

var _ repositories.EmotionAnalyzer = (*HumeStream)(nil)

// NewHumeStream creates a new streaming-mode Hume adapter
func NewHumeStream(config HumeConfig, logger *zap.Logger) (*HumeStream, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("hume API key is required")
	}
	config = config.withDefaults()

	return &HumeStream{
		apiKey:    config.APIKey,
		streamURL: config.StreamURL,
		timeout:   config.Timeout,
		dialer:    websocket.DefaultDialer,
		logger:    logger,
	}, nil
}

type humeStreamRequest struct {
	Models struct {
		Prosody struct{} `json:"prosody"`
	} `json:"models"`
	Data string `json:"data"`
}

// humeStreamResult is the prediction message shape. Absent fields degrade
// to an empty reading.
type humeStreamResult struct {
	Prosody struct {
		Predictions []struct {
			Time struct {
				Begin float64 `json:"begin"`
				End   float64 `json:"end"`
			} `json:"time"`
			Emotions []struct {
				Name  string  `json:"name"`
				Score float64 `json:"score"`
			} `json:"emotions"`
		} `json:"predictions"`
	} `json:"prosody"`
	Error string `json:"error"`
}

// Analyze sends the recording over the socket and reshapes the single
// prediction message it gets back.
func (h *HumeStream) Analyze(ctx context.Context, rec domain.Recording) (domain.EmotionReading, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	header := http.Header{}
	header.Set("X-Hume-Api-Key", h.apiKey)

	conn, resp, err := h.dialer.DialContext(ctx, h.streamURL, header)
	if err != nil {
		if resp != nil {
			h.logger.Error("Hume stream handshake failed",
				zap.Int("statusCode", resp.StatusCode),
				zap.Error(err))
		}
		return nil, fmt.Errorf("failed to connect to hume stream: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}

	var request humeStreamRequest
	request.Data = base64.StdEncoding.EncodeToString(rec.Data)
	if err := conn.WriteJSON(request); err != nil {
		return nil, fmt.Errorf("failed to send audio frame: %w", err)
	}

	var result humeStreamResult
	if err := conn.ReadJSON(&result); err != nil {
		return nil, fmt.Errorf("failed to read prediction message: %w", err)
	}

	if result.Error != "" {
		// The socket answered but could not score the audio; soft failure.
		h.logger.Warn("Hume stream returned an error payload", zap.String("error", result.Error))
		return domain.EmotionReading{}, nil
	}

	reading := domain.EmotionReading{}
	for _, prediction := range result.Prosody.Predictions {
		emotions := make([]domain.EmotionScore, 0, len(prediction.Emotions))
		for _, e := range prediction.Emotions {
			emotions = append(emotions, domain.EmotionScore{Name: e.Name, Score: e.Score})
		}
		reading = append(reading, domain.EmotionSegment{
			StartTime: prediction.Time.Begin,
			EndTime:   prediction.Time.End,
			Emotions:  emotions,
		})
	}

	h.logger.Info("Prosody analysis completed", zap.Int("segments", len(reading)))
	return reading, nil
}
