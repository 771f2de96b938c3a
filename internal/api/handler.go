package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Modawn-AI/voice/domain"
	"github.com/Modawn-AI/voice/usecase"
)

// Response headers carrying the exchange text for client-side history
// reconstruction. Values are percent-encoded UTF-8.
const (
	HeaderTranscript = "X-Transcript"
	HeaderResponse   = "X-Response"
)

// ConverseHandler owns the single conversation endpoint: it validates the
// multipart submission, runs the pipeline and forwards the audio stream.
type ConverseHandler struct {
	pipeline *usecase.Pipeline
	logger   *zap.Logger
}

// NewConverseHandler creates the conversation endpoint handler
func NewConverseHandler(pipeline *usecase.Pipeline, logger *zap.Logger) *ConverseHandler {
	return &ConverseHandler{
		pipeline: pipeline,
		logger:   logger,
	}
}

// Handle processes one POST /api/converse submission.
func (h *ConverseHandler) Handle(c echo.Context) error {
	correlationID := c.Response().Header().Get(echo.HeaderXRequestID)

	input, err := parseInput(c)
	if err != nil {
		h.logger.Warn("rejected invalid input", zap.Error(err))
		return c.String(http.StatusBadRequest, "Invalid request")
	}

	history, err := parseHistory(c)
	if err != nil {
		h.logger.Warn("rejected invalid history", zap.Error(err))
		return c.String(http.StatusBadRequest, "Invalid request")
	}

	exchange, err := h.pipeline.Converse(c.Request().Context(), correlationID, input, history)
	if err != nil {
		var stageErr *usecase.StageError
		if errors.As(err, &stageErr) {
			return h.stageFailure(c, stageErr)
		}
		h.logger.Error("pipeline failed without stage attribution", zap.Error(err))
		return c.String(http.StatusInternalServerError, "Internal error")
	}

	return h.forward(c, correlationID, exchange)
}

// stageFailure maps a pipeline failure to its HTTP status. Reject is the
// client's fault, abort is a provider failure on our side.
func (h *ConverseHandler) stageFailure(c echo.Context, stageErr *usecase.StageError) error {
	status := http.StatusInternalServerError
	if stageErr.Policy == usecase.PolicyReject {
		status = http.StatusBadRequest
	}
	h.logger.Warn("pipeline stage failed",
		zap.String("stage", stageErr.Stage),
		zap.String("policy", string(stageErr.Policy)),
		zap.Error(stageErr.Err))
	return c.String(status, capitalized(stageErr.Message))
}

// forward streams the synthesized audio to the client chunk by chunk; the
// payload is never buffered whole.
func (h *ConverseHandler) forward(c echo.Context, correlationID string, exchange *usecase.Exchange) error {
	if correlationID == "" {
		correlationID = "local"
	}
	log := h.logger.With(zap.String("requestID", correlationID))

	header := c.Response().Header()
	header.Set(HeaderTranscript, url.PathEscape(exchange.Transcript))
	header.Set(HeaderResponse, url.PathEscape(exchange.Reply))

	contentType := exchange.Audio.ContentType
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	header.Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)

	log.Info("stage started", zap.String("stage", usecase.StageStream))
	start := time.Now()
	totalBytes := 0

	writer := c.Response()
	for chunk := range exchange.Audio.Chunks {
		if _, err := writer.Write(chunk); err != nil {
			// Client went away; drain the producer and stop.
			log.Warn("audio forwarding interrupted", zap.Error(err))
			drain(exchange.Audio.Chunks)
			return nil
		}
		writer.Flush()
		totalBytes += len(chunk)
	}

	log.Info("stage finished",
		zap.String("stage", usecase.StageStream),
		zap.Int("totalBytes", totalBytes),
		zap.Duration("elapsed", time.Since(start)))

	return nil
}

// parseInput extracts the mutually exclusive "input" field: a text value
// or an uploaded audio file, exactly one of the two.
func parseInput(c echo.Context) (domain.Input, error) {
	text := c.FormValue("input")

	file, err := c.FormFile("input")
	if err != nil {
		file = nil
	}

	if file != nil {
		if text != "" {
			return domain.Input{}, errors.New("input must be text or audio, not both")
		}
		src, err := file.Open()
		if err != nil {
			return domain.Input{}, err
		}
		defer src.Close()

		data, err := io.ReadAll(src)
		if err != nil {
			return domain.Input{}, err
		}
		if len(data) == 0 {
			return domain.Input{}, errors.New("audio upload is empty")
		}

		return domain.Input{Recording: &domain.Recording{
			Data:     data,
			Name:     file.Filename,
			MIMEType: file.Header.Get(echo.HeaderContentType),
		}}, nil
	}

	if text == "" {
		return domain.Input{}, errors.New("input field is required")
	}
	return domain.Input{Text: text}, nil
}

// parseHistory decodes every repeated "message" form field into a turn.
// One malformed entry rejects the whole request.
func parseHistory(c echo.Context) ([]domain.Turn, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// Not multipart or no form at all means no history.
		return nil, nil
	}

	values := form.Value["message"]
	history := make([]domain.Turn, 0, len(values))
	for _, value := range values {
		turn, err := domain.ParseTurn([]byte(value))
		if err != nil {
			return nil, err
		}
		history = append(history, turn)
	}
	return history, nil
}

// drain consumes leftover producer chunks so its goroutine can exit.
func drain(chunks <-chan []byte) {
	for range chunks {
	}
}

func capitalized(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
