package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Modawn-AI/voice/domain"
	"github.com/Modawn-AI/voice/domain/repositories"
)

// HumeBatch implements EmotionAnalyzer via the batch jobs API: submit the
// recording as an inference job, then poll the predictions endpoint until
// the job completes. A 400 from the predictions endpoint means the job is
// still running.
type HumeBatch struct {
	apiKey       string
	apiBaseURL   string
	pollInterval time.Duration
	timeout      time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
}

var _ repositories.EmotionAnalyzer = (*HumeBatch)(nil)

// NewHumeBatch creates a new batch-mode Hume adapter
func NewHumeBatch(config HumeConfig, logger *zap.Logger) (*HumeBatch, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("hume API key is required")
	}
	config = config.withDefaults()

	return &HumeBatch{
		apiKey:       config.APIKey,
		apiBaseURL:   config.APIBaseURL,
		pollInterval: config.PollInterval,
		timeout:      config.Timeout,
		httpClient:   &http.Client{Timeout: config.Timeout},
		logger:       logger,
	}, nil
}

type humeJobResponse struct {
	JobID string `json:"job_id"`
}

// humeBatchResult mirrors the slice of the predictions payload we care
// about. Every level is optional; absence degrades to an empty reading.
type humeBatchResult []struct {
	Results struct {
		Predictions []struct {
			Models struct {
				Prosody struct {
					GroupedPredictions []struct {
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
					} `json:"grouped_predictions"`
				} `json:"prosody"`
			} `json:"models"`
		} `json:"predictions"`
	} `json:"results"`
}

// Analyze submits the recording and blocks until predictions are ready or
// the polling budget runs out.
func (h *HumeBatch) Analyze(ctx context.Context, rec domain.Recording) (domain.EmotionReading, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	jobID, err := h.submitJob(ctx, rec)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Hume inference job submitted", zap.String("jobID", jobID))

	return h.pollPredictions(ctx, jobID)
}

func (h *HumeBatch) submitJob(ctx context.Context, rec domain.Recording) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	name := rec.Name
	if name == "" {
		name = "audio.wav"
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(rec.Data); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.WriteField("json", `{"models": {"prosody": {}}}`); err != nil {
		return "", fmt.Errorf("failed to write models field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize form: %w", err)
	}

	url := fmt.Sprintf("%s/v0/batch/jobs", h.apiBaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("X-Hume-Api-Key", h.apiKey)

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to submit inference job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		errorBody, _ := io.ReadAll(resp.Body)
		h.logger.Error("Hume job submission returned error",
			zap.Int("statusCode", resp.StatusCode),
			zap.String("response", string(errorBody)))
		return "", fmt.Errorf("hume API returned status %d", resp.StatusCode)
	}

	var job humeJobResponse
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return "", fmt.Errorf("failed to decode job response: %w", err)
	}
	if job.JobID == "" {
		return "", fmt.Errorf("hume API returned no job id")
	}
	return job.JobID, nil
}

func (h *HumeBatch) pollPredictions(ctx context.Context, jobID string) (domain.EmotionReading, error) {
	url := fmt.Sprintf("%s/v0/batch/jobs/%s/predictions", h.apiBaseURL, jobID)

	for {
		httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP request: %w", err)
		}
		httpReq.Header.Set("X-Hume-Api-Key", h.apiKey)

		resp, err := h.httpClient.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch predictions: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			defer resp.Body.Close()
			var result humeBatchResult
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				// Malformed payload is a soft failure.
				h.logger.Warn("Hume predictions payload was malformed", zap.Error(err))
				return domain.EmotionReading{}, nil
			}
			return reshapeBatchResult(result), nil
		case http.StatusBadRequest:
			// Job still in progress.
			resp.Body.Close()
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("gave up waiting for inference job: %w", ctx.Err())
			case <-time.After(h.pollInterval):
			}
		default:
			errorBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			h.logger.Error("Hume predictions returned error",
				zap.Int("statusCode", resp.StatusCode),
				zap.String("response", string(errorBody)))
			return nil, fmt.Errorf("hume API returned status %d", resp.StatusCode)
		}
	}
}

func reshapeBatchResult(result humeBatchResult) domain.EmotionReading {
	reading := domain.EmotionReading{}
	for _, source := range result {
		for _, prediction := range source.Results.Predictions {
			for _, group := range prediction.Models.Prosody.GroupedPredictions {
				for _, segment := range group.Predictions {
					emotions := make([]domain.EmotionScore, 0, len(segment.Emotions))
					for _, e := range segment.Emotions {
						emotions = append(emotions, domain.EmotionScore{Name: e.Name, Score: e.Score})
					}
					reading = append(reading, domain.EmotionSegment{
						StartTime: segment.Time.Begin,
						EndTime:   segment.Time.End,
						Emotions:  emotions,
					})
				}
			}
		}
	}
	return reading
}
