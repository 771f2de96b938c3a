package emotion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"

	"github.com/Modawn-AI/voice/domain"
)

// newStreamServer runs a websocket endpoint that answers every audio
// frame with the given payload.
func newStreamServer(t *testing.T, payload string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		var request map[string]any
		if err := conn.ReadJSON(&request); err != nil {
			t.Errorf("Failed to read audio frame: %v", err)
			return
		}
		if _, ok := request["data"]; !ok {
			t.Error("Audio frame missing data field")
		}

		if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			t.Errorf("Failed to write prediction: %v", err)
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestNewHumeStream(t *testing.T) {
	logger := zaptest.NewLogger(t)

	if _, err := NewHumeStream(HumeConfig{}, logger); err == nil {
		t.Error("Expected error when API key is not set")
	}

	stream, err := NewHumeStream(HumeConfig{APIKey: "test-api-key"}, logger)
	if err != nil {
		t.Fatalf("Failed to create HumeStream: %v", err)
	}
	if stream.streamURL != defaultHumeStreamURL {
		t.Errorf("Expected default stream URL %q, got %q", defaultHumeStreamURL, stream.streamURL)
	}
}

func TestHumeStreamAnalyze(t *testing.T) {
	logger := zaptest.NewLogger(t)

	payload, _ := json.Marshal(map[string]any{
		"prosody": map[string]any{
			"predictions": []map[string]any{
				{
					"time": map[string]float64{"begin": 0.1, "end": 0.9},
					"emotions": []map[string]any{
						{"name": "Excitement", "score": 0.7},
					},
				},
			},
		},
	})

	server := newStreamServer(t, string(payload))
	defer server.Close()

	stream, err := NewHumeStream(HumeConfig{APIKey: "test-api-key", StreamURL: wsURL(server)}, logger)
	if err != nil {
		t.Fatalf("Failed to create HumeStream: %v", err)
	}

	reading, err := stream.Analyze(context.Background(), domain.Recording{Data: []byte("audio")})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(reading) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(reading))
	}
	if reading[0].StartTime != 0.1 || reading[0].EndTime != 0.9 {
		t.Errorf("Unexpected segment timing: %+v", reading[0])
	}
	if len(reading[0].Emotions) != 1 || reading[0].Emotions[0].Name != "Excitement" {
		t.Errorf("Unexpected emotions: %+v", reading[0].Emotions)
	}
}

func TestHumeStreamAnalyzeMalformedPayload(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := newStreamServer(t, `{}`)
	defer server.Close()

	stream, err := NewHumeStream(HumeConfig{APIKey: "test-api-key", StreamURL: wsURL(server)}, logger)
	if err != nil {
		t.Fatalf("Failed to create HumeStream: %v", err)
	}

	reading, err := stream.Analyze(context.Background(), domain.Recording{Data: []byte("audio")})
	if err != nil {
		t.Fatalf("Malformed payload must degrade, not fail: %v", err)
	}
	if len(reading) != 0 {
		t.Errorf("Expected empty reading, got %+v", reading)
	}
}

func TestHumeStreamAnalyzeErrorPayload(t *testing.T) {
	logger := zaptest.NewLogger(t)

	server := newStreamServer(t, `{"error": "audio too short"}`)
	defer server.Close()

	stream, err := NewHumeStream(HumeConfig{APIKey: "test-api-key", StreamURL: wsURL(server)}, logger)
	if err != nil {
		t.Fatalf("Failed to create HumeStream: %v", err)
	}

	reading, err := stream.Analyze(context.Background(), domain.Recording{Data: []byte("audio")})
	if err != nil {
		t.Fatalf("Provider error payload must degrade, not fail: %v", err)
	}
	if len(reading) != 0 {
		t.Errorf("Expected empty reading, got %+v", reading)
	}
}
