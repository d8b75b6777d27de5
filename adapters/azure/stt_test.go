package azure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/voiceforge/voiceforge/domain/repositories"
	"github.com/voiceforge/voiceforge/internal/config"
)

func newTestSTTClient(t *testing.T, handler http.Handler) *SpeechToTextClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewSpeechToTextClient(config.Speech{
		Key:      "test-key",
		Endpoint: server.URL,
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewSpeechToTextClient returned error: %v", err)
	}
	return client
}

func TestTranscribeAudio(t *testing.T) {
	client := newTestSTTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/speech/recognition/conversation/cognitiveservices/v1" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("language"); got != "en-GB" {
			t.Errorf("Expected language en-GB, got %q", got)
		}
		if got := r.URL.Query().Get("profanity"); got != "removed" {
			t.Errorf("Expected profanity removed, got %q", got)
		}
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "test-key" {
			t.Error("Missing subscription key header")
		}

		w.Write([]byte(`{
			"RecognitionStatus": "Success",
			"DisplayText": "Hello there.",
			"Offset": 12300000,
			"Duration": 8000000
		}`))
	}))

	recognition, err := client.TranscribeAudio(context.Background(), []byte("RIFF audio"), repositories.AudioConfig{
		Language:   "en-GB",
		Profanity:  "removed",
		Timestamps: true,
	})
	if err != nil {
		t.Fatalf("TranscribeAudio returned error: %v", err)
	}
	if recognition.Text != "Hello there." {
		t.Errorf("Expected display text, got %q", recognition.Text)
	}
	if len(recognition.Phrases) != 1 {
		t.Fatalf("Expected 1 phrase, got %d", len(recognition.Phrases))
	}
	if recognition.Phrases[0].OffsetMs != 1230 {
		t.Errorf("Expected offset 1230ms, got %d", recognition.Phrases[0].OffsetMs)
	}
	if recognition.Phrases[0].DurationMs != 800 {
		t.Errorf("Expected duration 800ms, got %d", recognition.Phrases[0].DurationMs)
	}
}

func TestTranscribeAudioNoMatch(t *testing.T) {
	client := newTestSTTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"RecognitionStatus": "NoMatch"}`))
	}))

	_, err := client.TranscribeAudio(context.Background(), []byte("RIFF audio"), repositories.AudioConfig{})
	if err == nil {
		t.Fatal("Expected error for NoMatch status")
	}
}

func TestTranscribeAudioServiceError(t *testing.T) {
	client := newTestSTTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid key"))
	}))

	_, err := client.TranscribeAudio(context.Background(), []byte("RIFF audio"), repositories.AudioConfig{})
	if !IsServiceError(err) {
		t.Fatalf("Expected ServiceError, got %v", err)
	}
}

func TestTranscribeAudioEmptyInput(t *testing.T) {
	client := newTestSTTClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request expected for empty audio")
	}))

	_, err := client.TranscribeAudio(context.Background(), nil, repositories.AudioConfig{})
	if err == nil {
		t.Fatal("Expected error for empty audio")
	}
}
