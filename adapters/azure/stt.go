package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/domain/repositories"
	"github.com/voiceforge/voiceforge/internal/config"
)

const sttHTTPTimeout = 120 * time.Second

// SpeechToTextClient implements SpeechToText over the short-audio
// recognition REST API.
type SpeechToTextClient struct {
	key        string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure SpeechToTextClient implements the SpeechToText interface
var _ repositories.SpeechToText = (*SpeechToTextClient)(nil)

// NewSpeechToTextClient creates a recognition client from the speech config.
func NewSpeechToTextClient(cfg config.Speech, logger *zap.Logger) (*SpeechToTextClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SpeechToTextClient{
		key:        cfg.Key,
		baseURL:    strings.TrimRight(cfg.STTBaseURL(), "/"),
		httpClient: newHTTPClient(sttHTTPTimeout),
		logger:     logger,
	}, nil
}

// recognitionResponse is the detailed-format response of the short-audio API.
// Offsets and durations are in 100-nanosecond ticks.
type recognitionResponse struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
	Offset            int64  `json:"Offset"`
	Duration          int64  `json:"Duration"`
	NBest             []struct {
		Display string `json:"Display"`
		Lexical string `json:"Lexical"`
	} `json:"NBest"`
}

// TranscribeAudio sends WAV audio to the conversation recognition endpoint
// and returns the recognized text with its position in the audio.
func (c *SpeechToTextClient) TranscribeAudio(ctx context.Context, audioData []byte, cfg repositories.AudioConfig) (repositories.Recognition, error) {
	if len(audioData) == 0 {
		return repositories.Recognition{}, fmt.Errorf("audio data is empty")
	}

	language := cfg.Language
	if language == "" {
		language = "en-US"
	}
	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = 16000
	}

	query := url.Values{}
	query.Set("language", language)
	query.Set("format", "detailed")
	if cfg.Profanity != "" {
		query.Set("profanity", cfg.Profanity)
	}

	endpoint := fmt.Sprintf("%s/speech/recognition/conversation/cognitiveservices/v1?%s",
		c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audioData))
	if err != nil {
		return repositories.Recognition{}, fmt.Errorf("failed to build recognition request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.key)
	req.Header.Set("Content-Type",
		fmt.Sprintf("audio/wav; codec=audio/pcm; samplerate=%d", sampleRate))
	req.Header.Set("Accept", "application/json")

	c.logger.Info("transcribing audio",
		zap.String("language", language),
		zap.Int("bytes", len(audioData)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return repositories.Recognition{}, fmt.Errorf("recognition request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return repositories.Recognition{}, fmt.Errorf("failed to read recognition response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return repositories.Recognition{}, &ServiceError{
			StatusCode: resp.StatusCode,
			Endpoint:   req.URL.Path,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var result recognitionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return repositories.Recognition{}, fmt.Errorf("failed to decode recognition response: %w", err)
	}

	if result.RecognitionStatus != "Success" {
		return repositories.Recognition{}, fmt.Errorf("recognition status %s", result.RecognitionStatus)
	}

	text := result.DisplayText
	if text == "" && len(result.NBest) > 0 {
		text = result.NBest[0].Display
	}

	recognition := repositories.Recognition{Text: text}
	if cfg.Timestamps {
		recognition.Phrases = []repositories.RecognizedPhrase{{
			Text:       text,
			OffsetMs:   ticksToMs(result.Offset),
			DurationMs: ticksToMs(result.Duration),
		}}
	}
	return recognition, nil
}

// ticksToMs converts the service's 100ns ticks to milliseconds.
func ticksToMs(ticks int64) int64 {
	return ticks / 10000
}
