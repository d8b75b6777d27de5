package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/domain/repositories"
	"github.com/voiceforge/voiceforge/internal/config"
)

const (
	ttsHTTPTimeout = 120 * time.Second

	// personalVoiceBase is the neural base voice that hosts speaker profile
	// embeddings.
	personalVoiceBase = "DragonLatestNeural"

	defaultOutputFormat = "riff-16khz-16bit-mono-pcm"
)

// TextToSpeechClient implements TextToSpeech over the synthesis REST API.
type TextToSpeechClient struct {
	key          string
	baseURL      string
	outputFormat string
	httpClient   *http.Client
	logger       *zap.Logger
}

// Ensure TextToSpeechClient implements the TextToSpeech interface
var _ repositories.TextToSpeech = (*TextToSpeechClient)(nil)

// NewTextToSpeechClient creates a synthesis client from the speech config.
func NewTextToSpeechClient(cfg config.Speech, logger *zap.Logger) (*TextToSpeechClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TextToSpeechClient{
		key:          cfg.Key,
		baseURL:      strings.TrimRight(cfg.TTSBaseURL(), "/"),
		outputFormat: defaultOutputFormat,
		httpClient:   newHTTPClient(ttsHTTPTimeout),
		logger:       logger,
	}, nil
}

// SetOutputFormat overrides the X-Microsoft-OutputFormat header value.
func (c *TextToSpeechClient) SetOutputFormat(format string) {
	if format != "" {
		c.outputFormat = format
	}
}

// Synthesize renders plain text with a named standard voice.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string, voice string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	ssml := fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'><voice name='%s'>%s</voice></speak>`,
		voice, escapeSSML(text))
	return c.SynthesizeSSML(ctx, ssml)
}

// SynthesizePersonal renders plain text with a trained personal voice.
func (c *TextToSpeechClient) SynthesizePersonal(ctx context.Context, text string, opts repositories.PersonalVoiceOptions) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if opts.SpeakerProfileID == "" {
		return nil, fmt.Errorf("speaker profile id cannot be empty")
	}
	ssml := PersonalVoiceSSML(text, opts.SpeakerProfileID, opts.Locale, opts.Rate, opts.ReducePauses)
	return c.SynthesizeSSML(ctx, ssml)
}

// SynthesizeSSML renders a full SSML document and returns the audio bytes.
func (c *TextToSpeechClient) SynthesizeSSML(ctx context.Context, ssml string) ([]byte, error) {
	if strings.TrimSpace(ssml) == "" {
		return nil, fmt.Errorf("ssml cannot be empty")
	}

	endpoint := c.baseURL + "/cognitiveservices/v1"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("failed to build synthesis request: %w", err)
	}
	req.Header.Set(subscriptionKeyHeader, c.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.outputFormat)
	req.Header.Set("User-Agent", "voiceforge")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{
			StatusCode: resp.StatusCode,
			Endpoint:   req.URL.Path,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	c.logger.Info("speech synthesized", zap.Int("bytes", len(body)))
	return body, nil
}

// PersonalVoiceSSML builds the SSML document addressing a trained personal
// voice through its speaker profile id. Rate is a prosody rate value such as
// "1.0" or "1.2". When reducePauses is set, sentence punctuation gets weak
// break tags so synthesis runs with shorter gaps.
func PersonalVoiceSSML(text, speakerProfileID, locale, rate string, reducePauses bool) string {
	if locale == "" {
		locale = "en-US"
	}
	if rate == "" {
		rate = "1.0"
	}

	text = escapeSSML(text)
	if reducePauses {
		text = strings.ReplaceAll(text, ". ", `.<break strength="weak"/> `)
		text = strings.ReplaceAll(text, "? ", `?<break strength="weak"/> `)
		text = strings.ReplaceAll(text, "! ", `!<break strength="weak"/> `)
		text = strings.ReplaceAll(text, ", ", `,<break strength="none"/> `)
	}

	return fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xmlns:mstts='http://www.w3.org/2001/mstts' xml:lang='%s'>`+
			`<voice name='%s'><mstts:ttsembedding speakerProfileId='%s'><prosody rate="%s">%s</prosody></mstts:ttsembedding></voice></speak>`,
		locale, personalVoiceBase, speakerProfileID, rate, text)
}

// escapeSSML escapes the XML special characters in user text. Break tags are
// inserted after escaping, so they stay intact.
func escapeSSML(text string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	return replacer.Replace(text)
}
