// Package config holds the explicit configuration passed into every adapter
// and service. Environment variables are read in exactly one place
// (FromEnv); constructors elsewhere take these structs and never touch the
// environment themselves.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultRegion                = "eastus"
	defaultCustomVoiceAPIVersion = "2024-02-01-preview"
	defaultLocale                = "en-US"
	defaultVoice                 = "en-US-JennyNeural"
	defaultOpenAIAPIVersion      = "2023-05-15"
	defaultPollMaxAttempts       = 10
	defaultPollInterval          = 2 * time.Second
)

// Speech configures the Azure Speech Service clients.
type Speech struct {
	// Key is the Ocp-Apim-Subscription-Key value. Required.
	Key string
	// Region selects the regional endpoint, e.g. "eastus".
	Region string
	// Endpoint overrides the derived regional endpoint (used in tests).
	Endpoint string
	// CustomVoiceAPIVersion is the customvoice API version query parameter.
	CustomVoiceAPIVersion string
	// DefaultLocale is used when a command does not specify one.
	DefaultLocale string
	// DefaultVoice is the standard synthesis voice.
	DefaultVoice string
	// DefaultSpeakerProfileID selects an enrolled personal voice for
	// synthesis when a command does not specify one.
	DefaultSpeakerProfileID string
}

// Validate checks the fields a remote call cannot work without.
func (s Speech) Validate() error {
	if s.Key == "" {
		return fmt.Errorf("azure speech key is required (set AZURE_SPEECH_KEY)")
	}
	if s.Region == "" && s.Endpoint == "" {
		return fmt.Errorf("azure speech region is required (set AZURE_SPEECH_REGION)")
	}
	return nil
}

// BaseURL returns the cognitive services endpoint for the configured region.
func (s Speech) BaseURL() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	return fmt.Sprintf("https://%s.api.cognitive.microsoft.com", s.Region)
}

// TTSBaseURL returns the synthesis endpoint for the configured region.
func (s Speech) TTSBaseURL() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com", s.Region)
}

// STTBaseURL returns the short-audio recognition endpoint.
func (s Speech) STTBaseURL() string {
	if s.Endpoint != "" {
		return s.Endpoint
	}
	return fmt.Sprintf("https://%s.stt.speech.microsoft.com", s.Region)
}

// OpenAI configures the transcript editor endpoint. Azure OpenAI is used
// when AzureEndpoint is set, the plain OpenAI-compatible API otherwise.
type OpenAI struct {
	APIKey        string
	AzureEndpoint string
	// Deployment is the Azure deployment name (or model name outside Azure).
	Deployment string
	APIVersion string
}

// Azure reports whether the Azure OpenAI surface should be used.
func (o OpenAI) Azure() bool {
	return o.AzureEndpoint != "" && o.Deployment != ""
}

// Validate checks that some usable credential is present.
func (o OpenAI) Validate() error {
	if o.APIKey == "" {
		return fmt.Errorf("openai api key is required (set AZURE_OPENAI_KEY or OPENAI_API_KEY)")
	}
	return nil
}

// Poll tunes the asynchronous operation poller.
type Poll struct {
	MaxAttempts int
	Interval    time.Duration
}

// Config aggregates everything a command needs.
type Config struct {
	Speech Speech
	OpenAI OpenAI
	Poll   Poll
}

// FromEnv builds a Config from environment variables, applying defaults for
// everything optional. Callers load .env files before calling this.
func FromEnv() Config {
	cfg := Config{
		Speech: Speech{
			Key:                     os.Getenv("AZURE_SPEECH_KEY"),
			Region:                  envOr("AZURE_SPEECH_REGION", defaultRegion),
			CustomVoiceAPIVersion:   envOr("AZURE_CUSTOMVOICE_API_VERSION", defaultCustomVoiceAPIVersion),
			DefaultLocale:           envOr("VOICEFORGE_LOCALE", defaultLocale),
			DefaultVoice:            envOr("VOICEFORGE_VOICE", defaultVoice),
			DefaultSpeakerProfileID: os.Getenv("AZURE_SPEAKER_PROFILE_ID"),
		},
		OpenAI: OpenAI{
			APIKey:        os.Getenv("AZURE_OPENAI_KEY"),
			AzureEndpoint: os.Getenv("AZURE_OPENAI_ENDPOINT"),
			Deployment:    os.Getenv("AZURE_OPENAI_DEPLOYMENT"),
			APIVersion:    envOr("AZURE_OPENAI_API_VERSION", defaultOpenAIAPIVersion),
		},
		Poll: Poll{
			MaxAttempts: envInt("VOICEFORGE_POLL_MAX_ATTEMPTS", defaultPollMaxAttempts),
			Interval:    envDuration("VOICEFORGE_POLL_INTERVAL", defaultPollInterval),
		},
	}

	// Plain OpenAI fallback mirrors the Azure-first credential lookup.
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
		cfg.OpenAI.AzureEndpoint = ""
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
