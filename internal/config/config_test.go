package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"AZURE_SPEECH_KEY", "AZURE_SPEECH_REGION", "AZURE_CUSTOMVOICE_API_VERSION",
		"AZURE_OPENAI_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT",
		"OPENAI_API_KEY", "AZURE_SPEAKER_PROFILE_ID",
		"VOICEFORGE_POLL_MAX_ATTEMPTS", "VOICEFORGE_POLL_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.Speech.Region != "eastus" {
		t.Errorf("Expected default region eastus, got %q", cfg.Speech.Region)
	}
	if cfg.Speech.CustomVoiceAPIVersion != "2024-02-01-preview" {
		t.Errorf("Unexpected api version %q", cfg.Speech.CustomVoiceAPIVersion)
	}
	if cfg.Poll.MaxAttempts != 10 {
		t.Errorf("Expected default 10 attempts, got %d", cfg.Poll.MaxAttempts)
	}
	if cfg.Poll.Interval != 2*time.Second {
		t.Errorf("Expected default 2s interval, got %s", cfg.Poll.Interval)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("AZURE_SPEECH_KEY", "key-1")
	t.Setenv("AZURE_SPEECH_REGION", "westeurope")
	t.Setenv("AZURE_SPEAKER_PROFILE_ID", "profile-abc")
	t.Setenv("VOICEFORGE_POLL_MAX_ATTEMPTS", "25")
	t.Setenv("VOICEFORGE_POLL_INTERVAL", "500ms")

	cfg := FromEnv()
	if cfg.Speech.Key != "key-1" || cfg.Speech.Region != "westeurope" {
		t.Errorf("Env overrides not applied: %+v", cfg.Speech)
	}
	if cfg.Speech.DefaultSpeakerProfileID != "profile-abc" {
		t.Errorf("Expected speaker profile from env, got %q", cfg.Speech.DefaultSpeakerProfileID)
	}
	if cfg.Poll.MaxAttempts != 25 {
		t.Errorf("Expected 25 attempts, got %d", cfg.Poll.MaxAttempts)
	}
	if cfg.Poll.Interval != 500*time.Millisecond {
		t.Errorf("Expected 500ms interval, got %s", cfg.Poll.Interval)
	}
}

func TestFromEnvOpenAIFallback(t *testing.T) {
	t.Setenv("AZURE_OPENAI_KEY", "")
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://x.openai.azure.com/")
	t.Setenv("OPENAI_API_KEY", "plain-key")

	cfg := FromEnv()
	if cfg.OpenAI.APIKey != "plain-key" {
		t.Errorf("Expected fallback to OPENAI_API_KEY, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.OpenAI.Azure() {
		t.Error("Azure surface must not be used with the plain key fallback")
	}
}

func TestSpeechValidate(t *testing.T) {
	if err := (Speech{}).Validate(); err == nil {
		t.Error("Expected error without key")
	}
	if err := (Speech{Key: "k"}).Validate(); err == nil {
		t.Error("Expected error without region or endpoint")
	}
	if err := (Speech{Key: "k", Region: "eastus"}).Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestSpeechEndpointOverride(t *testing.T) {
	s := Speech{Key: "k", Region: "eastus", Endpoint: "http://127.0.0.1:9999"}
	if s.BaseURL() != "http://127.0.0.1:9999" {
		t.Errorf("Expected endpoint override, got %q", s.BaseURL())
	}
	if s.TTSBaseURL() != "http://127.0.0.1:9999" || s.STTBaseURL() != "http://127.0.0.1:9999" {
		t.Error("Endpoint override should apply to every surface")
	}

	regional := Speech{Key: "k", Region: "westus2"}
	if regional.BaseURL() != "https://westus2.api.cognitive.microsoft.com" {
		t.Errorf("Unexpected regional base url %q", regional.BaseURL())
	}
	if regional.TTSBaseURL() != "https://westus2.tts.speech.microsoft.com" {
		t.Errorf("Unexpected tts base url %q", regional.TTSBaseURL())
	}
}
