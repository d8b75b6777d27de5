package repositories

import "context"

// SpeechToText abstracts speech recognition services
type SpeechToText interface {
	// TranscribeAudio converts WAV audio data to text
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (Recognition, error)
}

// AudioConfig represents audio configuration for speech recognition
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Language   string `json:"language"`
	// Profanity is one of "masked", "removed", "raw"
	Profanity string `json:"profanity"`
	// Timestamps requests per-phrase offsets and durations
	Timestamps bool `json:"timestamps"`
}

// RecognizedPhrase is one recognized utterance with its position in the audio
type RecognizedPhrase struct {
	Text       string `json:"text"`
	OffsetMs   int64  `json:"offset_ms"`
	DurationMs int64  `json:"duration_ms"`
}

// Recognition is the full transcription result
type Recognition struct {
	Text    string             `json:"text"`
	Phrases []RecognizedPhrase `json:"phrases,omitempty"`
}
