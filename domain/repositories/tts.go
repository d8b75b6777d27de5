package repositories

import "context"

// PersonalVoiceOptions selects an enrolled speaker profile and prosody
// tweaks for synthesis with a cloned voice.
type PersonalVoiceOptions struct {
	SpeakerProfileID string
	Locale           string
	// Rate is a prosody rate value such as "1.0" or "1.2".
	Rate string
	// ReducePauses shortens the gaps synthesis leaves at punctuation.
	ReducePauses bool
}

// TextToSpeech abstracts speech synthesis services
type TextToSpeech interface {
	// Synthesize renders plain text with a named standard voice
	Synthesize(ctx context.Context, text string, voice string) ([]byte, error)
	// SynthesizePersonal renders plain text with an enrolled personal voice
	SynthesizePersonal(ctx context.Context, text string, opts PersonalVoiceOptions) ([]byte, error)
	// SynthesizeSSML renders a full SSML document
	SynthesizeSSML(ctx context.Context, ssml string) ([]byte, error)
}
