package repositories

import "context"

// EditOptions tunes how a transcript is rewritten.
type EditOptions struct {
	// Model is the deployment or model name to use.
	Model string
	// Formality is one of "casual", "neutral", "formal".
	Formality string
	// PreserveSpeakers keeps speaker labels and turns exactly as given.
	PreserveSpeakers bool
}

// TranscriptEditor abstracts an LLM endpoint that cleans up a raw transcript
// (grammar, filler words, clarity) while preserving its meaning and length.
type TranscriptEditor interface {
	Improve(ctx context.Context, transcript string, opts EditOptions) (string, error)
}
