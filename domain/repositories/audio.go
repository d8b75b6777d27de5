package repositories

import "context"

// ConvertedAudio is the result of normalizing an input file for upload.
type ConvertedAudio struct {
	// Path of the WAV file ready for the speech service.
	Path string
	// Temporary is true when Path is a generated file the caller should
	// remove after use (the input was not already WAV).
	Temporary bool
}

// StreamInfo describes the first audio stream of a file.
type StreamInfo struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Channels        int     `json:"channels"`
	SampleRate      int     `json:"sample_rate"`
	BitsPerSample   int     `json:"bits_per_sample"`
}

// AudioConverter normalizes arbitrary audio containers to 16-bit PCM,
// 16 kHz, mono WAV. A conversion failure must abort the flow before any
// remote call is made for that artifact.
type AudioConverter interface {
	ConvertToWAV(ctx context.Context, inputPath string) (ConvertedAudio, error)
	Probe(ctx context.Context, path string) (StreamInfo, error)
}
