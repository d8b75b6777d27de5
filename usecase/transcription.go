package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/domain/repositories"
)

// Transcript output formats.
const (
	FormatSimple   = "simple"
	FormatDetailed = "detailed"
	FormatJSON     = "json"
)

// TranscribeOptions tunes a transcription run.
type TranscribeOptions struct {
	Language   string
	Profanity  string
	Format     string
	Timestamps bool
}

// TranscriptionService converts an audio file to a rendered transcript.
type TranscriptionService struct {
	speechToText repositories.SpeechToText
	converter    repositories.AudioConverter
	logger       *zap.Logger
}

// NewTranscriptionService creates a transcription service.
func NewTranscriptionService(
	stt repositories.SpeechToText,
	converter repositories.AudioConverter,
	logger *zap.Logger,
) *TranscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptionService{
		speechToText: stt,
		converter:    converter,
		logger:       logger,
	}
}

// Transcribe converts the input to WAV, recognizes it, and renders the
// result in the requested format.
func (s *TranscriptionService) Transcribe(ctx context.Context, inputPath string, opts TranscribeOptions) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", &ValidationError{Reason: fmt.Sprintf("input file not found: %s", inputPath)}
	}

	converted, err := s.converter.ConvertToWAV(ctx, inputPath)
	if err != nil {
		return "", fmt.Errorf("audio conversion: %w", err)
	}
	if converted.Temporary {
		defer os.Remove(converted.Path)
	}

	audio, err := os.ReadFile(converted.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read converted audio: %w", err)
	}

	// Detailed and JSON output always carry offsets.
	if opts.Format != FormatSimple && opts.Format != "" {
		opts.Timestamps = true
	}

	recognition, err := s.speechToText.TranscribeAudio(ctx, audio, repositories.AudioConfig{
		SampleRate: 16000,
		Language:   opts.Language,
		Profanity:  opts.Profanity,
		Timestamps: opts.Timestamps,
	})
	if err != nil {
		return "", fmt.Errorf("transcription: %w", err)
	}

	return renderTranscript(recognition, opts)
}

// renderTranscript formats a recognition result as simple text, per-phrase
// lines with offsets, or JSON.
func renderTranscript(recognition repositories.Recognition, opts TranscribeOptions) (string, error) {
	switch opts.Format {
	case FormatJSON:
		type entry struct {
			Text       string `json:"text"`
			OffsetMs   int64  `json:"offset_ms,omitempty"`
			DurationMs int64  `json:"duration_ms,omitempty"`
		}
		entries := make([]entry, 0, len(recognition.Phrases))
		for _, phrase := range recognition.Phrases {
			entries = append(entries, entry{
				Text:       phrase.Text,
				OffsetMs:   phrase.OffsetMs,
				DurationMs: phrase.DurationMs,
			})
		}
		if len(entries) == 0 {
			entries = append(entries, entry{Text: recognition.Text})
		}
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode transcript: %w", err)
		}
		return string(out), nil

	case FormatDetailed:
		var b strings.Builder
		if len(recognition.Phrases) == 0 {
			b.WriteString(recognition.Text + "\n")
			return b.String(), nil
		}
		for _, phrase := range recognition.Phrases {
			fmt.Fprintf(&b, "[%.2fs] %s\n", float64(phrase.OffsetMs)/1000, phrase.Text)
		}
		return b.String(), nil

	case FormatSimple, "":
		if recognition.Text != "" || len(recognition.Phrases) == 0 {
			return recognition.Text, nil
		}
		parts := make([]string, 0, len(recognition.Phrases))
		for _, phrase := range recognition.Phrases {
			parts = append(parts, phrase.Text)
		}
		return strings.Join(parts, " "), nil

	default:
		return "", &ValidationError{Reason: fmt.Sprintf("unknown output format %q", opts.Format)}
	}
}

// SaveTranscript writes the transcript to outputPath, deriving
// "<input stem>.txt" when no explicit path was given. Returns the path used.
func SaveTranscript(transcript, outputPath, inputPath string) (string, error) {
	if outputPath == "" {
		outputPath = replaceExt(inputPath, ".txt")
	}
	if outputPath == "" {
		outputPath = "transcript.txt"
	}
	if err := os.WriteFile(outputPath, []byte(transcript), 0o644); err != nil {
		return "", fmt.Errorf("failed to save transcript: %w", err)
	}
	return outputPath, nil
}

func replaceExt(path, newExt string) string {
	if path == "" {
		return ""
	}
	ext := strings.LastIndex(path, ".")
	slash := strings.LastIndexAny(path, "/\\")
	if ext > slash {
		return path[:ext] + newExt
	}
	return path + newExt
}
