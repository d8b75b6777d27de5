package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/domain/repositories"
)

// SpeakOptions selects the voice for a synthesis run. SpeakerProfileID
// takes precedence over Voice when both are set.
type SpeakOptions struct {
	Voice            string
	SpeakerProfileID string
	Locale           string
	Rate             string
	ReducePauses     bool
}

// SynthesisService renders text to audio and saves it.
type SynthesisService struct {
	textToSpeech repositories.TextToSpeech
	logger       *zap.Logger
}

// NewSynthesisService creates a synthesis service.
func NewSynthesisService(tts repositories.TextToSpeech, logger *zap.Logger) *SynthesisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SynthesisService{textToSpeech: tts, logger: logger}
}

// Speak synthesizes text with a personal voice when a speaker profile is
// set, a standard voice otherwise, and writes the audio to outputPath. It
// returns the number of audio bytes written.
func (s *SynthesisService) Speak(ctx context.Context, text, outputPath string, opts SpeakOptions) (int, error) {
	if strings.TrimSpace(text) == "" {
		return 0, &ValidationError{Reason: "nothing to synthesize"}
	}
	if outputPath == "" {
		return 0, &ValidationError{Reason: "output path is required"}
	}

	var (
		audio []byte
		err   error
	)
	switch {
	case opts.SpeakerProfileID != "":
		audio, err = s.textToSpeech.SynthesizePersonal(ctx, text, repositories.PersonalVoiceOptions{
			SpeakerProfileID: opts.SpeakerProfileID,
			Locale:           opts.Locale,
			Rate:             opts.Rate,
			ReducePauses:     opts.ReducePauses,
		})
	case opts.Voice != "":
		audio, err = s.textToSpeech.Synthesize(ctx, text, opts.Voice)
	default:
		return 0, &ValidationError{Reason: "a voice name or speaker profile id is required"}
	}
	if err != nil {
		return 0, fmt.Errorf("synthesis: %w", err)
	}

	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		return 0, fmt.Errorf("failed to save audio: %w", err)
	}

	s.logger.Info("audio saved",
		zap.String("path", outputPath),
		zap.Int("bytes", len(audio)),
	)
	return len(audio), nil
}
