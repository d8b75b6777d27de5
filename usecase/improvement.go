package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/domain/repositories"
)

// ImprovementService loads a transcript file, rewrites it through the
// editor, and saves the result.
type ImprovementService struct {
	editor repositories.TranscriptEditor
	logger *zap.Logger
}

// NewImprovementService creates an improvement service.
func NewImprovementService(editor repositories.TranscriptEditor, logger *zap.Logger) *ImprovementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImprovementService{editor: editor, logger: logger}
}

// Improve reads inputPath, normalizes it for the editor, rewrites it, and
// writes the result to outputPath (default "<stem>_improved<ext>"). It
// returns the improved transcript and the path it was saved to.
func (s *ImprovementService) Improve(ctx context.Context, inputPath, outputPath string, opts repositories.EditOptions) (string, string, error) {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return "", "", &ValidationError{Reason: fmt.Sprintf("input file not found: %s", inputPath)}
	}

	transcript := FormatForEditing(string(raw))
	if strings.TrimSpace(transcript) == "" {
		return "", "", &ValidationError{Reason: "transcript is empty"}
	}

	improved, err := s.editor.Improve(ctx, transcript, opts)
	if err != nil {
		return "", "", fmt.Errorf("transcript improvement: %w", err)
	}

	if outputPath == "" {
		outputPath = improvedPath(inputPath)
	}
	if err := os.WriteFile(outputPath, []byte(improved), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to save improved transcript: %w", err)
	}

	s.logger.Info("improved transcript saved", zap.String("path", outputPath))
	return improved, outputPath, nil
}

// FormatForEditing flattens the transcript formats the transcribe command
// produces into plain text the editor can work on. JSON utterance lists get
// one "Speaker N: text" line per entry when speaker info is present;
// anything unrecognized passes through unchanged.
func FormatForEditing(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return content
	}

	var object map[string]any
	if err := json.Unmarshal([]byte(trimmed), &object); err == nil {
		if text, ok := object["text"].(string); ok {
			return text
		}
		return content
	}

	var list []map[string]any
	if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
		return content
	}

	var b strings.Builder
	for _, item := range list {
		text, ok := item["text"].(string)
		if !ok {
			return content
		}
		if speaker, ok := item["speaker"]; ok {
			fmt.Fprintf(&b, "Speaker %v: %s\n", speaker, text)
		} else {
			b.WriteString(text + "\n")
		}
	}
	return b.String()
}

// improvedPath derives "<stem>_improved<ext>" next to the input.
func improvedPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	stem := strings.TrimSuffix(filepath.Base(inputPath), ext)
	return filepath.Join(filepath.Dir(inputPath), stem+"_improved"+ext)
}
