package usecase

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/voiceforge/voiceforge/domain/repositories"
)

type fakeSpeechToText struct {
	recognition repositories.Recognition
	gotConfig   repositories.AudioConfig
}

func (f *fakeSpeechToText) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (repositories.Recognition, error) {
	f.gotConfig = config
	return f.recognition, nil
}

func newTranscriptionService(t *testing.T, stt *fakeSpeechToText) *TranscriptionService {
	return NewTranscriptionService(stt, passthroughConverter{}, zaptest.NewLogger(t))
}

func TestTranscribeSimpleFormat(t *testing.T) {
	stt := &fakeSpeechToText{recognition: repositories.Recognition{Text: "hello world"}}
	svc := newTranscriptionService(t, stt)

	input := writeAudioFile(t, t.TempDir(), "in.wav")
	out, err := svc.Transcribe(context.Background(), input, TranscribeOptions{Language: "en-US"})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if out != "hello world" {
		t.Errorf("Expected 'hello world', got %q", out)
	}
	if stt.gotConfig.Language != "en-US" {
		t.Errorf("Expected language to be forwarded, got %q", stt.gotConfig.Language)
	}
}

func TestTranscribeDetailedWithTimestamps(t *testing.T) {
	stt := &fakeSpeechToText{recognition: repositories.Recognition{
		Text: "hello world",
		Phrases: []repositories.RecognizedPhrase{
			{Text: "hello world", OffsetMs: 1230, DurationMs: 800},
		},
	}}
	svc := newTranscriptionService(t, stt)

	input := writeAudioFile(t, t.TempDir(), "in.wav")
	out, err := svc.Transcribe(context.Background(), input, TranscribeOptions{
		Format:     FormatDetailed,
		Timestamps: true,
	})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if !strings.Contains(out, "[1.23s] hello world") {
		t.Errorf("Expected timestamped line, got %q", out)
	}
}

func TestTranscribeDetailedImpliesTimestamps(t *testing.T) {
	stt := &fakeSpeechToText{recognition: repositories.Recognition{
		Text: "hello world",
		Phrases: []repositories.RecognizedPhrase{
			{Text: "hello world", OffsetMs: 1230, DurationMs: 800},
		},
	}}
	svc := newTranscriptionService(t, stt)

	input := writeAudioFile(t, t.TempDir(), "in.wav")
	out, err := svc.Transcribe(context.Background(), input, TranscribeOptions{Format: FormatDetailed})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}
	if !stt.gotConfig.Timestamps {
		t.Error("Expected timestamp collection to be requested for detailed format")
	}
	if !strings.Contains(out, "[1.23s] hello world") {
		t.Errorf("Expected offsets without an explicit timestamps option, got %q", out)
	}
}

func TestTranscribeJSONFormat(t *testing.T) {
	stt := &fakeSpeechToText{recognition: repositories.Recognition{
		Text: "hello",
		Phrases: []repositories.RecognizedPhrase{
			{Text: "hello", OffsetMs: 100, DurationMs: 500},
		},
	}}
	svc := newTranscriptionService(t, stt)

	input := writeAudioFile(t, t.TempDir(), "in.wav")
	out, err := svc.Transcribe(context.Background(), input, TranscribeOptions{
		Format:     FormatJSON,
		Timestamps: true,
	})
	if err != nil {
		t.Fatalf("Transcribe returned error: %v", err)
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if len(entries) != 1 || entries[0]["text"] != "hello" {
		t.Errorf("Unexpected JSON transcript: %q", out)
	}
}

func TestTranscribeMissingInput(t *testing.T) {
	svc := newTranscriptionService(t, &fakeSpeechToText{})
	_, err := svc.Transcribe(context.Background(), filepath.Join(t.TempDir(), "missing.wav"), TranscribeOptions{})
	if !IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestTranscribeUnknownFormat(t *testing.T) {
	svc := newTranscriptionService(t, &fakeSpeechToText{})
	input := writeAudioFile(t, t.TempDir(), "in.wav")
	_, err := svc.Transcribe(context.Background(), input, TranscribeOptions{Format: "yaml"})
	if !IsValidation(err) {
		t.Fatalf("Expected validation error for unknown format, got %v", err)
	}
}

func TestSaveTranscriptDerivesPath(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "meeting.m4a")

	path, err := SaveTranscript("some text", "", input)
	if err != nil {
		t.Fatalf("SaveTranscript returned error: %v", err)
	}
	if path != filepath.Join(dir, "meeting.txt") {
		t.Errorf("Expected derived .txt path, got %q", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "some text" {
		t.Errorf("Unexpected saved content %q", content)
	}
}
