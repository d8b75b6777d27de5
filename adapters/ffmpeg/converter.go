// Package ffmpeg shells out to ffmpeg/ffprobe to normalize audio files to
// the 16-bit PCM, 16 kHz, mono WAV the speech service expects.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/domain/repositories"
)

// Converter implements AudioConverter via the ffmpeg and ffprobe binaries.
type Converter struct {
	ffmpegPath  string
	ffprobePath string
	logger      *zap.Logger
}

// Ensure Converter implements the AudioConverter interface
var _ repositories.AudioConverter = (*Converter)(nil)

// NewConverter locates the ffmpeg binary. ffprobe is optional; Probe fails
// when it is missing, conversion does not.
func NewConverter(logger *zap.Logger) (*Converter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg is not installed: %w", err)
	}

	ffprobePath, _ := exec.LookPath("ffprobe")

	return &Converter{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger,
	}, nil
}

// ConvertToWAV converts inputPath to 16-bit PCM, 16 kHz, mono WAV. Files
// already in WAV format pass through untouched; everything else lands in a
// temporary file the caller removes after use.
func (c *Converter) ConvertToWAV(ctx context.Context, inputPath string) (repositories.ConvertedAudio, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return repositories.ConvertedAudio{}, fmt.Errorf("input file not found: %w", err)
	}

	if strings.EqualFold(filepath.Ext(inputPath), ".wav") {
		return repositories.ConvertedAudio{Path: inputPath, Temporary: false}, nil
	}

	out, err := os.CreateTemp("", "voiceforge-*.wav")
	if err != nil {
		return repositories.ConvertedAudio{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	outPath := out.Name()
	out.Close()

	c.logger.Info("converting audio to wav",
		zap.String("input", filepath.Base(inputPath)))

	cmd := exec.CommandContext(ctx, c.ffmpegPath, convertArgs(inputPath, outPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outPath)
		return repositories.ConvertedAudio{}, fmt.Errorf("ffmpeg conversion failed: %w: %s",
			err, lastLine(stderr.String()))
	}

	return repositories.ConvertedAudio{Path: outPath, Temporary: true}, nil
}

// Probe returns the first audio stream's parameters via ffprobe.
func (c *Converter) Probe(ctx context.Context, path string) (repositories.StreamInfo, error) {
	if c.ffprobePath == "" {
		return repositories.StreamInfo{}, fmt.Errorf("ffprobe is not installed")
	}

	cmd := exec.CommandContext(ctx, c.ffprobePath, probeArgs(path)...)
	output, err := cmd.Output()
	if err != nil {
		return repositories.StreamInfo{}, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe struct {
		Streams []struct {
			Duration      string `json:"duration"`
			Channels      int    `json:"channels"`
			SampleRate    string `json:"sample_rate"`
			BitsPerSample int    `json:"bits_per_sample"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(output, &probe); err != nil {
		return repositories.StreamInfo{}, fmt.Errorf("failed to decode ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return repositories.StreamInfo{}, fmt.Errorf("no audio stream in %s", path)
	}

	stream := probe.Streams[0]
	duration, _ := strconv.ParseFloat(stream.Duration, 64)
	sampleRate, _ := strconv.Atoi(stream.SampleRate)

	return repositories.StreamInfo{
		DurationSeconds: duration,
		Channels:        stream.Channels,
		SampleRate:      sampleRate,
		BitsPerSample:   stream.BitsPerSample,
	}, nil
}

func convertArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		outputPath,
	}
}

func probeArgs(path string) []string {
	return []string{
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=duration,channels,sample_rate,bits_per_sample",
		"-of", "json",
		path,
	}
}

// lastLine returns the final non-empty line of ffmpeg's stderr, which is
// where it puts the actual failure reason.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
