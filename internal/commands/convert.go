package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voiceforge/voiceforge/adapters/ffmpeg"
	"github.com/voiceforge/voiceforge/domain/repositories"
)

func newConvertCommand(application *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert <audio-file>",
		Short: "Convert an audio file to 16 kHz 16-bit mono WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			converter, err := ffmpeg.NewConverter(application.logger)
			if err != nil {
				return err
			}

			converted, err := converter.ConvertToWAV(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			path := converted.Path
			if output != "" && output != path {
				if err := placeConverted(converted, output); err != nil {
					return err
				}
				path = output
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Converted audio saved to %s\n", path)

			if info, err := converter.Probe(cmd.Context(), path); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "  duration: %.2fs, channels: %d, sample rate: %d Hz\n",
					info.DurationSeconds, info.Channels, info.SampleRate)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output WAV path (default: alongside the input)")

	return cmd
}

// placeConverted moves a temporary conversion result to the requested
// path, or copies the file when the input was already WAV and must be
// left where it is.
func placeConverted(converted repositories.ConvertedAudio, output string) error {
	if converted.Temporary {
		if err := os.Rename(converted.Path, output); err == nil {
			return nil
		}
		// Rename fails across filesystems; fall back to a copy.
	}
	data, err := os.ReadFile(converted.Path)
	if err != nil {
		return fmt.Errorf("move converted audio: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("move converted audio: %w", err)
	}
	if converted.Temporary {
		os.Remove(converted.Path)
	}
	return nil
}
