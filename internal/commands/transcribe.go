package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voiceforge/voiceforge/adapters/azure"
	"github.com/voiceforge/voiceforge/adapters/ffmpeg"
	"github.com/voiceforge/voiceforge/usecase"
)

func newTranscribeCommand(application *app) *cobra.Command {
	var (
		output string
		opts   usecase.TranscribeOptions
	)

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe an audio file to text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := application.cfg.Speech.Validate(); err != nil {
				return err
			}
			if opts.Language == "" {
				opts.Language = application.cfg.Speech.DefaultLocale
			}

			converter, err := ffmpeg.NewConverter(application.logger)
			if err != nil {
				return err
			}
			client, err := azure.NewSpeechToTextClient(application.cfg.Speech, application.logger)
			if err != nil {
				return err
			}

			service := usecase.NewTranscriptionService(client, converter, application.logger)
			transcript, err := service.Transcribe(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			path, err := usecase.SaveTranscript(transcript, output, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Transcript saved to %s\n", path)
			printPreview(cmd, transcript)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: input with .txt extension)")
	cmd.Flags().StringVarP(&opts.Language, "language", "l", "", "language code, e.g. en-US")
	cmd.Flags().StringVar(&opts.Profanity, "profanity", "masked", "profanity handling: masked, removed, or raw")
	cmd.Flags().StringVar(&opts.Format, "format", usecase.FormatSimple, "output format: simple, detailed, or json")
	cmd.Flags().BoolVar(&opts.Timestamps, "timestamps", false, "include timestamps in the output")

	return cmd
}

// printPreview shows the first few lines of the transcript on stdout.
func printPreview(cmd *cobra.Command, transcript string) {
	lines := strings.Split(transcript, "\n")
	limit := 5
	if len(lines) < limit {
		limit = len(lines)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nPreview:")
	for _, line := range lines[:limit] {
		fmt.Fprintln(out, line)
	}
	if len(lines) > limit {
		fmt.Fprintln(out, "...")
	}
}
