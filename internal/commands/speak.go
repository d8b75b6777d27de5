package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voiceforge/voiceforge/adapters/azure"
	"github.com/voiceforge/voiceforge/usecase"
)

func newSpeakCommand(application *app) *cobra.Command {
	var (
		input         string
		output        string
		voice         string
		personalVoice string
		rate          string
		reducePauses  bool
	)

	cmd := &cobra.Command{
		Use:   "speak [text]",
		Short: "Synthesize speech from text, optionally with an enrolled personal voice",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := application.cfg.Speech.Validate(); err != nil {
				return err
			}

			text, err := speakInput(args, input)
			if err != nil {
				return err
			}

			client, err := azure.NewTextToSpeechClient(application.cfg.Speech, application.logger)
			if err != nil {
				return err
			}

			if personalVoice == "" {
				personalVoice = application.cfg.Speech.DefaultSpeakerProfileID
			}
			if voice == "" {
				voice = application.cfg.Speech.DefaultVoice
			}

			service := usecase.NewSynthesisService(client, application.logger)
			written, err := service.Speak(cmd.Context(), text, output, usecase.SpeakOptions{
				Voice:            voice,
				SpeakerProfileID: personalVoice,
				Locale:           application.cfg.Speech.DefaultLocale,
				Rate:             rate,
				ReducePauses:     reducePauses,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Audio saved to %s (%d bytes)\n", output, written)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "read the text from a file instead of the argument")
	cmd.Flags().StringVarP(&output, "output", "o", "output.wav", "output WAV path")
	cmd.Flags().StringVar(&voice, "voice", "", "standard neural voice name")
	cmd.Flags().StringVar(&personalVoice, "personal-voice", "", "speaker profile id of an enrolled personal voice")
	cmd.Flags().StringVar(&rate, "rate", "", "speaking rate for a personal voice, e.g. 1.2")
	cmd.Flags().BoolVar(&reducePauses, "reduce-pauses", false, "shorten pauses between sentences")

	return cmd
}

// speakInput resolves the text to synthesize from the positional argument
// or the --input file. Exactly one source must be provided.
func speakInput(args []string, input string) (string, error) {
	switch {
	case input != "" && len(args) > 0:
		return "", fmt.Errorf("pass the text as an argument or via --input, not both")
	case input != "":
		data, err := os.ReadFile(input)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", fmt.Errorf("input file %s is empty", input)
		}
		return text, nil
	case len(args) > 0 && strings.TrimSpace(args[0]) != "":
		return strings.TrimSpace(args[0]), nil
	default:
		return "", fmt.Errorf("nothing to synthesize: pass the text as an argument or via --input")
	}
}
