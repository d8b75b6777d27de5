package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voiceforge/voiceforge/adapters/openai"
	"github.com/voiceforge/voiceforge/domain/repositories"
	"github.com/voiceforge/voiceforge/usecase"
)

func newImproveCommand(application *app) *cobra.Command {
	var (
		output             string
		model              string
		formality          string
		noPreserveSpeakers bool
	)

	cmd := &cobra.Command{
		Use:   "improve <transcript-file>",
		Short: "Clean up a transcript with an LLM: grammar, clarity, filler words",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor, err := openai.NewEditor(application.cfg.OpenAI, application.logger)
			if err != nil {
				return err
			}

			service := usecase.NewImprovementService(editor, application.logger)
			improved, path, err := service.Improve(cmd.Context(), args[0], output, repositories.EditOptions{
				Model:            model,
				Formality:        formality,
				PreserveSpeakers: !noPreserveSpeakers,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Improved transcript saved to %s\n", path)
			printPreview(cmd, improved)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <input>_improved)")
	cmd.Flags().StringVar(&model, "model", "", "model or deployment name")
	cmd.Flags().StringVar(&formality, "formality", "neutral", "formality level: casual, neutral, or formal")
	cmd.Flags().BoolVar(&noPreserveSpeakers, "no-preserve-speakers", false, "drop speaker annotations")

	return cmd
}
