package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voiceforge/voiceforge/adapters/azure"
	"github.com/voiceforge/voiceforge/adapters/ffmpeg"
	"github.com/voiceforge/voiceforge/domain/entities"
	"github.com/voiceforge/voiceforge/internal/pipeline"
	"github.com/voiceforge/voiceforge/internal/poll"
	"github.com/voiceforge/voiceforge/usecase"
)

func newEnrollCommand(application *app) *cobra.Command {
	var (
		req     entities.EnrollmentRequest
		cleanup bool
	)

	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Create a personal voice: project, consent validation, and voice training",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := application.cfg.Speech.Validate(); err != nil {
				return err
			}
			if req.Locale == "" {
				req.Locale = application.cfg.Speech.DefaultLocale
			}

			converter, err := ffmpeg.NewConverter(application.logger)
			if err != nil {
				return err
			}
			client, err := azure.NewCustomVoiceClient(application.cfg.Speech, application.logger)
			if err != nil {
				return err
			}

			poller := poll.New(poll.Config{
				MaxAttempts: application.cfg.Poll.MaxAttempts,
				Interval:    application.cfg.Poll.Interval,
			}, application.logger)
			runner := pipeline.NewRunner(application.logger, cleanup)

			service := usecase.NewEnrollmentService(client, converter, poller, runner, application.logger)
			result, err := service.Enroll(cmd.Context(), req)
			if err != nil {
				return describeEnrollmentError(err)
			}

			printEnrollmentSummary(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ConsentPath, "consent", "", "path to the consent audio file (required)")
	cmd.Flags().StringSliceVar(&req.SamplePaths, "samples", nil, "paths to sample audio files, at least 2 (required)")
	cmd.Flags().StringVar(&req.VoiceTalentName, "name", "", "voice talent name (required)")
	cmd.Flags().StringVar(&req.CompanyName, "company", "My Company", "company name")
	cmd.Flags().StringVar(&req.Locale, "locale", "", "consent locale, e.g. en-US")
	cmd.Flags().StringVar(&req.ProjectID, "project-id", "", "project id (generated when omitted)")
	cmd.Flags().StringVar(&req.ConsentID, "consent-id", "", "consent id (generated when omitted)")
	cmd.Flags().StringVar(&req.VoiceID, "voice-id", "", "voice id (generated when omitted)")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "delete the project when a later step fails")
	cmd.MarkFlagRequired("consent")
	cmd.MarkFlagRequired("samples")
	cmd.MarkFlagRequired("name")

	return cmd
}

// describeEnrollmentError prefixes the error with its kind so the console
// output tells a service rejection apart from a timeout or a transport
// problem.
func describeEnrollmentError(err error) error {
	switch {
	case usecase.IsValidation(err):
		return err
	case poll.IsOperationFailed(err):
		return fmt.Errorf("service rejected the request: %w", err)
	case poll.IsTimeout(err):
		return fmt.Errorf("gave up waiting for the service: %w", err)
	case poll.IsTransport(err):
		return fmt.Errorf("could not reach the service: %w", err)
	default:
		return err
	}
}

func printEnrollmentSummary(cmd *cobra.Command, result *entities.EnrollmentResult) {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Personal voice created")
	fmt.Fprintf(out, "  Project ID:         %s\n", result.Project.ID)
	fmt.Fprintf(out, "  Consent ID:         %s\n", result.Consent.ID)
	fmt.Fprintf(out, "  Voice ID:           %s\n", result.Voice.ID)
	fmt.Fprintf(out, "  Status:             %s\n", result.Voice.Status)
	fmt.Fprintf(out, "  Speaker Profile ID: %s\n", result.SpeakerProfileID)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Use the speaker profile id for synthesis:")
	fmt.Fprintf(out, "  voiceforge speak --personal-voice %s --input text.txt --output out.wav\n", result.SpeakerProfileID)
}
