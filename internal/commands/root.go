// Package commands wires the CLI surface: flag parsing, configuration
// loading, adapter construction, and exit codes. All actual work happens in
// the usecase services.
package commands

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/internal/config"
)

// app carries the state shared by every subcommand.
type app struct {
	cfg    config.Config
	logger *zap.Logger
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	application := &app{}
	verbose := false

	root := &cobra.Command{
		Use:           "voiceforge",
		Short:         "Azure AI Speech tooling: transcription, synthesis, and personal voice enrollment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional; explicit environment wins over it.
			_ = godotenv.Load()

			logger, err := newLogger(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			application.logger = logger
			application.cfg = config.FromEnv()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if application.logger != nil {
				_ = application.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newEnrollCommand(application),
		newTranscribeCommand(application),
		newImproveCommand(application),
		newSpeakCommand(application),
		newConvertCommand(application),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// newLogger builds a console-friendly logger for interactive use.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
