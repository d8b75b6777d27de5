// Package pipeline runs a sequence of named steps, aborting on the first
// failure. Completed steps may register cleanup hooks; they run in reverse
// order, and only when the caller opted into cleanup. By default partial
// remote artifacts are left in place for manual inspection.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// State represents the overall outcome of a pipeline run
type State string

const (
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Step is a single named unit of work
type Step struct {
	// Name identifies the step in logs and errors
	Name string
	// Run does the work; a non-nil error aborts the remaining steps
	Run func(ctx context.Context) error
	// Cleanup undoes the step's remote side effects, best effort. Nil for
	// steps with nothing to undo.
	Cleanup func(ctx context.Context) error
}

// StepError wraps a failure with the step it happened in.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Runner executes pipelines.
type Runner struct {
	logger           *zap.Logger
	cleanupOnFailure bool
}

// NewRunner creates a Runner. cleanupOnFailure enables the reverse-order
// cleanup hooks when a later step fails.
func NewRunner(logger *zap.Logger, cleanupOnFailure bool) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		logger:           logger,
		cleanupOnFailure: cleanupOnFailure,
	}
}

// Execute runs the steps in order. The first failing step aborts the rest
// and its error is returned wrapped in a *StepError.
func (r *Runner) Execute(ctx context.Context, name string, steps []Step) error {
	r.logger.Info("pipeline started",
		zap.String("pipeline", name),
		zap.Int("steps", len(steps)))

	var completed []Step

	for i, step := range steps {
		r.logger.Info("step started",
			zap.String("pipeline", name),
			zap.String("step", step.Name),
			zap.Int("position", i+1),
			zap.Int("total", len(steps)))

		if err := step.Run(ctx); err != nil {
			r.logger.Error("step failed",
				zap.String("pipeline", name),
				zap.String("step", step.Name),
				zap.Error(err))

			if r.cleanupOnFailure {
				r.cleanup(ctx, name, completed)
			}

			r.logger.Info("pipeline finished",
				zap.String("pipeline", name),
				zap.String("state", string(StateFailed)))
			return &StepError{Step: step.Name, Err: err}
		}

		completed = append(completed, step)
		r.logger.Info("step completed",
			zap.String("pipeline", name),
			zap.String("step", step.Name))
	}

	r.logger.Info("pipeline finished",
		zap.String("pipeline", name),
		zap.String("state", string(StateCompleted)))
	return nil
}

// cleanup runs the hooks of completed steps in reverse order. Failures are
// logged, not propagated: the original step error is what the caller needs.
func (r *Runner) cleanup(ctx context.Context, name string, completed []Step) {
	for i := len(completed) - 1; i >= 0; i-- {
		step := completed[i]
		if step.Cleanup == nil {
			continue
		}
		r.logger.Info("cleaning up step",
			zap.String("pipeline", name),
			zap.String("step", step.Name))
		if err := step.Cleanup(ctx); err != nil {
			r.logger.Warn("cleanup failed",
				zap.String("pipeline", name),
				zap.String("step", step.Name),
				zap.Error(err))
		}
	}
}
