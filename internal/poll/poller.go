// Package poll drives long-running speech service operations (consent
// validation, voice training) to a terminal state by querying their status
// until they succeed, fail, or the attempt budget runs out.
package poll

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voiceforge/voiceforge/domain/entities"
)

const (
	defaultMaxAttempts = 10
	defaultInterval    = 2 * time.Second
)

// StatusFunc fetches the current state of one remote operation.
type StatusFunc func(ctx context.Context) (entities.Operation, error)

// Config tunes the poll loop.
type Config struct {
	// MaxAttempts is the total number of status queries before giving up.
	MaxAttempts int
	// Interval is the wait between two consecutive queries.
	Interval time.Duration
}

// Poller repeatedly queries an operation's status until it is terminal.
type Poller struct {
	maxAttempts int
	interval    time.Duration
	logger      *zap.Logger
}

// New creates a Poller, applying defaults for unset config fields.
func New(config Config, logger *zap.Logger) *Poller {
	maxAttempts := config.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	interval := config.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Poller{
		maxAttempts: maxAttempts,
		interval:    interval,
		logger:      logger,
	}
}

// Wait polls the operation behind fetch until it reaches a terminal state.
//
// On Succeeded it returns the final operation immediately, with no further
// queries. On Failed (or Canceled) it stops at that attempt and returns an
// *OperationFailedError carrying the service diagnostic. A transport failure
// on a single query consumes that attempt and is retried on the next
// scheduled one. When the budget is exhausted the last transport error is
// returned if the final attempt never reached the service, otherwise a
// *TimeoutError. Cancelling ctx aborts the wait between attempts.
func (p *Poller) Wait(ctx context.Context, fetch StatusFunc) (entities.Operation, error) {
	var (
		lastOp       entities.Operation
		lastErr      error
		lastWasError bool
	)

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		op, err := fetch(ctx)
		if err != nil {
			lastErr = &TransportError{Attempt: attempt, Err: err}
			lastWasError = true
			p.logger.Warn("status query failed",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", p.maxAttempts),
				zap.Error(err))
		} else {
			lastOp = op
			lastWasError = false
			p.logger.Info("operation status",
				zap.String("operationID", op.ID),
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", p.maxAttempts),
				zap.String("status", string(op.Status)))

			switch op.Status {
			case entities.OperationSucceeded:
				return op, nil
			case entities.OperationFailed, entities.OperationCanceled:
				return op, &OperationFailedError{
					OperationID: op.ID,
					Status:      op.Status,
					Diagnostic:  op.Diagnostic,
				}
			}
		}

		if attempt == p.maxAttempts {
			break
		}

		if err := p.sleep(ctx); err != nil {
			return lastOp, err
		}
	}

	if lastWasError {
		return lastOp, lastErr
	}
	return lastOp, &TimeoutError{
		OperationID: lastOp.ID,
		Attempts:    p.maxAttempts,
		LastStatus:  lastOp.Status,
	}
}

// sleep waits for the configured interval, aborting early when ctx is done.
func (p *Poller) sleep(ctx context.Context) error {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
