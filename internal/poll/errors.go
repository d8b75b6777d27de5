package poll

import (
	"errors"
	"fmt"

	"github.com/voiceforge/voiceforge/domain/entities"
)

// TransportError means a status query never reached the service (or the
// connection broke mid-flight). It is a different failure than the service
// reporting a Failed operation.
type TransportError struct {
	Attempt int
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("status query attempt %d could not reach service: %v", e.Attempt, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// OperationFailedError means the service reported a terminal Failed (or
// Canceled) state for the operation, with whatever diagnostic it attached.
type OperationFailedError struct {
	OperationID string
	Status      entities.OperationStatus
	Diagnostic  string
}

func (e *OperationFailedError) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("operation %s reported %s: %s", e.OperationID, e.Status, e.Diagnostic)
	}
	return fmt.Sprintf("operation %s reported %s", e.OperationID, e.Status)
}

// TimeoutError means the attempt budget ran out before a terminal state was
// observed. Distinct from OperationFailedError so callers can tell "the
// service said no" apart from "we gave up waiting".
type TimeoutError struct {
	OperationID string
	Attempts    int
	LastStatus  entities.OperationStatus
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s not terminal after %d attempts (last status %s)",
		e.OperationID, e.Attempts, e.LastStatus)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsOperationFailed reports whether err is (or wraps) an OperationFailedError.
func IsOperationFailed(err error) bool {
	var fe *OperationFailedError
	return errors.As(err, &fe)
}

// IsTimeout reports whether err is (or wraps) a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
