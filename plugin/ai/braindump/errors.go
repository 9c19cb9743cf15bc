package braindump

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is the only error ExtractEvents returns to its caller.
var ErrEmptyInput = errors.New("brain dump text is empty")

// Sentinels matched by FailureError.Is, one per FailureReason.
var (
	ErrOracleUnavailable = errors.New("oracle unavailable")
	ErrMalformedResponse = errors.New("malformed oracle response")
	ErrEmptyExtraction   = errors.New("oracle extracted no events")
)

// FailureReason names why the oracle path was abandoned for the fallback.
type FailureReason string

const (
	ReasonNone              FailureReason = ""
	ReasonOracleUnavailable FailureReason = "oracle-unavailable"
	ReasonMalformedResponse FailureReason = "malformed-response"
	ReasonEmptyExtraction   FailureReason = "empty-extraction"
)

// FailureError wraps a recoverable pipeline failure with its reason.
type FailureError struct {
	Reason FailureReason
	Cause  error
}

// Error returns a formatted error message.
func (e *FailureError) Error() string {
	if e.Cause == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *FailureError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel that corresponds to the failure reason.
func (e *FailureError) Is(target error) bool {
	switch e.Reason {
	case ReasonOracleUnavailable:
		return target == ErrOracleUnavailable
	case ReasonMalformedResponse:
		return target == ErrMalformedResponse
	case ReasonEmptyExtraction:
		return target == ErrEmptyExtraction
	}
	return false
}

func newFailure(reason FailureReason, cause error) *FailureError {
	return &FailureError{Reason: reason, Cause: cause}
}

// ReasonOf extracts the failure reason from err.
// Errors that are not a FailureError count as an unavailable oracle.
func ReasonOf(err error) FailureReason {
	if err == nil {
		return ReasonNone
	}
	var fe *FailureError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ReasonOracleUnavailable
}
