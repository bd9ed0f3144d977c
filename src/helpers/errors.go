package helpers

import "fmt"

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type TradeBrainError struct {
	Message string
	Cause   error
}

func (e *TradeBrainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *TradeBrainError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// ValidationError marks a request rejected before any side effect.
type ValidationError struct{ TradeBrainError }

// StorageError marks a failed (and rolled back) store transaction.
type StorageError struct{ TradeBrainError }

// PredictorError marks a training or inference failure.
type PredictorError struct{ TradeBrainError }

// InsufficientDataError marks history or live window below required length.
type InsufficientDataError struct {
	TradeBrainError
	Have int
	Need int
}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{TradeBrainError{Message: fmt.Sprintf(format, args...)}}
}

// -----------------------------------------------------------------------------

func NewStorageError(msg string, cause error) error {
	return &StorageError{TradeBrainError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------

func NewPredictorError(msg string, cause error) error {
	return &PredictorError{TradeBrainError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------

func NewInsufficientDataError(have, need int) error {
	return &InsufficientDataError{
		TradeBrainError: TradeBrainError{
			Message: fmt.Sprintf("insufficient data: need at least %d ticks, have %d", need, have),
		},
		Have: have,
		Need: need,
	}
}
