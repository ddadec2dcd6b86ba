package workout

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel kinds for workout errors.
var (
	ErrValidation        = errors.New("inputs have to be positive numbers")
	ErrUnknownKind       = errors.New("unknown workout type")
	ErrMalformedSnapshot = errors.New("malformed workout snapshot")
)

// ValidationError reports the first input that failed validation.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Kind  Kind
	Field string
	Value float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s input %s=%s: %v",
		e.Kind, e.Field, strconv.FormatFloat(e.Value, 'g', -1, 64), ErrValidation)
}

// Unwrap exposes ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }
