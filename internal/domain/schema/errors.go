package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kind for validation failures; errors.Is matches any
// ValidationError against this.
var ErrValidation = errors.New("feature validation failed")

// ErrorKind classifies a single field-level validation failure.
type ErrorKind string

const (
	// MissingField means a declared field was absent from the input.
	MissingField ErrorKind = "missing_field"
	// TypeMismatch means an integral field received a non-integral value.
	TypeMismatch ErrorKind = "type_mismatch"
	// OutOfRange means a value fell outside the field's declared bounds.
	OutOfRange ErrorKind = "out_of_range"
	// UnknownField means the input carried a field not in the schema
	// (reported only in strict mode).
	UnknownField ErrorKind = "unknown_field"
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Kind  ErrorKind `json:"kind"`
	Field string    `json:"field"`
	// Bound describes the violated constraint, e.g. ">= 0" or "[0, 1]".
	// Set only for OutOfRange.
	Bound string `json:"bound,omitempty"`
}

func (e FieldError) Error() string {
	switch e.Kind {
	case MissingField:
		return fmt.Sprintf("missing required feature: %s", e.Field)
	case TypeMismatch:
		return fmt.Sprintf("feature %s must be integral", e.Field)
	case OutOfRange:
		return fmt.Sprintf("feature %s out of range %s", e.Field, e.Bound)
	case UnknownField:
		return fmt.Sprintf("unknown feature: %s", e.Field)
	default:
		return fmt.Sprintf("invalid feature: %s", e.Field)
	}
}

// ValidationError aggregates every field failure found in one validation
// pass, so callers receive a complete correction list instead of the first
// failure.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("feature validation failed: %s", strings.Join(msgs, "; "))
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
