package schema

import (
	"fmt"
	"math"
	"sort"
)

// Validator checks raw feature maps against the field table. Validation is
// pure and total: no I/O, no side effects, identical input always yields an
// identical outcome.
type Validator struct {
	strict bool
}

// Option applies a configuration option to the Validator.
type Option func(*Validator)

// WithStrictMode controls whether unknown fields are rejected. Strict mode
// is on by default.
func WithStrictMode(strict bool) Option {
	return func(v *Validator) {
		v.strict = strict
	}
}

// NewValidator creates a validator with configuration options.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{strict: true}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks raw against the 50-field schema and returns the ordered
// FeatureVector, or a ValidationError aggregating every field failure found
// in a single pass.
func (v *Validator) Validate(raw map[string]float64) (FeatureVector, error) {
	var vec FeatureVector
	var fieldErrs []FieldError

	for i, spec := range fields {
		val, ok := raw[spec.Name]
		if !ok {
			fieldErrs = append(fieldErrs, FieldError{Kind: MissingField, Field: spec.Name})
			continue
		}
		if fe, ok := checkValue(spec, val); !ok {
			fieldErrs = append(fieldErrs, fe)
			continue
		}
		vec.values[i] = val
	}

	if v.strict {
		var unknown []string
		for name := range raw {
			if _, ok := index[name]; !ok {
				unknown = append(unknown, name)
			}
		}
		// Deterministic error order regardless of map iteration.
		sort.Strings(unknown)
		for _, name := range unknown {
			fieldErrs = append(fieldErrs, FieldError{Kind: UnknownField, Field: name})
		}
	}

	if len(fieldErrs) > 0 {
		return FeatureVector{}, &ValidationError{Fields: fieldErrs}
	}
	return vec, nil
}

// checkValue validates one value against its spec. NaN and infinities are
// out of range for every field.
func checkValue(spec FieldSpec, val float64) (FieldError, bool) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return FieldError{Kind: OutOfRange, Field: spec.Name, Bound: boundString(spec)}, false
	}

	switch spec.Kind {
	case KindInt, KindBinary, KindCategorical:
		if val != math.Trunc(val) {
			return FieldError{Kind: TypeMismatch, Field: spec.Name}, false
		}
	}

	if spec.HasMin && val < spec.Min {
		return FieldError{Kind: OutOfRange, Field: spec.Name, Bound: boundString(spec)}, false
	}
	if spec.HasMax && val > spec.Max {
		return FieldError{Kind: OutOfRange, Field: spec.Name, Bound: boundString(spec)}, false
	}
	return FieldError{}, true
}

func boundString(spec FieldSpec) string {
	switch {
	case spec.HasMin && spec.HasMax:
		return fmt.Sprintf("[%g, %g]", spec.Min, spec.Max)
	case spec.HasMin:
		return fmt.Sprintf(">= %g", spec.Min)
	case spec.HasMax:
		return fmt.Sprintf("<= %g", spec.Max)
	default:
		return "finite"
	}
}
