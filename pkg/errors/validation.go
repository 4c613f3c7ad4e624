package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateSpacing rejects negative, NaN, or infinite spacing values.
// The name is the option id and only appears in the message.
func ValidateSpacing(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Configuration("%s must be a finite number, got %v", name, v)
	}
	if v < 0 {
		return Configuration("%s must be >= 0, got %v", name, v)
	}
	return nil
}

// ValidateRange checks lo <= v <= hi for numeric options.
func ValidateRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return Configuration("%s must be in [%v, %v], got %v", name, lo, hi, v)
	}
	return nil
}

// ValidateMin checks v >= lo for integer options such as thoroughness.
func ValidateMin(name string, v, lo int) error {
	if v < lo {
		return Configuration("%s must be >= %d, got %d", name, lo, v)
	}
	return nil
}

// ValidateEnum checks that v is one of allowed. Matching is exact; option
// values are upper-case identifiers.
func ValidateEnum(name, v string, allowed ...string) error {
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return Configuration("%s must be one of %s, got %q", name, strings.Join(allowed, ", "), v)
}

// ValidateElementID validates an element id from an input graph.
//
// The rules are conservative:
//   - No empty ids
//   - No control characters
//   - Maximum length of 256 characters
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidGraph, "element id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidGraph, "element id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "element id %q contains control characters", id)
		}
	}
	return nil
}
