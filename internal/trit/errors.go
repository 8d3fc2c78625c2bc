package trit

import (
	"errors"
	"fmt"
)

// Engine error kinds. Every failing operation returns an error that
// unwraps to exactly one of these.
var (
	// ErrInvalidDigit is returned for malformed ternary (or decimal) input.
	ErrInvalidDigit = errors.New("invalid digit")

	// ErrDivisionByZero is returned when the divisor decodes to zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrDomain is returned for mathematically undefined input.
	ErrDomain = errors.New("operation undefined")

	// ErrNegativeInput is returned by factorial for a negative operand.
	ErrNegativeInput = errors.New("negative input")

	// ErrOverflowGuard is returned when an operand exceeds a policy ceiling.
	ErrOverflowGuard = errors.New("overflow guard exceeded")
)

// Error carries the failing operation and operand alongside the kind.
type Error struct {
	Kind  error  // one of the Err* sentinels
	Op    string // operation name, e.g. "fact"
	Input string // offending operand, if any
}

func (e *Error) Error() string {
	if e.Input == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %q", e.Op, e.Kind, e.Input)
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, op, input string) *Error {
	return &Error{Kind: kind, Op: op, Input: input}
}

// Code maps an error to the numeric code used in audit records:
// 2 invalid input, 3 division by zero, 4 overflow, 5 undefined, 6 negative.
// Errors outside the taxonomy map to 0.
func Code(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrInvalidDigit):
		return 2
	case errors.Is(err, ErrDivisionByZero):
		return 3
	case errors.Is(err, ErrOverflowGuard):
		return 4
	case errors.Is(err, ErrDomain):
		return 5
	case errors.Is(err, ErrNegativeInput):
		return 6
	default:
		return 0
	}
}
