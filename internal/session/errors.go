package session

import (
	"errors"

	"tritcalc/internal/engine"
	"tritcalc/internal/trit"
)

// Interpreter errors. Numeric failures come from package trit.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
	ErrUnsetVariable  = errors.New("variable not set")

	ErrScriptNotFound = errors.New("script not found")
	ErrScriptLimit    = errors.New("script limit reached")
	ErrLoopLimit      = errors.New("loop iteration limit exceeded")
	ErrCallDepth      = errors.New("script call depth exceeded")
	ErrScriptOnly     = errors.New("only valid inside a script")

	ErrNoCipher = errors.New("state encryption not configured")
)

// Code maps an error to its audit code. Engine kinds keep their trit codes;
// bad input is 2, script failures are 9 and anything else is 1.
func Code(err error) int {
	if err == nil {
		return 0
	}
	if c := trit.Code(err); c != 0 {
		return c
	}
	switch {
	case errors.Is(err, ErrUnknownCommand), errors.Is(err, ErrUsage), errors.Is(err, ErrUnsetVariable),
		errors.Is(err, engine.ErrUnknownOperation), errors.Is(err, engine.ErrArity):
		return 2
	case errors.Is(err, ErrScriptNotFound), errors.Is(err, ErrScriptLimit), errors.Is(err, ErrLoopLimit),
		errors.Is(err, ErrCallDepth), errors.Is(err, ErrScriptOnly):
		return 9
	default:
		return 1
	}
}
