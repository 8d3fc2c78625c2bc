package engine

import (
	"fmt"
	"strings"
	"sync/atomic"

	"tritcalc/internal/trit"
)

// Limits are the policy ceilings an Engine applies.
type Limits struct {
	// FactorialLimit is the largest operand fact accepts.
	FactorialLimit int64
}

// DefaultLimits returns the built-in ceilings.
func DefaultLimits() Limits {
	return Limits{FactorialLimit: trit.DefaultFactorialLimit}
}

// Engine dispatches named operations. Limits may be swapped while other
// goroutines call Apply.
type Engine struct {
	reg    *Registry
	limits atomic.Pointer[Limits]
}

// New returns an Engine with every built-in operation registered.
func New(limits Limits) *Engine {
	e := &Engine{reg: NewRegistry()}
	e.SetLimits(limits)
	for _, op := range builtins() {
		e.reg.MustRegister(op)
	}
	return e
}

// Registry exposes the operation table for help listings.
func (e *Engine) Registry() *Registry { return e.reg }

// Limits returns the active ceilings.
func (e *Engine) Limits() Limits { return *e.limits.Load() }

// SetLimits replaces the active ceilings. Zero fields fall back to defaults.
func (e *Engine) SetLimits(l Limits) {
	if l.FactorialLimit <= 0 {
		l.FactorialLimit = trit.DefaultFactorialLimit
	}
	e.limits.Store(&l)
}

// Has reports whether op names a registered operation.
func (e *Engine) Has(op string) bool {
	return e.reg.Has(strings.ToLower(op))
}

// Apply runs op on operands. Failures from the numeric layer are returned
// unwrapped so callers can match them with errors.Is.
func (e *Engine) Apply(op string, operands []string) (Output, error) {
	name := strings.ToLower(op)
	o := e.reg.Get(name)
	if o == nil {
		return Output{}, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}
	if len(operands) != o.Arity {
		return Output{}, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, name, o.Arity, len(operands))
	}
	values, err := o.Func(e.Limits(), operands)
	if err != nil {
		return Output{}, err
	}
	return Output{Op: name, Values: values}, nil
}
