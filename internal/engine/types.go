// Package engine is the dispatch boundary over package trit. Operations are
// registered once in a Registry and invoked by name through Engine.Apply,
// which checks arity and threads the configured Limits into each call.
package engine

import "strings"

// Category groups operations for help listings.
type Category string

const (
	CategoryArithmetic Category = "arithmetic"
	CategoryScientific Category = "scientific"
	CategoryLogic      Category = "logic"
	CategoryConversion Category = "conversion"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryArithmetic, CategoryScientific, CategoryLogic, CategoryConversion}

// Func computes an operation's result values from validated operands.
type Func func(limits Limits, operands []string) ([]string, error)

// Operation describes one registered engine operation.
type Operation struct {
	// Name is the lowercase command word, e.g. "add".
	Name string

	// Usage is a one-line synopsis such as "add <a> <b>".
	Usage string

	Description string
	Category    Category

	// Arity is the exact operand count Apply enforces.
	Arity int

	Func Func
}

// Validate checks that the operation can be registered.
func (o *Operation) Validate() error {
	if o.Name == "" {
		return ErrOperationNameEmpty
	}
	if o.Func == nil {
		return ErrOperationFuncNil
	}
	return nil
}

// Output is the result of a successful Apply.
type Output struct {
	Op     string
	Values []string
}

// String renders the result the way the shell prints it. Division shows
// both parts as "q=<q> r=<r>".
func (o Output) String() string {
	if o.Op == "div" && len(o.Values) == 2 {
		return "q=" + o.Values[0] + " r=" + o.Values[1]
	}
	return strings.Join(o.Values, " ")
}

// Value returns the first result value, or "" when there is none.
func (o Output) Value() string {
	if len(o.Values) == 0 {
		return ""
	}
	return o.Values[0]
}
