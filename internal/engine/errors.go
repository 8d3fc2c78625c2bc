package engine

import "errors"

// Registry and dispatch errors. Numeric failures come from package trit.
var (
	// ErrUnknownOperation is returned when no operation has the given name.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrArity is returned when an operation gets the wrong operand count.
	ErrArity = errors.New("wrong number of operands")

	// ErrOperationNameEmpty is returned when registering an unnamed operation.
	ErrOperationNameEmpty = errors.New("operation name cannot be empty")

	// ErrOperationFuncNil is returned when an operation has no implementation.
	ErrOperationFuncNil = errors.New("operation function cannot be nil")

	// ErrOperationAlreadyRegistered is returned when registering a duplicate.
	ErrOperationAlreadyRegistered = errors.New("operation already registered")
)
