package compiler

import (
	"errors"
	"fmt"
)

// Hard errors. Each aborts the declaration being compiled.
var (
	ErrProjectionKeys     = errors.New("unsupported Omit/Pick key set")
	ErrGenericDeclaration = errors.New("generic declaration cannot be compiled standalone")
	ErrExtendsWithIndex   = errors.New("extends combined with an index signature")
	ErrReservedArity      = errors.New("reserved boolean-generic interface must declare exactly one type parameter")
	ErrIndexedAccessRoot  = errors.New("indexed access does not resolve to a named reference")
	ErrInstantiationDepth = errors.New("generic instantiation too deep")
)

// Error is a hard compile error for one declaration.
type Error struct {
	Declaration string
	Kind        error
	Detail      string
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Declaration != "" {
		return fmt.Sprintf("%s: %s", e.Declaration, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }
