package thicket

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPrepared means an object was used before Prepare.
	ErrNotPrepared = errors.New("instance has not been prepared")
	// ErrNotComparable means an object handle cannot be used as a map key.
	ErrNotComparable = errors.New("object handle is not comparable")
	// ErrCycle means an attach would make an object its own ancestor.
	ErrCycle = errors.New("attach would create a cycle")
	// ErrUnknownKind means the catalogue has no factory for a node kind.
	ErrUnknownKind = errors.New("unknown node kind")
	// ErrInvalidPath means an attach or property path could not be resolved.
	ErrInvalidPath = errors.New("invalid property path")
	// ErrDestroyed means a canvas was used after Destroy.
	ErrDestroyed = errors.New("canvas destroyed")
)

// ContractError is the panic value for caller bugs: attaching unprepared
// instances or building cycles. These are never returned as errors.
type ContractError struct {
	Op  string
	Err error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("thicket: %s: %v", e.Op, e.Err)
}

func (e *ContractError) Unwrap() error { return e.Err }

// IsContractError reports whether v (typically a recovered panic value) is
// a *ContractError, optionally wrapping target.
func IsContractError(v any, target error) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	var ce *ContractError
	if !errors.As(err, &ce) {
		return false
	}
	return target == nil || errors.Is(ce.Err, target)
}

func contractViolation(op string, err error) {
	panic(&ContractError{Op: op, Err: err})
}
