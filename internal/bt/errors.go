package bt

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrNilChild            = errors.New("nil child")
	ErrAlreadyParented     = errors.New("child already has a parent")
	ErrCycle               = errors.New("child is the parent or one of its ancestors")
	ErrChildNotFound       = errors.New("child not found")
	ErrIndexOutOfRange     = errors.New("index out of range")
	ErrDecoratedAlreadySet = errors.New("decorated child already set")
	ErrMidTraversal        = errors.New("structure modified mid traversal")
	ErrNotComposite        = errors.New("parent does not support child replacement")
	ErrRootHasParent       = errors.New("root has a parent")
	ErrActionAsRoot        = errors.New("action selected as tree root")
	ErrCannotPruneRoot     = errors.New("cannot prune the root")
	ErrBehaviourNotFound   = errors.New("behaviour not found")

	// ErrInvalidPolicy is wrapped by [*PolicyError].
	ErrInvalidPolicy = errors.New("invalid parallel policy")
)

// StructuralError reports a rejected change to the shape of a tree. These
// are programming errors and are never retried.
type StructuralError struct {
	Op     string
	Parent string
	Child  string
	Err    error
}

func (e *StructuralError) Error() string {
	if e.Child == "" {
		return fmt.Sprintf("bt: %s on %q: %v", e.Op, e.Parent, e.Err)
	}
	return fmt.Sprintf("bt: %s %q on %q: %v", e.Op, e.Child, e.Parent, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// PolicyError reports a parallel whose policy does not fit its children. It
// is returned from both setup and tick.
type PolicyError struct {
	Parallel string
	Reason   string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("bt: parallel %q: %v: %s", e.Parallel, ErrInvalidPolicy, e.Reason)
}

func (e *PolicyError) Unwrap() error { return ErrInvalidPolicy }

func isNil(b Behaviour) bool {
	if b == nil {
		return true
	}
	v := reflect.ValueOf(b)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func nameOf(b Behaviour) string {
	if isNil(b) {
		return ""
	}
	return b.Name()
}
