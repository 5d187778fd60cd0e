package blackboard

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied indicates the client holds no suitable right on the key.
	ErrAccessDenied = errors.New("access denied")
	// ErrKeyNotFound indicates the key is registered but has no stored value.
	ErrKeyNotFound = errors.New("key not found")
	// ErrNestedPathMissing indicates the base key exists but the nested path
	// does not resolve within its value.
	ErrNestedPathMissing = errors.New("nested path missing")
	// ErrExclusiveWriteConflict is returned by registration when the requested
	// write right clashes with another client's registration.
	ErrExclusiveWriteConflict = errors.New("exclusive write conflict")
	// ErrNotInNamespace is returned when an absolute key is not embedded in
	// the namespace it was resolved against.
	ErrNotInNamespace = errors.New("key not in namespace")
	// ErrNotRegistered is returned when a client operates on a key it never
	// registered.
	ErrNotRegistered = errors.New("key not registered")
	// ErrInvalidAccess is returned for an unknown [Access] value.
	ErrInvalidAccess = errors.New("invalid access")
	// ErrActivityStreamEnabled is returned when enabling a stream that is
	// already recording.
	ErrActivityStreamEnabled = errors.New("activity stream already enabled")
)

// KeyError describes a failed blackboard operation on a single key.
type KeyError struct {
	// Client is the display name of the client involved, if any.
	Client string
	// Key is the (absolute, possibly remapped) key or variable name.
	Key string
	// Err is one of the package sentinel errors.
	Err error
}

func (e *KeyError) Error() string {
	if e.Client == "" {
		return fmt.Sprintf("blackboard: %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("blackboard: client %q: %q: %v", e.Client, e.Key, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }
