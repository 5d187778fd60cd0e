package blackboard

import (
	"fmt"
	"strings"
)

// Access is the level of access a client registers for a key.
type Access int

const (
	// Read permits get and exists.
	Read Access = iota + 1
	// Write permits get, set and unset, shared with other writers.
	Write
	// ExclusiveWrite is a write right no other client may hold concurrently.
	ExclusiveWrite
)

func (a Access) String() string {
	switch a {
	case Read:
		return "READ"
	case Write:
		return "WRITE"
	case ExclusiveWrite:
		return "EXCLUSIVE_WRITE"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// ParseAccess converts the textual form used in tree files ("read", "write",
// "exclusive_write" or "exclusive"), case-insensitively.
func ParseAccess(s string) (Access, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read", "r":
		return Read, nil
	case "write", "w":
		return Write, nil
	case "exclusive_write", "exclusive-write", "exclusive", "x":
		return ExclusiveWrite, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidAccess, s)
}
