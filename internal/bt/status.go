package bt

import (
	"fmt"
	"strings"

	gobt "github.com/joeycumines/go-behaviortree"
)

// Status is the result of ticking a behaviour.
type Status int

const (
	// Invalid is the initial status, and the status a behaviour is forced to
	// when interrupted.
	Invalid Status = iota
	// Running indicates the behaviour has not yet finished.
	Running
	// Success indicates the behaviour finished successfully.
	Success
	// Failure indicates the behaviour finished unsuccessfully.
	Failure
)

func (s Status) String() string {
	switch s {
	case Invalid:
		return "INVALID"
	case Running:
		return "RUNNING"
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus parses the name of a status, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "INVALID":
		return Invalid, nil
	case "RUNNING":
		return Running, nil
	case "SUCCESS":
		return Success, nil
	case "FAILURE":
		return Failure, nil
	}
	return Invalid, fmt.Errorf("bt: unknown status %q", s)
}

func (s Status) valid() bool {
	return s >= Invalid && s <= Failure
}

// GoStatus converts s to the go-behaviortree equivalent. Invalid has no
// counterpart there and maps to failure.
func (s Status) GoStatus() gobt.Status {
	switch s {
	case Running:
		return gobt.Running
	case Success:
		return gobt.Success
	default:
		return gobt.Failure
	}
}

// FromGoStatus converts a go-behaviortree status.
func FromGoStatus(s gobt.Status) (Status, error) {
	switch s {
	case gobt.Running:
		return Running, nil
	case gobt.Success:
		return Success, nil
	case gobt.Failure:
		return Failure, nil
	}
	return Invalid, fmt.Errorf("bt: unknown go-behaviortree status %d", int(s))
}
