package behaviours

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/joeycumines/treetick/internal/bt"
	"github.com/joeycumines/treetick/internal/expression"
)

// reader reads one blackboard variable through a behaviour's client.
type reader struct {
	client *blackboard.Client
	name   string
}

func newReader(leafName, name string, opts []Option) reader {
	v := reader{client: newClient(leafName, opts), name: name}
	mustRead(v.client, blackboard.KeyOf(name))
	return v
}

// get returns the variable's value and whether it exists. A missing key or
// nested path is not an error.
func (v reader) get() (any, bool, error) {
	value, err := v.client.Get(v.name)
	switch {
	case err == nil:
		return value, true, nil
	case errors.Is(err, blackboard.ErrKeyNotFound), errors.Is(err, blackboard.ErrNestedPathMissing):
		return nil, false, nil
	default:
		return nil, false, err
	}
}

func attach(l *bt.Leaf, c *blackboard.Client) *bt.Leaf {
	l.AttachBlackboardClient(c)
	return l
}

// SetBlackboardVariable writes a fixed value on every tick. It fails if
// overwrite is false and the variable already has a value.
type SetBlackboardVariable struct {
	client    *blackboard.Client
	variable  string
	value     any
	overwrite bool
}

// NewSetBlackboardVariable returns a leaf writing value to variable. It
// fails if write access cannot be registered.
func NewSetBlackboardVariable(name, variable string, value any, overwrite bool, opts ...Option) (*bt.Leaf, error) {
	s := &SetBlackboardVariable{client: newClient(name, opts), variable: variable, value: value, overwrite: overwrite}
	if err := s.client.RegisterKey(blackboard.KeyOf(variable), blackboard.Write); err != nil {
		return nil, err
	}
	return attach(bt.NewLeaf(name, s), s.client), nil
}

func (s *SetBlackboardVariable) Update(l *bt.Leaf) (bt.Status, error) {
	ok, err := s.client.Set(s.variable, s.value, s.overwrite)
	if err != nil {
		return bt.Invalid, err
	}
	if !ok {
		l.SetFeedbackMessage(fmt.Sprintf("%q already set, not overwriting", s.variable))
		return bt.Failure, nil
	}
	l.SetFeedbackMessage(fmt.Sprintf("set %q", s.variable))
	return bt.Success, nil
}

// UnsetBlackboardVariable removes a key and always succeeds.
type UnsetBlackboardVariable struct {
	client *blackboard.Client
	key    string
}

// NewUnsetBlackboardVariable returns a leaf removing key. It fails if write
// access cannot be registered.
func NewUnsetBlackboardVariable(name, key string, opts ...Option) (*bt.Leaf, error) {
	u := &UnsetBlackboardVariable{client: newClient(name, opts), key: key}
	if err := u.client.RegisterKey(key, blackboard.Write); err != nil {
		return nil, err
	}
	return attach(bt.NewLeaf(name, u), u.client), nil
}

func (u *UnsetBlackboardVariable) Update(l *bt.Leaf) (bt.Status, error) {
	removed, err := u.client.Unset(u.key)
	if err != nil {
		return bt.Invalid, err
	}
	if removed {
		l.SetFeedbackMessage(fmt.Sprintf("%q unset", u.key))
	} else {
		l.SetFeedbackMessage(fmt.Sprintf("%q was not set", u.key))
	}
	return bt.Success, nil
}

// CheckBlackboardVariableExists succeeds if the variable, which may be
// nested, has a value and fails otherwise. With wait set it is
// [bt.Running] instead of failing.
type CheckBlackboardVariableExists struct {
	reader
	wait bool
}

// NewCheckBlackboardVariableExists returns a non-blocking existence check.
func NewCheckBlackboardVariableExists(name, variable string, opts ...Option) *bt.Leaf {
	c := &CheckBlackboardVariableExists{reader: newReader(name, variable, opts)}
	return attach(bt.NewLeaf(name, c), c.client)
}

// NewWaitForBlackboardVariable returns a leaf running until the variable
// has a value.
func NewWaitForBlackboardVariable(name, variable string, opts ...Option) *bt.Leaf {
	c := &CheckBlackboardVariableExists{reader: newReader(name, variable, opts), wait: true}
	return attach(bt.NewLeaf(name, c), c.client)
}

func (c *CheckBlackboardVariableExists) Update(l *bt.Leaf) (bt.Status, error) {
	_, ok, err := c.get()
	switch {
	case err != nil:
		return bt.Invalid, err
	case ok:
		l.SetFeedbackMessage(fmt.Sprintf("%q found", c.name))
		return bt.Success, nil
	case c.wait:
		l.SetFeedbackMessage(fmt.Sprintf("waiting for %q", c.name))
		return bt.Running, nil
	default:
		l.SetFeedbackMessage(fmt.Sprintf("%q not found", c.name))
		return bt.Failure, nil
	}
}

// CheckBlackboardVariableValue compares a variable against an expected
// value. A missing variable fails the check, or with wait set keeps it
// [bt.Running], as does a failed comparison.
type CheckBlackboardVariableValue struct {
	reader
	check expression.Comparison
	wait  bool
}

// NewCheckBlackboardVariableValue returns a non-blocking comparison.
func NewCheckBlackboardVariableValue(name string, check expression.Comparison, opts ...Option) *bt.Leaf {
	c := &CheckBlackboardVariableValue{reader: newReader(name, check.Variable, opts), check: check}
	return attach(bt.NewLeaf(name, c), c.client)
}

// NewWaitForBlackboardVariableValue returns a comparison that runs until it
// holds.
func NewWaitForBlackboardVariableValue(name string, check expression.Comparison, opts ...Option) *bt.Leaf {
	c := &CheckBlackboardVariableValue{reader: newReader(name, check.Variable, opts), check: check, wait: true}
	return attach(bt.NewLeaf(name, c), c.client)
}

func (c *CheckBlackboardVariableValue) Update(l *bt.Leaf) (bt.Status, error) {
	unmet := bt.Failure
	if c.wait {
		unmet = bt.Running
	}
	value, ok, err := c.get()
	if err != nil {
		return bt.Invalid, err
	}
	if !ok {
		l.SetFeedbackMessage(fmt.Sprintf("%q does not yet exist on the blackboard", c.check.Variable))
		return unmet, nil
	}
	met, err := c.check.Check(value)
	if err != nil {
		return bt.Invalid, err
	}
	if met {
		l.SetFeedbackMessage(fmt.Sprintf("%q comparison succeeded [v: %v][e: %v]", c.check.Variable, value, c.check.Value))
		return bt.Success, nil
	}
	l.SetFeedbackMessage(fmt.Sprintf("%q comparison failed [v: %v][e: %v]", c.check.Variable, value, c.check.Value))
	return unmet, nil
}

// Logic combines the results of several comparisons.
type Logic int

const (
	And Logic = iota
	Or
	Xor
)

func (l Logic) String() string {
	switch l {
	case And:
		return "and"
	case Or:
		return "or"
	case Xor:
		return "xor"
	}
	return fmt.Sprintf("Logic(%d)", int(l))
}

// ParseLogic parses and, or or xor.
func ParseLogic(s string) (Logic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and", "&&":
		return And, nil
	case "or", "||":
		return Or, nil
	case "xor", "^":
		return Xor, nil
	}
	return And, fmt.Errorf("behaviours: unknown logic %q", s)
}

// CheckBlackboardVariableValues applies several comparisons and combines
// them with a [Logic] operator. A missing variable counts as a failed
// comparison.
type CheckBlackboardVariableValues struct {
	client *blackboard.Client
	checks []expression.Comparison
	logic  Logic
}

// NewCheckBlackboardVariableValues returns a combined comparison. It panics
// if checks is empty.
func NewCheckBlackboardVariableValues(name string, checks []expression.Comparison, logic Logic, opts ...Option) *bt.Leaf {
	if len(checks) == 0 {
		panic("behaviours: check blackboard variable values requires checks")
	}
	c := &CheckBlackboardVariableValues{client: newClient(name, opts), checks: checks, logic: logic}
	for _, check := range checks {
		mustRead(c.client, blackboard.KeyOf(check.Variable))
	}
	return attach(bt.NewLeaf(name, c), c.client)
}

func (c *CheckBlackboardVariableValues) Update(l *bt.Leaf) (bt.Status, error) {
	results := make([]bool, len(c.checks))
	for i, check := range c.checks {
		value, ok, err := reader{client: c.client, name: check.Variable}.get()
		if err != nil {
			return bt.Invalid, err
		}
		if ok {
			if results[i], err = check.Check(value); err != nil {
				return bt.Invalid, err
			}
		}
	}
	var met bool
	switch c.logic {
	case And:
		met = !slices.Contains(results, false)
	case Or:
		met = slices.Contains(results, true)
	case Xor:
		for _, r := range results {
			met = met != r
		}
	default:
		return bt.Invalid, fmt.Errorf("behaviours: unknown logic %v", c.logic)
	}
	l.SetFeedbackMessage(fmt.Sprintf("%s%v", c.logic, results))
	if met {
		return bt.Success, nil
	}
	return bt.Failure, nil
}

// BlackboardToStatus returns the [bt.Status] stored in a variable, the
// counterpart of [bt.StatusToBlackboard]. A missing variable or a value of
// another type is an error.
type BlackboardToStatus struct {
	reader
}

// NewBlackboardToStatus returns a leaf reflecting the status in variable.
func NewBlackboardToStatus(name, variable string, opts ...Option) *bt.Leaf {
	b := &BlackboardToStatus{reader: newReader(name, variable, opts)}
	return attach(bt.NewLeaf(name, b), b.client)
}

func (b *BlackboardToStatus) Update(l *bt.Leaf) (bt.Status, error) {
	value, err := b.client.Get(b.name)
	if err != nil {
		return bt.Invalid, err
	}
	status, ok := value.(bt.Status)
	if !ok {
		return bt.Invalid, fmt.Errorf("behaviours: %q holds %T, not a status", b.name, value)
	}
	l.SetFeedbackMessage(fmt.Sprintf("%s: %s", b.name, status))
	return status, nil
}
