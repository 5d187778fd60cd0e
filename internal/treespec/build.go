package treespec

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joeycumines/treetick/internal/behaviours"
	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/joeycumines/treetick/internal/bt"
	"github.com/joeycumines/treetick/internal/expression"
)

var (
	// ErrNoRoot is returned for a tree file without a root node.
	ErrNoRoot = errors.New("treespec: no root node")
	// ErrUnknownType is returned for a node type that is not recognised.
	ErrUnknownType = errors.New("unknown node type")
	// ErrInvalidNode is returned for a node missing required fields or with
	// fields of the wrong shape.
	ErrInvalidNode = errors.New("invalid node")
)

// NodeError locates a failure within a tree file. Path is like
// "root.children[1].child".
type NodeError struct {
	Path string
	Type string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("treespec: %s (%s): %v", e.Path, e.Type, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// Builder turns specs into trees bound to a blackboard store.
type Builder struct {
	store *blackboard.Store
}

// NewBuilder returns a builder whose behaviours use store, or the default
// store if nil.
func NewBuilder(store *blackboard.Store) *Builder {
	if store == nil {
		store = blackboard.Default()
	}
	return &Builder{store: store}
}

// Store returns the store behaviours are bound to.
func (b *Builder) Store() *blackboard.Store { return b.store }

// Seed writes the initial blackboard values of s, sorted by key.
func (b *Builder) Seed(s *Spec) error {
	for _, key := range slices.Sorted(maps.Keys(s.Blackboard)) {
		abs := blackboard.AbsoluteName(blackboard.Separator, key)
		if err := b.store.Set(abs, s.Blackboard[key]); err != nil {
			return fmt.Errorf("treespec: seed %q: %w", abs, err)
		}
	}
	return nil
}

// Build seeds the blackboard and returns a tree of the behaviours in s. The
// root must be a composite or decorator, an action root fails with
// [bt.ErrActionAsRoot].
func (b *Builder) Build(s *Spec) (*bt.BehaviourTree, error) {
	if s.Root == nil {
		return nil, ErrNoRoot
	}
	if kind, ok := kinds[s.Root.Type]; ok && kind == leafKind {
		return nil, &NodeError{Path: "root", Type: s.Root.Type, Err: bt.ErrActionAsRoot}
	}
	if err := b.Seed(s); err != nil {
		return nil, err
	}
	root, err := b.node(s, s.Root, "root")
	if err != nil {
		return nil, err
	}
	tree, err := bt.NewBehaviourTree(root)
	if err != nil {
		return nil, fmt.Errorf("treespec: %w", err)
	}
	return tree, nil
}

// Validate builds s against a scratch store, reporting the first error.
func Validate(s *Spec) error {
	_, err := NewBuilder(blackboard.NewStore()).Build(s)
	return err
}

type kind int

const (
	leafKind kind = iota
	decoratorKind
	compositeKind
)

var kinds = map[string]kind{
	"sequence": compositeKind,
	"selector": compositeKind,
	"parallel": compositeKind,

	"inverter":             decoratorKind,
	"success_is_failure":   decoratorKind,
	"failure_is_success":   decoratorKind,
	"failure_is_running":   decoratorKind,
	"success_is_running":   decoratorKind,
	"running_is_failure":   decoratorKind,
	"running_is_success":   decoratorKind,
	"condition":            decoratorKind,
	"timeout":              decoratorKind,
	"one_shot":             decoratorKind,
	"eternal_guard":        decoratorKind,
	"status_to_blackboard": decoratorKind,

	"success":                            leafKind,
	"failure":                            leafKind,
	"running":                            leafKind,
	"dummy":                              leafKind,
	"periodic":                           leafKind,
	"success_every_n":                    leafKind,
	"status_sequence":                    leafKind,
	"tick_counter":                       leafKind,
	"set_blackboard_variable":            leafKind,
	"unset_blackboard_variable":          leafKind,
	"check_blackboard_variable_exists":   leafKind,
	"wait_for_blackboard_variable":       leafKind,
	"check_blackboard_variable_value":    leafKind,
	"wait_for_blackboard_variable_value": leafKind,
	"check_blackboard_variable_values":   leafKind,
	"blackboard_to_status":               leafKind,
	"check_expression":                   leafKind,
	"script":                             leafKind,
}

// Types returns the recognised node types, sorted.
func Types() []string {
	return slices.Sorted(maps.Keys(kinds))
}

func (b *Builder) node(s *Spec, n *Node, path string) (bt.Behaviour, error) {
	fail := func(err error) (bt.Behaviour, error) {
		var ne *NodeError
		if errors.As(err, &ne) {
			return nil, err
		}
		return nil, &NodeError{Path: path, Type: n.Type, Err: err}
	}
	invalid := func(format string, args ...any) (bt.Behaviour, error) {
		return fail(fmt.Errorf("%w: %s", ErrInvalidNode, fmt.Sprintf(format, args...)))
	}

	k, ok := kinds[n.Type]
	if !ok {
		return fail(ErrUnknownType)
	}
	name := n.Name
	if name == "" {
		name = n.Type
	}

	switch k {
	case compositeKind:
		if n.Child != nil {
			return invalid("composites take children, not child")
		}
		children := make([]bt.Behaviour, len(n.Children))
		for i, c := range n.Children {
			child, err := b.node(s, c, path+".children["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			children[i] = child
		}
		c, err := b.composite(n, name, children)
		if err != nil {
			return fail(err)
		}
		return c, nil

	case decoratorKind:
		if n.Child == nil {
			return invalid("decorators require a child")
		}
		if len(n.Children) > 0 {
			return invalid("decorators take a single child, not children")
		}
		child, err := b.node(s, n.Child, path+".child")
		if err != nil {
			return nil, err
		}
		d, err := b.decorator(n, name, child)
		if err != nil {
			return fail(err)
		}
		return d, nil
	}

	if n.Child != nil || len(n.Children) > 0 {
		return invalid("actions cannot have children")
	}
	l, err := b.leaf(s, n, name)
	if err != nil {
		return fail(err)
	}
	return l, nil
}

func (b *Builder) options(n *Node) []behaviours.Option {
	opts := []behaviours.Option{behaviours.WithStore(b.store)}
	if n.Namespace != "" {
		opts = append(opts, behaviours.WithNamespace(n.Namespace))
	}
	return opts
}

func (b *Builder) client(n *Node, name string) *blackboard.Client {
	namespace := n.Namespace
	if namespace == "" {
		namespace = blackboard.Separator
	}
	return b.store.NewClient(name, namespace)
}

func (b *Builder) composite(n *Node, name string, children []bt.Behaviour) (bt.Behaviour, error) {
	memory := n.Memory == nil || *n.Memory
	switch n.Type {
	case "sequence":
		return bt.NewSequence(name, memory, children...), nil
	case "selector":
		return bt.NewSelector(name, memory, children...), nil
	}

	var policy bt.ParallelPolicy
	switch strings.ToLower(n.Policy) {
	case "", "success_on_all":
		policy = bt.SuccessOnAll(n.Synchronise)
	case "success_on_one":
		policy = bt.SuccessOnOne()
	case "success_on_selected":
		selected := make([]bt.Behaviour, 0, len(n.Selected))
		for _, want := range n.Selected {
			i := slices.IndexFunc(children, func(c bt.Behaviour) bool { return c.Name() == want })
			if i < 0 {
				return nil, fmt.Errorf("%w: selected child %q not found", ErrInvalidNode, want)
			}
			selected = append(selected, children[i])
		}
		policy = bt.SuccessOnSelected(n.Synchronise, selected...)
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidNode, bt.ErrInvalidPolicy, n.Policy)
	}
	return bt.NewParallel(name, policy, children...), nil
}

func (b *Builder) decorator(n *Node, name string, child bt.Behaviour) (bt.Behaviour, error) {
	switch n.Type {
	case "inverter":
		return bt.NewInverter(name, child), nil
	case "success_is_failure":
		return bt.NewSuccessIsFailure(name, child), nil
	case "failure_is_success":
		return bt.NewFailureIsSuccess(name, child), nil
	case "failure_is_running":
		return bt.NewFailureIsRunning(name, child), nil
	case "success_is_running":
		return bt.NewSuccessIsRunning(name, child), nil
	case "running_is_failure":
		return bt.NewRunningIsFailure(name, child), nil
	case "running_is_success":
		return bt.NewRunningIsSuccess(name, child), nil
	case "condition":
		status, err := parseStatus(n.Status, bt.Success)
		if err != nil {
			return nil, err
		}
		return bt.NewCondition(name, child, status), nil
	case "timeout":
		if n.Timeout <= 0 {
			return nil, fmt.Errorf("%w: timeout must be positive", ErrInvalidNode)
		}
		return bt.NewTimeout(name, child, n.Timeout), nil
	case "one_shot":
		var policy bt.OneShotPolicy
		switch strings.ToLower(n.Policy) {
		case "", "on_successful_completion":
			policy = bt.OnSuccessfulCompletion
		case "on_completion":
			policy = bt.OnCompletion
		default:
			return nil, fmt.Errorf("%w: unknown one shot policy %q", ErrInvalidNode, n.Policy)
		}
		return bt.NewOneShot(name, child, policy), nil
	case "eternal_guard":
		if n.Expression == "" {
			return nil, fmt.Errorf("%w: expression is required", ErrInvalidNode)
		}
		return behaviours.NewExprGuard(name, child, n.Expression, n.Bindings, b.options(n)...)
	case "status_to_blackboard":
		if n.Variable == "" {
			return nil, fmt.Errorf("%w: variable is required", ErrInvalidNode)
		}
		return bt.NewStatusToBlackboardWithClient(name, child, n.Variable, b.client(n, name))
	}
	return nil, ErrUnknownType
}

func (b *Builder) leaf(s *Spec, n *Node, name string) (bt.Behaviour, error) {
	opts := b.options(n)
	require := func(field, value string) error {
		if value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidNode, field)
		}
		return nil
	}

	switch n.Type {
	case "success":
		return behaviours.NewSuccess(name), nil
	case "failure":
		return behaviours.NewFailure(name), nil
	case "running":
		return behaviours.NewRunning(name), nil
	case "dummy":
		return behaviours.NewDummy(name), nil
	case "periodic":
		if n.N < 1 {
			return nil, fmt.Errorf("%w: n must be positive", ErrInvalidNode)
		}
		return behaviours.NewPeriodic(name, n.N), nil
	case "success_every_n":
		if n.N < 1 {
			return nil, fmt.Errorf("%w: n must be positive", ErrInvalidNode)
		}
		return behaviours.NewSuccessEveryN(name, n.N), nil
	case "status_sequence":
		if len(n.Statuses) == 0 {
			return nil, fmt.Errorf("%w: statuses are required", ErrInvalidNode)
		}
		statuses := make([]bt.Status, len(n.Statuses))
		for i, v := range n.Statuses {
			status, err := bt.ParseStatus(v)
			if err != nil {
				return nil, err
			}
			statuses[i] = status
		}
		eventually, err := parseStatus(n.Eventually, bt.Invalid)
		if err != nil {
			return nil, err
		}
		return behaviours.NewStatusSequence(name, statuses, eventually), nil
	case "tick_counter":
		completion, err := parseStatus(n.Status, bt.Success)
		if err != nil {
			return nil, err
		}
		return behaviours.NewTickCounter(name, n.N, completion), nil

	case "set_blackboard_variable":
		if err := require("variable", n.Variable); err != nil {
			return nil, err
		}
		overwrite := n.Overwrite == nil || *n.Overwrite
		return behaviours.NewSetBlackboardVariable(name, n.Variable, n.Value, overwrite, opts...)
	case "unset_blackboard_variable":
		if err := require("key", n.Key); err != nil {
			return nil, err
		}
		return behaviours.NewUnsetBlackboardVariable(name, n.Key, opts...)
	case "check_blackboard_variable_exists":
		if err := require("variable", n.Variable); err != nil {
			return nil, err
		}
		return behaviours.NewCheckBlackboardVariableExists(name, n.Variable, opts...), nil
	case "wait_for_blackboard_variable":
		if err := require("variable", n.Variable); err != nil {
			return nil, err
		}
		return behaviours.NewWaitForBlackboardVariable(name, n.Variable, opts...), nil
	case "check_blackboard_variable_value", "wait_for_blackboard_variable_value":
		check, err := comparison(Comparison{Variable: n.Variable, Operator: n.Operator, Value: n.Value})
		if err != nil {
			return nil, err
		}
		if n.Type == "wait_for_blackboard_variable_value" {
			return behaviours.NewWaitForBlackboardVariableValue(name, check, opts...), nil
		}
		return behaviours.NewCheckBlackboardVariableValue(name, check, opts...), nil
	case "check_blackboard_variable_values":
		if len(n.Checks) == 0 {
			return nil, fmt.Errorf("%w: checks are required", ErrInvalidNode)
		}
		checks := make([]expression.Comparison, len(n.Checks))
		for i, c := range n.Checks {
			check, err := comparison(c)
			if err != nil {
				return nil, err
			}
			checks[i] = check
		}
		logic := behaviours.And
		if n.Logic != "" {
			var err error
			if logic, err = behaviours.ParseLogic(n.Logic); err != nil {
				return nil, err
			}
		}
		return behaviours.NewCheckBlackboardVariableValues(name, checks, logic, opts...), nil
	case "blackboard_to_status":
		if err := require("variable", n.Variable); err != nil {
			return nil, err
		}
		return behaviours.NewBlackboardToStatus(name, n.Variable, opts...), nil

	case "check_expression":
		if err := require("expression", n.Expression); err != nil {
			return nil, err
		}
		return behaviours.NewCheckExpression(name, n.Expression, n.Bindings, opts...)
	case "script":
		source, err := scriptSource(s, n)
		if err != nil {
			return nil, err
		}
		dir := s.dir
		if n.File != "" {
			dir = filepath.Dir(filepath.Join(s.dir, n.File))
			if filepath.IsAbs(n.File) {
				dir = filepath.Dir(n.File)
			}
		}
		opts = append(opts, behaviours.WithModuleDir(dir))
		return behaviours.NewScript(name, source, behaviours.ScriptAccess{Read: n.Read, Write: n.Write}, opts...)
	}
	return nil, ErrUnknownType
}

func parseStatus(s string, def bt.Status) (bt.Status, error) {
	if s == "" {
		return def, nil
	}
	return bt.ParseStatus(s)
}

func comparison(c Comparison) (expression.Comparison, error) {
	if c.Variable == "" {
		return expression.Comparison{}, fmt.Errorf("%w: variable is required", ErrInvalidNode)
	}
	op := expression.Equal
	if c.Operator != "" {
		var err error
		if op, err = expression.ParseOperator(c.Operator); err != nil {
			return expression.Comparison{}, err
		}
	}
	return expression.Comparison{Variable: c.Variable, Operator: op, Value: c.Value}, nil
}

func scriptSource(s *Spec, n *Node) (string, error) {
	switch {
	case n.Source != "" && n.File != "":
		return "", fmt.Errorf("%w: source and file are mutually exclusive", ErrInvalidNode)
	case n.Source != "":
		return n.Source, nil
	case n.File != "":
		path := n.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("%w: source or file is required", ErrInvalidNode)
}
