package behaviours

import (
	"fmt"
	"slices"

	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/joeycumines/treetick/internal/bt"
	"github.com/joeycumines/treetick/internal/expression"
)

// Bindings maps expression identifiers to blackboard variables, e.g.
// {"pct": "battery.percentage"}. Unset variables evaluate to nil.
type Bindings map[string]string

func (b Bindings) register(c *blackboard.Client) {
	for _, key := range b.keys() {
		mustRead(c, key)
	}
}

func (b Bindings) keys() []string {
	keys := make([]string, 0, len(b))
	for _, name := range b {
		keys = append(keys, blackboard.KeyOf(name))
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

func (b Bindings) env(c *blackboard.Client) (expression.Env, error) {
	env := make(expression.Env, len(b))
	for ident, name := range b {
		value, ok, err := reader{client: c, name: name}.get()
		if err != nil {
			return nil, err
		}
		if ok {
			env[ident] = value
		}
	}
	return env, nil
}

// CheckExpression evaluates a boolean expr-lang expression over blackboard
// variables, succeeding when it is true and failing otherwise.
type CheckExpression struct {
	client   *blackboard.Client
	source   string
	bindings Bindings
}

// NewCheckExpression returns an expression check. The expression is
// compiled immediately and a syntax error is returned.
func NewCheckExpression(name, source string, bindings Bindings, opts ...Option) (*bt.Leaf, error) {
	if _, err := expression.CompileCondition(source); err != nil {
		return nil, err
	}
	c := &CheckExpression{client: newClient(name, opts), source: source, bindings: bindings}
	bindings.register(c.client)
	return attach(bt.NewLeaf(name, c), c.client), nil
}

func (c *CheckExpression) Update(l *bt.Leaf) (bt.Status, error) {
	ok, err := evaluate(c.source, c.bindings, c.client)
	if err != nil {
		return bt.Invalid, err
	}
	l.SetFeedbackMessage(fmt.Sprintf("%s: %t", c.source, ok))
	if ok {
		return bt.Success, nil
	}
	return bt.Failure, nil
}

func evaluate(source string, bindings Bindings, c *blackboard.Client) (bool, error) {
	env, err := bindings.env(c)
	if err != nil {
		return false, err
	}
	return expression.EvalBool(source, env)
}

// NewExprGuard returns an eternal guard of child whose condition is an
// expr-lang expression over blackboard variables.
func NewExprGuard(name string, child bt.Behaviour, source string, bindings Bindings, opts ...Option) (*bt.EternalGuard, error) {
	if _, err := expression.CompileCondition(source); err != nil {
		return nil, err
	}
	condition := func(c *blackboard.Client) (bool, error) {
		return evaluate(source, bindings, c)
	}
	return bt.NewEternalGuardWithClient(name, child, condition, newClient(name, opts), bindings.keys()...), nil
}
