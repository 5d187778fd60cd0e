package expression

import (
	"fmt"
	"strings"
)

// Operator is a binary comparison, applied as "value Operator operand".
type Operator string

const (
	Equal          Operator = "=="
	NotEqual       Operator = "!="
	Less           Operator = "<"
	LessOrEqual    Operator = "<="
	Greater        Operator = ">"
	GreaterOrEqual Operator = ">="
	// In tests membership of the value in the operand (a slice, array or
	// map keys).
	In Operator = "in"
	// Contains tests whether the value string contains the operand.
	Contains Operator = "contains"
	// Matches tests the value string against the operand regular
	// expression.
	Matches Operator = "matches"
)

var operators = map[string]Operator{
	"==":       Equal,
	"eq":       Equal,
	"!=":       NotEqual,
	"ne":       NotEqual,
	"<":        Less,
	"lt":       Less,
	"<=":       LessOrEqual,
	"le":       LessOrEqual,
	">":        Greater,
	"gt":       Greater,
	">=":       GreaterOrEqual,
	"ge":       GreaterOrEqual,
	"in":       In,
	"contains": Contains,
	"matches":  Matches,
}

// ParseOperator accepts the operator symbols and the words eq, ne, lt, le,
// gt and ge.
func ParseOperator(s string) (Operator, error) {
	if op, ok := operators[strings.ToLower(strings.TrimSpace(s))]; ok {
		return op, nil
	}
	return "", fmt.Errorf("expression: unknown operator %q", s)
}

func (op Operator) valid() bool {
	switch op {
	case Equal, NotEqual, Less, LessOrEqual, Greater, GreaterOrEqual, In, Contains, Matches:
		return true
	}
	return false
}

// Compare reports whether "value op operand" holds. Incomparable values are
// an error, not false.
func Compare(value any, op Operator, operand any) (bool, error) {
	if !op.valid() {
		return false, fmt.Errorf("expression: unknown operator %q", string(op))
	}
	return EvalBool("value "+string(op)+" operand", Env{"value": value, "operand": operand})
}

// Comparison is a comparison against a blackboard variable: the variable's
// value is compared to Value with Operator.
type Comparison struct {
	Variable string
	Operator Operator
	Value    any
}

// Check applies the comparison to the current value of the variable.
func (c Comparison) Check(current any) (bool, error) {
	return Compare(current, c.Operator, c.Value)
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %v", c.Variable, c.Operator, c.Value)
}
