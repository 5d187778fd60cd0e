// Package expression compiles and evaluates expr-lang expressions over
// blackboard values, caching compiled programs.
package expression

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrNotBool is returned when a condition does not evaluate to a bool.
var ErrNotBool = errors.New("expression did not evaluate to a bool")

// Env is the evaluation environment, mapping identifiers to values.
// Identifiers missing from the environment evaluate to nil.
type Env = map[string]any

type kind string

const (
	kindBool  kind = "bool"
	kindValue kind = "value"
)

func compile(k kind, source string) (*vm.Program, error) {
	key := string(k) + "\x00" + source
	if program, ok := programs.Get(key); ok {
		return program, nil
	}
	options := []expr.Option{expr.AllowUndefinedVariables()}
	if k == kindBool {
		options = append(options, expr.AsBool())
	}
	program, err := expr.Compile(source, options...)
	if err != nil {
		return nil, fmt.Errorf("expression: compile %q: %w", source, err)
	}
	programs.Put(key, program)
	return program, nil
}

// CompileCondition compiles a boolean expression, validating its syntax.
func CompileCondition(source string) (*vm.Program, error) {
	return compile(kindBool, source)
}

// Compile compiles an expression of any result type.
func Compile(source string) (*vm.Program, error) {
	return compile(kindValue, source)
}

// EvalBool evaluates a boolean expression against env.
func EvalBool(source string, env Env) (bool, error) {
	program, err := compile(kindBool, source)
	if err != nil {
		return false, err
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("expression: evaluate %q: %w", source, err)
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expression: evaluate %q: %w: %T", source, ErrNotBool, result)
	}
	return b, nil
}

// Eval evaluates an expression against env.
func Eval(source string, env Env) (any, error) {
	program, err := compile(kindValue, source)
	if err != nil {
		return nil, err
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return nil, fmt.Errorf("expression: evaluate %q: %w", source, err)
	}
	return result, nil
}
