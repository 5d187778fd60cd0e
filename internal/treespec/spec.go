// Package treespec loads behaviour trees, and the blackboard they start
// from, from YAML files:
//
//	name: patrol
//	blackboard:
//	  battery: {percentage: 80}
//	root:
//	  type: selector
//	  name: Tasks
//	  memory: false
//	  children:
//	    - type: eternal_guard
//	      name: Battery Low?
//	      expression: level < 30
//	      bindings: {level: battery.percentage}
//	      child: {type: running, name: Flash LEDs}
//	    - type: running
//	      name: Idle
//
// Every node has a type and an optional name, which defaults to the type.
// Composites take children, decorators a single child. Sequences and
// selectors resume from their running child unless memory is false.
package treespec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Spec is a tree file.
type Spec struct {
	Name string `yaml:"name,omitempty"`
	// Blackboard holds initial values, by key. Relative keys are resolved
	// against the root namespace.
	Blackboard map[string]any `yaml:"blackboard,omitempty"`
	Root       *Node          `yaml:"root"`

	// dir resolves relative script files, it is set by [Load].
	dir string
}

// Node describes a single behaviour. Which fields apply depends on Type.
type Node struct {
	Type      string `yaml:"type"`
	Name      string `yaml:"name,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`

	Children []*Node `yaml:"children,omitempty"`
	Child    *Node   `yaml:"child,omitempty"`

	// sequence, selector; true when omitted
	Memory *bool `yaml:"memory,omitempty"`

	// parallel: success_on_all, success_on_one or success_on_selected,
	// the latter naming its selected children; one_shot: on_completion or
	// on_successful_completion
	Policy      string   `yaml:"policy,omitempty"`
	Synchronise bool     `yaml:"synchronise,omitempty"`
	Selected    []string `yaml:"selected,omitempty"`

	// condition, status_sequence, tick_counter
	Status     string        `yaml:"status,omitempty"`
	Statuses   []string      `yaml:"statuses,omitempty"`
	Eventually string        `yaml:"eventually,omitempty"`
	Timeout    time.Duration `yaml:"timeout,omitempty"`
	N          int           `yaml:"n,omitempty"`

	// blackboard leaves and status_to_blackboard
	Variable  string       `yaml:"variable,omitempty"`
	Key       string       `yaml:"key,omitempty"`
	Value     any          `yaml:"value,omitempty"`
	Overwrite *bool        `yaml:"overwrite,omitempty"`
	Operator  string       `yaml:"operator,omitempty"`
	Checks    []Comparison `yaml:"checks,omitempty"`
	Logic     string       `yaml:"logic,omitempty"`

	// check_expression, eternal_guard
	Expression string            `yaml:"expression,omitempty"`
	Bindings   map[string]string `yaml:"bindings,omitempty"`

	// script, from Source or a File relative to the tree file
	Source string   `yaml:"source,omitempty"`
	File   string   `yaml:"file,omitempty"`
	Read   []string `yaml:"read,omitempty"`
	Write  []string `yaml:"write,omitempty"`
}

// Comparison is one entry of a check_blackboard_variable_values node.
type Comparison struct {
	Variable string `yaml:"variable"`
	Operator string `yaml:"operator"`
	Value    any    `yaml:"value"`
}

// Parse decodes a single YAML document. Unknown fields are rejected.
func Parse(data []byte) (*Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Spec
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRoot
		}
		return nil, fmt.Errorf("treespec: %w", err)
	}
	var extra any
	if err := dec.Decode(&extra); err == nil {
		return nil, fmt.Errorf("treespec: multiple YAML documents are not supported")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("treespec: %w", err)
	}
	if s.Root == nil {
		return nil, ErrNoRoot
	}
	return &s, nil
}

// Load reads and parses a tree file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.dir = filepath.Dir(path)
	return s, nil
}

// Dir returns the directory script files are resolved against.
func (s *Spec) Dir() string { return s.dir }
