package bt

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

type policyKind int

const (
	successOnAll policyKind = iota
	successOnOne
	successOnSelected
)

// ParallelPolicy decides when a [Parallel] succeeds. Any failing child fails
// the parallel regardless of policy.
type ParallelPolicy struct {
	kind        policyKind
	synchronise bool
	selected    []Behaviour
}

// SuccessOnAll succeeds once every child has succeeded. When synchronised,
// children that already succeeded are not ticked again until the parallel
// resolves.
func SuccessOnAll(synchronise bool) ParallelPolicy {
	return ParallelPolicy{kind: successOnAll, synchronise: synchronise}
}

// SuccessOnOne succeeds as soon as any child succeeds.
func SuccessOnOne() ParallelPolicy {
	return ParallelPolicy{kind: successOnOne}
}

// SuccessOnSelected succeeds once every selected child has succeeded. The
// selection must be non-empty and contain only children of the parallel.
func SuccessOnSelected(synchronise bool, children ...Behaviour) ParallelPolicy {
	return ParallelPolicy{kind: successOnSelected, synchronise: synchronise, selected: slices.Clone(children)}
}

// Synchronise reports whether succeeded children are skipped.
func (p ParallelPolicy) Synchronise() bool { return p.synchronise }

func (p ParallelPolicy) String() string {
	switch p.kind {
	case successOnAll:
		return fmt.Sprintf("SuccessOnAll(synchronise=%t)", p.synchronise)
	case successOnOne:
		return "SuccessOnOne"
	default:
		names := make([]string, len(p.selected))
		for i, b := range p.selected {
			names[i] = nameOf(b)
		}
		return fmt.Sprintf("SuccessOnSelected(synchronise=%t, [%s])", p.synchronise, strings.Join(names, ", "))
	}
}

// Parallel ticks every child on every tick and aggregates their statuses
// according to its [ParallelPolicy]. Children are interleaved within the
// tick, not run concurrently.
type Parallel struct {
	Composite
	policy ParallelPolicy
}

// NewParallel returns a parallel over children. It panics if any child
// cannot be added. A policy that does not fit the children is reported by
// [Parallel.Setup] and every tick.
func NewParallel(name string, policy ParallelPolicy, children ...Behaviour) *Parallel {
	p := &Parallel{policy: policy}
	p.init(name, p)
	mustAddChildren(&p.Composite, children)
	return p
}

// Policy returns the success policy.
func (p *Parallel) Policy() ParallelPolicy { return p.policy }

// Setup validates the policy against the current children.
func (p *Parallel) Setup(context.Context) error {
	return p.validatePolicy()
}

func (p *Parallel) validatePolicy() error {
	if p.policy.kind != successOnSelected {
		return nil
	}
	if len(p.policy.selected) == 0 {
		return &PolicyError{Parallel: p.name, Reason: "SuccessOnSelected requires a non-empty selection of children"}
	}
	var missing []string
	for _, b := range p.policy.selected {
		if isNil(b) || p.indexOf(b) < 0 {
			missing = append(missing, nameOf(b))
		}
	}
	if len(missing) > 0 {
		return &PolicyError{Parallel: p.name, Reason: fmt.Sprintf("selected behaviours are not children: [%s]", strings.Join(missing, ", "))}
	}
	return nil
}

func (p *Parallel) Tick(visit VisitFunc) error {
	if err := p.validatePolicy(); err != nil {
		p.log().Error("invalid policy", "error", err)
		return err
	}
	if p.status != Running {
		for _, child := range p.children {
			if child.Status() != Invalid {
				child.Stop(Invalid)
			}
		}
		p.current = nil
	}

	if len(p.children) == 0 {
		p.current = nil
		p.Stop(Success)
		visit.visit(p)
		return nil
	}

	for _, child := range p.children {
		if p.policy.synchronise && child.Status() == Success {
			continue
		}
		if err := p.tickChild(child, visit); err != nil {
			return err
		}
	}

	status := Running
	p.current = p.children[len(p.children)-1]
	if i := slices.IndexFunc(p.children, hasStatus(Failure)); i >= 0 {
		p.current = p.children[i]
		status = Failure
	} else {
		switch p.policy.kind {
		case successOnAll:
			if allHaveStatus(p.children, Success) {
				status = Success
			}
		case successOnOne:
			if i := lastIndexFunc(p.children, hasStatus(Success)); i >= 0 {
				p.current = p.children[i]
				status = Success
			}
		case successOnSelected:
			if allHaveStatus(p.policy.selected, Success) {
				p.current = p.policy.selected[len(p.policy.selected)-1]
				status = Success
			}
		}
	}

	if status == Running {
		p.status = Running
	} else {
		p.Stop(status)
	}
	visit.visit(p)
	return nil
}

// Stop interrupts running children whenever the parallel resolves or is
// itself interrupted.
func (p *Parallel) Stop(status Status) {
	for _, child := range p.children {
		if child.Status() == Running {
			child.Stop(Invalid)
		}
	}
	p.Composite.Stop(status)
}

func hasStatus(status Status) func(Behaviour) bool {
	return func(b Behaviour) bool { return b.Status() == status }
}

func allHaveStatus(bs []Behaviour, status Status) bool {
	for _, b := range bs {
		if b.Status() != status {
			return false
		}
	}
	return true
}

func lastIndexFunc(bs []Behaviour, f func(Behaviour) bool) int {
	for i := len(bs) - 1; i >= 0; i-- {
		if f(bs[i]) {
			return i
		}
	}
	return -1
}
