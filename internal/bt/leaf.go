package bt

import (
	"context"
	"fmt"
)

// Updater is the decision logic of a leaf. Update is called once per tick
// and must not block; long running work is polled and reported as
// [Running].
type Updater interface {
	Update(l *Leaf) (Status, error)
}

// Initialiser is implemented by updaters that reset state when the leaf is
// entered, i.e. ticked while not [Running].
type Initialiser interface {
	Initialise(l *Leaf)
}

// Terminator is implemented by updaters that clean up when the leaf leaves
// [Running], including when it is interrupted with [Invalid].
type Terminator interface {
	Terminate(l *Leaf, status Status)
}

// SetupHandler is implemented by updaters with one-off preparation, e.g.
// checking external dependencies or blackboard keys.
type SetupHandler interface {
	Setup(ctx context.Context, l *Leaf) error
}

// Shutdowner is implemented by updaters holding resources.
type Shutdowner interface {
	Shutdown(l *Leaf)
}

// UpdateFunc adapts a function to an [Updater].
type UpdateFunc func(l *Leaf) (Status, error)

func (f UpdateFunc) Update(l *Leaf) (Status, error) { return f(l) }

// StatusFunc adapts an infallible function to an [Updater].
type StatusFunc func(l *Leaf) Status

func (f StatusFunc) Update(l *Leaf) (Status, error) { return f(l), nil }

// Leaf is an action or condition: a behaviour without children whose
// decision logic is supplied by an [Updater].
type Leaf struct {
	node
	impl Updater
}

// NewLeaf returns a leaf driven by impl. It panics if impl is nil.
func NewLeaf(name string, impl Updater) *Leaf {
	if impl == nil {
		panic("bt: leaf updater must not be nil")
	}
	l := &Leaf{impl: impl}
	l.init(name, l)
	return l
}

// Impl returns the updater driving the leaf.
func (l *Leaf) Impl() Updater { return l.impl }

func (l *Leaf) Children() []Behaviour { return nil }

func (l *Leaf) Tip() Behaviour { return l.tip() }

func (l *Leaf) Setup(ctx context.Context) error {
	if h, ok := l.impl.(SetupHandler); ok {
		return h.Setup(ctx, l)
	}
	return nil
}

func (l *Leaf) Shutdown() {
	if h, ok := l.impl.(Shutdowner); ok {
		h.Shutdown(l)
	}
}

func (l *Leaf) Tick(visit VisitFunc) error {
	if l.status != Running {
		if h, ok := l.impl.(Initialiser); ok {
			h.Initialise(l)
		}
	}
	status, err := l.impl.Update(l)
	if err != nil {
		return fmt.Errorf("bt: %q update: %w", l.name, err)
	}
	l.settle(status)
	visit.visit(l)
	return nil
}

func (l *Leaf) Stop(status Status) {
	l.traceStop(status)
	if h, ok := l.impl.(Terminator); ok {
		h.Terminate(l, status)
	}
	l.status = status
}

// settle applies the leave/stay rule to the result of an update.
func (l *Leaf) settle(status Status) {
	if !status.valid() || status == Invalid {
		l.log().Error("update returned an invalid status", "status", status)
		status = Invalid
	}
	if status == Running {
		l.status = Running
		return
	}
	l.Stop(status)
}
