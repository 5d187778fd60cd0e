package bt

import "context"

// DecoratorFunc computes a decorator's status, typically from the status
// its child reported this tick.
type DecoratorFunc func(d *Decorator) (Status, error)

type decoratorHooks struct {
	initialise func()
	update     DecoratorFunc
	terminate  func(status Status)
	setup      func(ctx context.Context) error
	// guard runs before every tick, a false result fails the decorator
	// without ticking the child.
	guard func() (bool, error)
	// bypass ticks the decorator leaf style, without its child.
	bypass func() bool
}

// Decorator owns exactly one child and transforms its result or execution.
// The variants in this package ([NewInverter], [NewTimeout], [NewOneShot],
// ...) are decorators with particular hooks; [NewDecorator] accepts an
// arbitrary [DecoratorFunc].
type Decorator struct {
	node
	decorated Behaviour
	ticking   bool
	hooks     decoratorHooks
}

// NewDecorator returns a decorator of child whose status is computed by
// update after each tick of child. It panics if child cannot be decorated.
func NewDecorator(name string, child Behaviour, update DecoratorFunc) *Decorator {
	if update == nil {
		panic("bt: decorator update must not be nil")
	}
	d := new(Decorator)
	d.construct(name, d, child, decoratorHooks{update: update})
	return d
}

func (d *Decorator) construct(name string, self Behaviour, child Behaviour, hooks decoratorHooks) {
	d.init(name, self)
	d.hooks = hooks
	if !isNil(child) {
		if err := d.AddDecorated(child); err != nil {
			panic(err)
		}
	}
}

// Decorated returns the child, or nil if not yet set.
func (d *Decorator) Decorated() Behaviour { return d.decorated }

// AddDecorated sets the child. It may be called only once, and only when the
// child was not supplied to the constructor.
func (d *Decorator) AddDecorated(child Behaviour) error {
	structural := func(err error) error {
		return &StructuralError{Op: "add decorated", Parent: d.name, Child: nameOf(child), Err: err}
	}
	switch {
	case d.ticking:
		return structural(ErrMidTraversal)
	case d.decorated != nil:
		return structural(ErrDecoratedAlreadySet)
	case isNil(child):
		return structural(ErrNilChild)
	case child.Parent() != nil:
		return structural(ErrAlreadyParented)
	}
	for a := d.self; a != nil; a = a.Parent() {
		if a == child {
			return structural(ErrCycle)
		}
	}
	child.core().parent = d.self
	d.decorated = child
	return nil
}

func (d *Decorator) Children() []Behaviour {
	if d.decorated == nil {
		return nil
	}
	return []Behaviour{d.decorated}
}

func (d *Decorator) Setup(ctx context.Context) error {
	if d.decorated == nil {
		return &StructuralError{Op: "setup", Parent: d.name, Err: ErrNilChild}
	}
	if d.hooks.setup != nil {
		return d.hooks.setup(ctx)
	}
	return nil
}

func (d *Decorator) Shutdown() {}

func (d *Decorator) Tick(visit VisitFunc) error {
	if d.decorated == nil {
		return &StructuralError{Op: "tick", Parent: d.name, Err: ErrNilChild}
	}
	if d.hooks.guard != nil {
		ok, err := d.hooks.guard()
		if err != nil {
			return err
		}
		if !ok {
			d.Stop(Failure)
			visit.visit(d.self)
			return nil
		}
	}
	if d.status != Running && d.hooks.initialise != nil {
		d.hooks.initialise()
	}
	if d.hooks.bypass == nil || !d.hooks.bypass() {
		d.ticking = true
		err := d.decorated.Tick(visit)
		d.ticking = false
		if err != nil {
			return err
		}
	}
	status, err := d.hooks.update(d)
	if err != nil {
		return err
	}
	if !status.valid() || status == Invalid {
		d.log().Error("update returned an invalid status", "status", status)
		status = Invalid
	}
	if status == Running {
		d.status = Running
	} else {
		d.Stop(status)
	}
	visit.visit(d.self)
	return nil
}

// Stop interrupts a running child before the decorator itself settles, so a
// resolved decorator never leaves its child running.
func (d *Decorator) Stop(status Status) {
	d.traceStop(status)
	if d.decorated != nil && d.decorated.Status() == Running {
		d.decorated.Stop(Invalid)
	}
	if d.hooks.terminate != nil {
		d.hooks.terminate(status)
	}
	d.status = status
}

func (d *Decorator) Tip() Behaviour {
	if d.status == Invalid {
		return nil
	}
	if d.decorated != nil && d.decorated.Status() != Invalid {
		return d.decorated.Tip()
	}
	return d.self
}
