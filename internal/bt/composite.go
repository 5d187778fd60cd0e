package bt

import (
	"context"
	"slices"

	"github.com/google/uuid"
)

// Composite holds the ordered children shared by [Sequence], [Selector]
// and [Parallel], and tracks the child that was active after the last tick.
type Composite struct {
	node
	children []Behaviour
	current  Behaviour
	ticking  bool
}

// Children returns a copy of the children in tick order.
func (c *Composite) Children() []Behaviour {
	return slices.Clone(c.children)
}

// CurrentChild is the child active after the last tick, or nil.
func (c *Composite) CurrentChild() Behaviour { return c.current }

func (c *Composite) Setup(context.Context) error { return nil }

func (c *Composite) Shutdown() {}

// Stop with [Invalid] forgets the current child and interrupts any running
// children. Children that already resolved keep their status.
func (c *Composite) Stop(status Status) {
	c.traceStop(status)
	if status == Invalid {
		c.current = nil
		for _, child := range c.children {
			if child.Status() == Running {
				child.Stop(Invalid)
			}
		}
	}
	c.status = status
}

// Tip delegates to the current child.
func (c *Composite) Tip() Behaviour {
	if c.status == Invalid {
		return nil
	}
	if c.current != nil {
		return c.current.Tip()
	}
	return c.self
}

func (c *Composite) indexOf(child Behaviour) int {
	if child == nil {
		return -1
	}
	return slices.Index(c.children, child)
}

func (c *Composite) tickChild(child Behaviour, visit VisitFunc) error {
	c.ticking = true
	defer func() { c.ticking = false }()
	return child.Tick(visit)
}

func (c *Composite) structuralError(op string, child Behaviour, err error) error {
	return &StructuralError{Op: op, Parent: c.name, Child: nameOf(child), Err: err}
}

func (c *Composite) validateNewChild(op string, child Behaviour) error {
	if c.ticking {
		return c.structuralError(op, child, ErrMidTraversal)
	}
	if isNil(child) {
		return c.structuralError(op, nil, ErrNilChild)
	}
	if child.Parent() != nil {
		return c.structuralError(op, child, ErrAlreadyParented)
	}
	for a := c.self; a != nil; a = a.Parent() {
		if a == child {
			return c.structuralError(op, child, ErrCycle)
		}
	}
	return nil
}

// AddChild appends child, returning its id.
func (c *Composite) AddChild(child Behaviour) (uuid.UUID, error) {
	return c.InsertChild(child, len(c.children))
}

// AddChildren appends each child in order, stopping at the first error.
func (c *Composite) AddChildren(children ...Behaviour) error {
	for _, child := range children {
		if _, err := c.AddChild(child); err != nil {
			return err
		}
	}
	return nil
}

// PrependChild inserts child as the first (highest priority) child.
func (c *Composite) PrependChild(child Behaviour) (uuid.UUID, error) {
	return c.InsertChild(child, 0)
}

// InsertChild inserts child at index, which may equal the number of
// children.
func (c *Composite) InsertChild(child Behaviour, index int) (uuid.UUID, error) {
	if err := c.validateNewChild("insert child", child); err != nil {
		return uuid.Nil, err
	}
	if index < 0 || index > len(c.children) {
		return uuid.Nil, c.structuralError("insert child", child, ErrIndexOutOfRange)
	}
	child.core().parent = c.self
	c.children = slices.Insert(c.children, index, child)
	return child.ID(), nil
}

// RemoveChild detaches child, interrupting it if running, and returns the
// index it occupied.
func (c *Composite) RemoveChild(child Behaviour) (int, error) {
	if c.ticking {
		return -1, c.structuralError("remove child", child, ErrMidTraversal)
	}
	index := c.indexOf(child)
	if index < 0 {
		return -1, c.structuralError("remove child", child, ErrChildNotFound)
	}
	c.detach(index)
	return index, nil
}

// RemoveChildByID detaches the child with the given id.
func (c *Composite) RemoveChildByID(id uuid.UUID) error {
	for _, child := range c.children {
		if child.ID() == id {
			_, err := c.RemoveChild(child)
			return err
		}
	}
	return &StructuralError{Op: "remove child", Parent: c.name, Child: id.String(), Err: ErrChildNotFound}
}

// RemoveAllChildren detaches every child.
func (c *Composite) RemoveAllChildren() error {
	if c.ticking {
		return c.structuralError("remove children", nil, ErrMidTraversal)
	}
	for len(c.children) > 0 {
		c.detach(len(c.children) - 1)
	}
	c.current = nil
	return nil
}

// ReplaceChild puts replacement in the position of child. The replacement is
// validated before the tree is touched.
func (c *Composite) ReplaceChild(child, replacement Behaviour) error {
	if err := c.validateNewChild("replace child", replacement); err != nil {
		return err
	}
	index := c.indexOf(child)
	if index < 0 {
		return c.structuralError("replace child", child, ErrChildNotFound)
	}
	c.detach(index)
	replacement.core().parent = c.self
	c.children = slices.Insert(c.children, index, replacement)
	return nil
}

func (c *Composite) detach(index int) {
	child := c.children[index]
	if c.current == child {
		c.current = nil
	}
	if child.Status() == Running {
		child.Stop(Invalid)
	}
	child.core().parent = nil
	c.children = slices.Delete(c.children, index, index+1)
}

func mustAddChildren(c *Composite, children []Behaviour) {
	if err := c.AddChildren(children...); err != nil {
		panic(err)
	}
}
