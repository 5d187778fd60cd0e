package bt

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	gobt "github.com/joeycumines/go-behaviortree"
)

// BehaviourTree is the custodian of a root behaviour: it drives ticks,
// runs visitors and handlers around them, and provides subtree surgery.
//
// Tick, Interrupt, Shutdown and the subtree methods are serialised. Tick
// handlers and visitors run inside Tick and must not call them.
type BehaviourTree struct {
	mu       sync.Mutex
	root     Behaviour
	count    atomic.Int64
	visitors []Visitor
	preTick  []func(t *BehaviourTree)
	postTick []func(t *BehaviourTree)
}

// NewBehaviourTree returns a tree rooted at root. The root must be detached
// and must not be a bare action.
func NewBehaviourTree(root Behaviour) (*BehaviourTree, error) {
	switch {
	case isNil(root):
		return nil, &StructuralError{Op: "new tree", Err: ErrNilChild}
	case root.Parent() != nil:
		return nil, &StructuralError{Op: "new tree", Parent: root.Name(), Err: ErrRootHasParent}
	}
	if _, ok := root.(*Leaf); ok {
		return nil, &StructuralError{Op: "new tree", Parent: root.Name(), Err: ErrActionAsRoot}
	}
	return &BehaviourTree{root: root}, nil
}

// Root returns the root behaviour.
func (t *BehaviourTree) Root() Behaviour { return t.root }

// Count returns the number of completed ticks.
func (t *BehaviourTree) Count() int { return int(t.count.Load()) }

// AddVisitor registers a visitor for subsequent ticks.
func (t *BehaviourTree) AddVisitor(v Visitor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visitors = append(t.visitors, v)
}

// AddPreTickHandler registers f to run before each tick.
func (t *BehaviourTree) AddPreTickHandler(f func(t *BehaviourTree)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.preTick = append(t.preTick, f)
}

// AddPostTickHandler registers f to run after each tick.
func (t *BehaviourTree) AddPostTickHandler(f func(t *BehaviourTree)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.postTick = append(t.postTick, f)
}

// Setup runs [SetupWithDescendants] on the root. A positive timeout bounds
// the whole setup.
func (t *BehaviourTree) Setup(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return SetupWithDescendants(ctx, t.root)
}

// Tick ticks the root once and returns its status.
func (t *BehaviourTree) Tick() (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, f := range t.preTick {
		f(t)
	}
	for _, v := range t.visitors {
		v.Initialise()
	}
	err := t.root.Tick(func(b Behaviour) {
		for _, v := range t.visitors {
			v.Run(b)
		}
	})
	for _, v := range t.visitors {
		v.Finalise()
	}
	if err != nil {
		return t.root.Status(), err
	}
	t.count.Add(1)
	for _, f := range t.postTick {
		f(t)
	}
	return t.root.Status(), nil
}

var errTickLimit = errors.New("tick limit reached")

// TickTock ticks the tree every period until ctx is done, a tick fails with
// an error, or iterations ticks have run (iterations <= 0 means no limit).
// Reaching the limit is not an error.
func (t *BehaviourTree) TickTock(ctx context.Context, period time.Duration, iterations int) error {
	remaining := iterations
	ticker := gobt.NewTicker(ctx, period, gobt.New(func([]gobt.Node) (gobt.Status, error) {
		status, err := t.Tick()
		if err != nil {
			return gobt.Failure, err
		}
		if iterations > 0 {
			remaining--
			if remaining <= 0 {
				return status.GoStatus(), errTickLimit
			}
		}
		return status.GoStatus(), nil
	}))
	<-ticker.Done()
	if err := ticker.Err(); err != nil && !errors.Is(err, errTickLimit) {
		return err
	}
	return nil
}

// Node adapts the tree to a go-behaviortree node, ticking the whole tree
// once per tick of the node. [Invalid] is reported as failure.
func (t *BehaviourTree) Node() gobt.Node {
	return gobt.New(func([]gobt.Node) (gobt.Status, error) {
		status, err := t.Tick()
		if err != nil {
			return gobt.Failure, err
		}
		return status.GoStatus(), nil
	})
}

// Tip returns the deepest behaviour active in the last tick.
func (t *BehaviourTree) Tip() Behaviour { return t.root.Tip() }

// Interrupt stops the root, and with it every running behaviour, with
// [Invalid].
func (t *BehaviourTree) Interrupt() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.root.Stop(Invalid)
}

// Shutdown runs Shutdown on every behaviour, children first.
func (t *BehaviourTree) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	ShutdownWithDescendants(t.root)
}

type childEditor interface {
	InsertChild(child Behaviour, index int) (uuid.UUID, error)
	RemoveChild(child Behaviour) (int, error)
	ReplaceChild(child, replacement Behaviour) error
}

func (t *BehaviourTree) editor(op string, id uuid.UUID) (childEditor, Behaviour, error) {
	b := Find(t.root, id)
	if b == nil {
		return nil, nil, &StructuralError{Op: op, Child: id.String(), Err: ErrBehaviourNotFound}
	}
	ed, ok := b.(childEditor)
	if !ok {
		return nil, b, &StructuralError{Op: op, Parent: b.Name(), Err: ErrNotComposite}
	}
	return ed, b, nil
}

// InsertSubtree inserts child under the composite with id parentID.
func (t *BehaviourTree) InsertSubtree(child Behaviour, parentID uuid.UUID, index int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	ed, _, err := t.editor("insert subtree", parentID)
	if err != nil {
		return err
	}
	_, err = ed.InsertChild(child, index)
	return err
}

// PruneSubtree detaches the behaviour with the given id from its parent.
func (t *BehaviourTree) PruneSubtree(id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.root.ID() == id {
		return &StructuralError{Op: "prune subtree", Parent: t.root.Name(), Err: ErrCannotPruneRoot}
	}
	b := Find(t.root, id)
	if b == nil {
		return &StructuralError{Op: "prune subtree", Child: id.String(), Err: ErrBehaviourNotFound}
	}
	ed, ok := b.Parent().(childEditor)
	if !ok {
		return &StructuralError{Op: "prune subtree", Parent: b.Parent().Name(), Child: b.Name(), Err: ErrNotComposite}
	}
	_, err := ed.RemoveChild(b)
	return err
}

// ReplaceSubtree puts subtree in place of the behaviour with the given id.
// The root itself cannot be replaced.
func (t *BehaviourTree) ReplaceSubtree(id uuid.UUID, subtree Behaviour) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.root.ID() == id {
		return &StructuralError{Op: "replace subtree", Parent: t.root.Name(), Err: ErrCannotPruneRoot}
	}
	b := Find(t.root, id)
	if b == nil {
		return &StructuralError{Op: "replace subtree", Child: id.String(), Err: ErrBehaviourNotFound}
	}
	ed, ok := b.Parent().(childEditor)
	if !ok {
		return &StructuralError{Op: "replace subtree", Parent: b.Parent().Name(), Child: b.Name(), Err: ErrNotComposite}
	}
	return ed.ReplaceChild(b, subtree)
}
