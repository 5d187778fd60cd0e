package bt

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	gobt "github.com/joeycumines/go-behaviortree"
	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBehaviourTree_RootValidation(t *testing.T) {
	t.Parallel()

	action, _ := leaf("action", Success)
	_, err := NewBehaviourTree(action)
	require.ErrorIs(t, err, ErrActionAsRoot)

	child, _ := leaf("child", Success)
	inner := NewInverter("inner", child)
	NewSequence("outer", true, inner)
	_, err = NewBehaviourTree(inner)
	require.ErrorIs(t, err, ErrRootHasParent)

	_, err = NewBehaviourTree(nil)
	require.ErrorIs(t, err, ErrNilChild)
}

func TestBehaviourTree_TickRunsHandlersAndVisitors(t *testing.T) {
	t.Parallel()

	a, _ := leaf("a", Success)
	b, _ := leaf("b", Running, Success)
	tree, err := NewBehaviourTree(NewSequence("root", true, a, b))
	require.NoError(t, err)

	var events []string
	tree.AddPreTickHandler(func(tr *BehaviourTree) {
		events = append(events, "pre")
		assert.Same(t, tree, tr)
	})
	tree.AddPostTickHandler(func(tr *BehaviourTree) {
		events = append(events, "post")
	})
	var visited []string
	tree.AddVisitor(visitorFunc(func(b Behaviour) { visited = append(visited, b.Name()) }))

	status, err := tree.Tick()
	require.NoError(t, err)
	assert.Equal(t, Running, status)
	assert.Equal(t, 1, tree.Count())
	assert.Equal(t, []string{"pre", "post"}, events)
	assert.Equal(t, []string{"a", "b", "root"}, visited)
	assert.Same(t, b, tree.Tip())

	status, err = tree.Tick()
	require.NoError(t, err)
	assert.Equal(t, Success, status)
	assert.Equal(t, 2, tree.Count())
	assert.Equal(t, []string{"a", "b", "root", "b", "root"}, visited)
}

type visitorFunc func(b Behaviour)

func (visitorFunc) Initialise() {}
func (f visitorFunc) Run(b Behaviour) { f(b) }
func (visitorFunc) Finalise() {}

func TestBehaviourTree_TickErrorSkipsCount(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tree, err := NewBehaviourTree(NewSequence("root", true,
		NewLeaf("broken", UpdateFunc(func(*Leaf) (Status, error) { return Invalid, boom })),
	))
	require.NoError(t, err)

	post := 0
	tree.AddPostTickHandler(func(*BehaviourTree) { post++ })
	_, err = tree.Tick()
	require.ErrorIs(t, err, boom)
	assert.Zero(t, tree.Count())
	assert.Zero(t, post)
}

func TestBehaviourTree_InterruptAndShutdown(t *testing.T) {
	t.Parallel()

	done, _ := leaf("done", Success)
	busy, bs := leaf("busy", Running)
	shut := &shutdownCounter{}
	tree, err := NewBehaviourTree(NewSequence("root", true, done, busy, NewLeaf("idle", shut)))
	require.NoError(t, err)

	_, err = tree.Tick()
	require.NoError(t, err)
	require.Len(t, RunningPath(tree.Root()), 2)

	tree.Interrupt()
	assert.Equal(t, Invalid, tree.Root().Status())
	assert.Equal(t, Invalid, busy.Status())
	assert.Equal(t, Success, done.Status())
	assert.Equal(t, []Status{Invalid}, bs.terminated)
	assert.Nil(t, tree.Tip())
	assert.Empty(t, RunningPath(tree.Root()))

	tree.Shutdown()
	assert.Equal(t, 1, shut.shutdowns)
}

type shutdownCounter struct {
	shutdowns int
	setups    int
	setupErr  error
}

func (s *shutdownCounter) Update(*Leaf) (Status, error) { return Success, nil }

func (s *shutdownCounter) Setup(context.Context, *Leaf) error {
	s.setups++
	return s.setupErr
}

func (s *shutdownCounter) Shutdown(*Leaf) { s.shutdowns++ }

func TestBehaviourTree_Setup(t *testing.T) {
	t.Parallel()

	ok := &shutdownCounter{}
	broken := &shutdownCounter{setupErr: errors.New("no hardware")}
	tree, err := NewBehaviourTree(NewSequence("root", true, NewLeaf("ok", ok), NewLeaf("broken", broken)))
	require.NoError(t, err)

	err = tree.Setup(context.Background(), time.Second)
	require.ErrorIs(t, err, broken.setupErr)
	assert.Contains(t, err.Error(), `"broken"`)
	assert.Equal(t, 1, ok.setups)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, tree.Setup(ctx, 0), context.Canceled)
	assert.Equal(t, 1, ok.setups)
}

func TestBehaviourTree_SubtreeSurgery(t *testing.T) {
	t.Parallel()

	a, _ := leaf("a", Success)
	root := NewSequence("root", true, a)
	tree, err := NewBehaviourTree(root)
	require.NoError(t, err)

	b, _ := leaf("b", Success)
	require.NoError(t, tree.InsertSubtree(b, root.ID(), 1))
	assert.Equal(t, []Behaviour{a, b}, root.Children())

	c, _ := leaf("c", Success)
	require.ErrorIs(t, tree.InsertSubtree(c, a.ID(), 0), ErrNotComposite)
	require.ErrorIs(t, tree.InsertSubtree(c, uuid.New(), 0), ErrBehaviourNotFound)

	require.NoError(t, tree.ReplaceSubtree(b.ID(), c))
	assert.Equal(t, []Behaviour{a, c}, root.Children())
	assert.Nil(t, b.Parent())

	require.NoError(t, tree.PruneSubtree(a.ID()))
	assert.Equal(t, []Behaviour{c}, root.Children())

	require.ErrorIs(t, tree.PruneSubtree(root.ID()), ErrCannotPruneRoot)
	require.ErrorIs(t, tree.ReplaceSubtree(root.ID(), b), ErrCannotPruneRoot)
	require.ErrorIs(t, tree.PruneSubtree(a.ID()), ErrBehaviourNotFound)

	d, _ := leaf("d", Success)
	inv := NewInverter("inv", d)
	require.NoError(t, tree.InsertSubtree(inv, root.ID(), 0))
	require.ErrorIs(t, tree.PruneSubtree(d.ID()), ErrNotComposite)
}

func TestBehaviourTree_TickTock(t *testing.T) {
	t.Parallel()

	tree, err := NewBehaviourTree(NewSequence("root", false, NewLeaf("forever", StatusFunc(func(*Leaf) Status { return Running }))))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, tree.TickTock(ctx, time.Millisecond, 3))
	assert.Equal(t, 3, tree.Count())
}

func TestBehaviourTree_Node(t *testing.T) {
	t.Parallel()

	b, _ := leaf("b", Running, Success)
	tree, err := NewBehaviourTree(NewSequence("root", true, b))
	require.NoError(t, err)
	node := tree.Node()

	status, err := node.Tick()
	require.NoError(t, err)
	assert.Equal(t, gobt.Running, status)
	status, err = node.Tick()
	require.NoError(t, err)
	assert.Equal(t, gobt.Success, status)
}

func TestNodeLeaf(t *testing.T) {
	t.Parallel()

	var ticks int
	node := gobt.New(gobt.Sequence,
		gobt.New(func([]gobt.Node) (gobt.Status, error) {
			ticks++
			return gobt.Success, nil
		}),
	)
	seq := NewSequence("root", true, NewNodeLeaf("wrapped", node))
	require.NoError(t, seq.Tick(nil))
	assert.Equal(t, Success, seq.Status())
	assert.Equal(t, 1, ticks)

	boom := errors.New("boom")
	failing := NewNodeLeaf("failing", gobt.New(func([]gobt.Node) (gobt.Status, error) { return gobt.Failure, boom }))
	require.ErrorIs(t, failing.Tick(nil), boom)
}

func TestSnapshotVisitor(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	client := store.NewClient("reader", "/")
	require.NoError(t, client.RegisterKey("speed", blackboard.Read))

	a, _ := leaf("a", Success)
	a.AttachBlackboardClient(client)
	b, _ := leaf("b", Running)
	tree, err := NewBehaviourTree(NewSequence("root", false, a, b))
	require.NoError(t, err)
	snap := NewSnapshotVisitor()
	tree.AddVisitor(snap)

	_, err = tree.Tick()
	require.NoError(t, err)
	assert.True(t, snap.Changed)
	assert.Len(t, snap.Visited, 3)
	assert.Equal(t, Running, snap.Visited[b.ID()])
	assert.Contains(t, snap.VisitedBlackboardKeys, "/speed")
	assert.Contains(t, snap.VisitedBlackboardClients, client.ID())

	_, err = tree.Tick()
	require.NoError(t, err)
	assert.False(t, snap.Changed)
	assert.Equal(t, snap.Visited, snap.PreviouslyVisited)
}

func TestDebugVisitor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	v := &DebugVisitor{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	a, _ := leaf("a", Success)
	tree, err := NewBehaviourTree(NewSequence("root", true, a))
	require.NoError(t, err)
	tree.AddVisitor(v)

	_, err = tree.Tick()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "behaviour=a")
	assert.Contains(t, buf.String(), "status=SUCCESS")
}

func TestIterate(t *testing.T) {
	t.Parallel()

	a, _ := leaf("a", Success)
	b, _ := leaf("b", Success)
	inv := NewInverter("inv", b)
	root := NewSelector("root", false, a, inv)

	var names []string
	for b := range Iterate(root) {
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"a", "b", "inv", "root"}, names)
	assert.Same(t, inv, Find(root, inv.ID()))
	assert.Nil(t, Find(root, uuid.New()))

	var first Behaviour
	for b := range Iterate(root) {
		first = b
		break
	}
	assert.Same(t, a, first)
}
