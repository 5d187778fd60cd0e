package runner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/joeycumines/treetick/internal/behaviours"
	"github.com/joeycumines/treetick/internal/bt"
	"github.com/joeycumines/treetick/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T, children ...bt.Behaviour) *bt.BehaviourTree {
	t.Helper()
	tree, err := bt.NewBehaviourTree(bt.NewSequence("root", true, children...))
	require.NoError(t, err)
	return tree
}

func waitCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestRunner_MaxTicks(t *testing.T) {
	t.Parallel()

	r := New(context.Background())
	defer r.Stop()
	tree := newTree(t, behaviours.NewRunning("forever"))
	require.NoError(t, r.Add("forever", tree, Config{Period: time.Millisecond, MaxTicks: 5}))

	require.NoError(t, r.Wait(waitCtx(t)))
	res, ok := r.Result("forever")
	require.True(t, ok)
	assert.Equal(t, 5, res.Ticks)
	assert.True(t, res.Finished)
	assert.NoError(t, res.Err)
	assert.Equal(t, bt.Invalid, res.Status, "a tree still running when its ticker ends is interrupted")
	assert.Equal(t, 5, tree.Count())
}

func TestRunner_UntilResolved(t *testing.T) {
	t.Parallel()

	r := New(context.Background())
	defer r.Stop()
	require.NoError(t, r.Add("counter", newTree(t, behaviours.NewTickCounter("count", 3, bt.Success)), Config{Period: time.Millisecond, UntilResolved: true}))

	require.NoError(t, r.Wait(waitCtx(t)))
	results := r.Results()
	require.Len(t, results, 1)
	assert.Equal(t, Result{Name: "counter", Ticks: 4, Status: bt.Success, Finished: true}, results[0])
}

func TestRunner_ErrorStopsEveryTree(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	r := New(context.Background())
	defer r.Stop()

	require.NoError(t, r.Add("steady", newTree(t, behaviours.NewRunning("forever")), Config{Period: time.Millisecond}))
	require.NoError(t, r.Add("broken", newTree(t,
		behaviours.NewTickCounter("warmup", 2, bt.Success),
		bt.NewLeaf("explode", bt.UpdateFunc(func(*bt.Leaf) (bt.Status, error) { return bt.Invalid, boom })),
	), Config{Period: time.Millisecond}))

	err := r.Wait(waitCtx(t))
	require.ErrorIs(t, err, boom)

	broken, _ := r.Result("broken")
	assert.ErrorIs(t, broken.Err, boom)
	assert.Equal(t, 3, broken.Ticks)
	steady, _ := r.Result("steady")
	assert.True(t, steady.Finished)
}

func TestRunner_Stop(t *testing.T) {
	t.Parallel()

	r := New(context.Background())
	require.NoError(t, r.Add("forever", newTree(t, behaviours.NewRunning("forever")), Config{Period: time.Millisecond}))

	_, err := testutil.WaitFor(waitCtx(t), 5*time.Second, time.Millisecond,
		func() Result { res, _ := r.Result("forever"); return res },
		func(res Result) bool { return res.Ticks >= 3 })
	require.NoError(t, err)

	r.Stop()
	r.Stop()
	select {
	case <-r.Done():
	default:
		t.Fatal("done must be closed after stop")
	}
	res, _ := r.Result("forever")
	assert.True(t, res.Finished)
	assert.NoError(t, res.Err)
	assert.Equal(t, bt.Invalid, res.Status)

	require.ErrorIs(t, r.Add("late", newTree(t), Config{}), ErrStopped)
}

func TestRunner_DuplicateNameAndContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	r := New(ctx)
	defer r.Stop()

	require.NoError(t, r.Add("a", newTree(t, behaviours.NewRunning("x")), Config{Period: time.Millisecond}))
	require.ErrorIs(t, r.Add("a", newTree(t), Config{}), ErrDuplicateName)
	_, ok := r.Result("b")
	assert.False(t, ok)

	cancel()
	require.NoError(t, r.Wait(waitCtx(t)))
	res, _ := r.Result("a")
	assert.True(t, res.Finished)
}
