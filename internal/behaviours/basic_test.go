package behaviours

import (
	"testing"

	"github.com/joeycumines/treetick/internal/bt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tickN(t *testing.T, b bt.Behaviour, n int) []bt.Status {
	t.Helper()
	out := make([]bt.Status, n)
	for i := range out {
		require.NoError(t, b.Tick(nil))
		out[i] = b.Status()
	}
	return out
}

func TestConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []bt.Status{bt.Success, bt.Success}, tickN(t, NewSuccess("s"), 2))
	assert.Equal(t, []bt.Status{bt.Failure}, tickN(t, NewFailure("f"), 1))
	assert.Equal(t, []bt.Status{bt.Running, bt.Running}, tickN(t, NewRunning("r"), 2))

	d := NewDummy("d")
	assert.Equal(t, []bt.Status{bt.Success}, tickN(t, d, 1))
	assert.Equal(t, "dummy", d.FeedbackMessage())
}

func TestPeriodic(t *testing.T) {
	t.Parallel()

	got := tickN(t, NewPeriodic("p", 2), 9)
	assert.Equal(t, []bt.Status{
		bt.Running, bt.Running,
		bt.Success, bt.Success, bt.Success,
		bt.Failure, bt.Failure, bt.Failure,
		bt.Running,
	}, got)
}

func TestSuccessEveryN(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]bt.Status{bt.Failure, bt.Failure, bt.Success, bt.Failure, bt.Failure, bt.Success},
		tickN(t, NewSuccessEveryN("n", 3), 6))
	assert.Panics(t, func() { NewSuccessEveryN("n", 0) })
}

func TestStatusSequence(t *testing.T) {
	t.Parallel()

	seq := []bt.Status{bt.Running, bt.Success}
	assert.Equal(t,
		[]bt.Status{bt.Running, bt.Success, bt.Failure, bt.Failure},
		tickN(t, NewStatusSequence("eventually", seq, bt.Failure), 4))
	assert.Equal(t,
		[]bt.Status{bt.Running, bt.Success, bt.Running, bt.Success},
		tickN(t, NewStatusSequence("cycle", seq, bt.Invalid), 4))
	assert.Panics(t, func() { NewStatusSequence("empty", nil, bt.Invalid) })
}

func TestTickCounter(t *testing.T) {
	t.Parallel()

	l := NewTickCounter("count", 2, bt.Failure)
	assert.Equal(t, []bt.Status{bt.Running, bt.Running, bt.Failure, bt.Running}, tickN(t, l, 4))
	assert.Equal(t, 1, l.Impl().(*TickCounter).Counter())
	assert.Equal(t, "1/2", l.FeedbackMessage())
}
