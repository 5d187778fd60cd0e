package behaviours

import (
	"testing"

	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/joeycumines/treetick/internal/bt"
	"github.com/joeycumines/treetick/internal/expression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type battery struct {
	Percentage float64
	Charging   bool
}

func TestSetAndUnsetBlackboardVariable(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	set, err := NewSetBlackboardVariable("set", "mode", "patrol", false, WithStore(store))
	require.NoError(t, err)
	require.Len(t, set.Blackboards(), 1)

	assert.Equal(t, []bt.Status{bt.Success, bt.Failure}, tickN(t, set, 2))
	assert.Contains(t, set.FeedbackMessage(), "not overwriting")
	v, err := store.Get("/mode")
	require.NoError(t, err)
	assert.Equal(t, "patrol", v)

	overwrite, err := NewSetBlackboardVariable("overwrite", "mode", "dock", true, WithStore(store))
	require.NoError(t, err)
	assert.Equal(t, []bt.Status{bt.Success}, tickN(t, overwrite, 1))
	v, err = store.Get("/mode")
	require.NoError(t, err)
	assert.Equal(t, "dock", v)

	unset, err := NewUnsetBlackboardVariable("unset", "mode", WithStore(store))
	require.NoError(t, err)
	assert.Equal(t, []bt.Status{bt.Success, bt.Success}, tickN(t, unset, 2))
	assert.False(t, store.Exists("/mode"))
	assert.Contains(t, unset.FeedbackMessage(), "was not set")
}

func TestSetBlackboardVariable_ExclusiveConflict(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	require.NoError(t, store.NewClient("owner", "/").RegisterKey("mode", blackboard.ExclusiveWrite))

	_, err := NewSetBlackboardVariable("set", "mode", 1, true, WithStore(store))
	require.ErrorIs(t, err, blackboard.ErrExclusiveWriteConflict)
	_, err = NewUnsetBlackboardVariable("unset", "mode", WithStore(store))
	require.ErrorIs(t, err, blackboard.ErrExclusiveWriteConflict)
}

func TestCheckAndWaitForBlackboardVariable(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	check := NewCheckBlackboardVariableExists("check", "battery.Percentage", WithStore(store))
	wait := NewWaitForBlackboardVariable("wait", "battery.Percentage", WithStore(store))

	assert.Equal(t, []bt.Status{bt.Failure}, tickN(t, check, 1))
	assert.Equal(t, []bt.Status{bt.Running}, tickN(t, wait, 1))
	assert.Contains(t, wait.FeedbackMessage(), "waiting")

	require.NoError(t, store.Set("/battery", battery{Percentage: 80}))
	assert.Equal(t, []bt.Status{bt.Success}, tickN(t, check, 1))
	assert.Equal(t, []bt.Status{bt.Success}, tickN(t, wait, 1))

	missingPath := NewCheckBlackboardVariableExists("path", "battery.voltage", WithStore(store))
	assert.Equal(t, []bt.Status{bt.Failure}, tickN(t, missingPath, 1))
}

func TestCheckBlackboardVariableValue(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	low := expression.Comparison{Variable: "battery.Percentage", Operator: expression.Less, Value: 30}
	check := NewCheckBlackboardVariableValue("check", low, WithStore(store))
	wait := NewWaitForBlackboardVariableValue("wait", low, WithStore(store))

	assert.Equal(t, []bt.Status{bt.Failure}, tickN(t, check, 1))
	assert.Contains(t, check.FeedbackMessage(), "does not yet exist")
	assert.Equal(t, []bt.Status{bt.Running}, tickN(t, wait, 1))

	require.NoError(t, store.Set("/battery", battery{Percentage: 80}))
	assert.Equal(t, []bt.Status{bt.Failure}, tickN(t, check, 1))
	assert.Contains(t, check.FeedbackMessage(), "comparison failed")
	assert.Equal(t, []bt.Status{bt.Running}, tickN(t, wait, 1))

	require.NoError(t, store.Set("/battery.Percentage", 12.5))
	assert.Equal(t, []bt.Status{bt.Success}, tickN(t, check, 1))
	assert.Equal(t, []bt.Status{bt.Success}, tickN(t, wait, 1))

	incomparable := NewCheckBlackboardVariableValue("bad", expression.Comparison{Variable: "battery.Charging", Operator: expression.Less, Value: 1}, WithStore(store))
	require.Error(t, incomparable.Tick(nil))
}

func TestCheckBlackboardVariableValues(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	require.NoError(t, store.Set("/a", 1))
	require.NoError(t, store.Set("/b", 2))
	checks := []expression.Comparison{
		{Variable: "a", Operator: expression.Equal, Value: 1},
		{Variable: "b", Operator: expression.Equal, Value: 3},
		{Variable: "missing", Operator: expression.Equal, Value: 1},
	}

	for logic, want := range map[Logic]bt.Status{And: bt.Failure, Or: bt.Success, Xor: bt.Success} {
		l := NewCheckBlackboardVariableValues("values "+logic.String(), checks, logic, WithStore(store))
		assert.Equal(t, []bt.Status{want}, tickN(t, l, 1), logic.String())
	}

	parsed, err := ParseLogic(" XOR ")
	require.NoError(t, err)
	assert.Equal(t, Xor, parsed)
	_, err = ParseLogic("nand")
	require.Error(t, err)
	assert.Panics(t, func() { NewCheckBlackboardVariableValues("empty", nil, And, WithStore(store)) })
}

func TestBlackboardToStatus(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	l := NewBlackboardToStatus("reflect", "result", WithStore(store))
	require.ErrorIs(t, l.Tick(nil), blackboard.ErrKeyNotFound)

	require.NoError(t, store.Set("/result", bt.Running))
	assert.Equal(t, []bt.Status{bt.Running}, tickN(t, l, 1))

	require.NoError(t, store.Set("/result", "SUCCESS"))
	require.Error(t, l.Tick(nil))
}

func TestStatusRoundTripThroughBlackboard(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	writer, err := bt.NewStatusToBlackboardWithClient("write", NewStatusSequence("work", []bt.Status{bt.Running, bt.Failure}, bt.Invalid), "outcome", store.NewClient("write", "/"))
	require.NoError(t, err)
	reader := NewBlackboardToStatus("read", "outcome", WithStore(store))
	root := bt.NewSequence("root", false, bt.NewFailureIsSuccess("ignore", writer), reader)

	require.NoError(t, root.Tick(nil))
	assert.Equal(t, bt.Running, root.Status())
	require.NoError(t, root.Tick(nil))
	assert.Equal(t, bt.Failure, root.Status())
	assert.Equal(t, bt.Failure, reader.Status())
}

func TestWithNamespaceAndClient(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	require.NoError(t, store.Set("/robot/speed", 3))

	l := NewCheckBlackboardVariableExists("ns", "speed", WithStore(store), WithNamespace("/robot"))
	assert.Equal(t, []bt.Status{bt.Success}, tickN(t, l, 1))
	assert.Equal(t, "/robot", l.Blackboards()[0].Namespace())

	c := store.NewClient("shared", "/")
	l = NewCheckBlackboardVariableExists("shared", "robot/speed", WithClient(c))
	assert.Same(t, c, l.Blackboards()[0])
	assert.Equal(t, []bt.Status{bt.Success}, tickN(t, l, 1))
}
