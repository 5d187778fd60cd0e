package behaviours

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/joeycumines/treetick/internal/bt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countdown = `
var started = 0;
function initialise(bb) { started++; bb.set("started", started); }
function tick(bb) {
	var n = bb.get("remaining");
	if (n <= 0) { bb.feedback("done"); return "success"; }
	bb.set("remaining", n - 1);
	bb.feedback("remaining " + (n - 1));
	return "running";
}
function terminate(bb, status) { bb.set("last", status); }
`

func TestScript(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	require.NoError(t, store.Set("/remaining", 2))
	l, err := NewScript("countdown", countdown, ScriptAccess{Write: []string{"remaining", "started", "last"}}, WithStore(store))
	require.NoError(t, err)

	assert.Equal(t, []bt.Status{bt.Running, bt.Running, bt.Success}, tickN(t, l, 3))
	assert.Equal(t, "done", l.FeedbackMessage())

	started, err := store.Get("/started")
	require.NoError(t, err)
	assert.EqualValues(t, 1, started)
	last, err := store.Get("/last")
	require.NoError(t, err)
	assert.Equal(t, "success", last)
}

func TestScript_Errors(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()

	_, err := NewScript("syntax", "function tick( {", ScriptAccess{}, WithStore(store))
	require.Error(t, err)

	_, err = NewScript("no tick", "var x = 1;", ScriptAccess{}, WithStore(store))
	require.ErrorIs(t, err, ErrNoTickFunction)

	denied, err := NewScript("denied", `function tick(bb) { bb.set("secret", 1); return "success"; }`, ScriptAccess{}, WithStore(store))
	require.NoError(t, err)
	err = denied.Tick(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

	odd, err := NewScript("odd", `function tick() { return 42; }`, ScriptAccess{}, WithStore(store))
	require.NoError(t, err)
	assert.Equal(t, []bt.Status{bt.Failure}, tickN(t, odd, 1))
	assert.Contains(t, odd.FeedbackMessage(), "42")

	require.NoError(t, store.NewClient("owner", "/").RegisterKey("k", blackboard.ExclusiveWrite))
	_, err = NewScript("conflict", `function tick() { return "success"; }`, ScriptAccess{Write: []string{"k"}}, WithStore(store))
	require.ErrorIs(t, err, blackboard.ErrExclusiveWriteConflict)
}

func TestScript_Reads(t *testing.T) {
	t.Parallel()

	store := blackboard.NewStore()
	l, err := NewScript("reader", `function tick(bb) { return bb.exists("battery.Percentage") && bb.get("battery.Percentage") > 50 ? "success" : "failure"; }`,
		ScriptAccess{Read: []string{"battery"}}, WithStore(store))
	require.NoError(t, err)

	assert.Equal(t, []bt.Status{bt.Failure}, tickN(t, l, 1))
	require.NoError(t, store.Set("/battery", battery{Percentage: 75}))
	assert.Equal(t, []bt.Status{bt.Success}, tickN(t, l, 1))
}

func TestScript_Require(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "threshold.js"), []byte(`exports.min = 10;`), 0o644))

	store := blackboard.NewStore()
	l, err := NewScript("thresholds", `
var s = require("treetick:status");
var threshold = require("./threshold.js");
function tick(bb) { return bb.get("level") >= threshold.min ? s.success : s.failure; }
`, ScriptAccess{Read: []string{"level"}}, WithStore(store), WithModuleDir(dir))
	require.NoError(t, err)

	require.NoError(t, store.Set("/level", 3))
	assert.Equal(t, []bt.Status{bt.Failure}, tickN(t, l, 1))
	require.NoError(t, store.Set("/level", 12))
	assert.Equal(t, []bt.Status{bt.Success}, tickN(t, l, 1))

	_, err = NewScript("missing", `var m = require("./missing.js"); function tick() { return "success"; }`,
		ScriptAccess{}, WithStore(store), WithModuleDir(dir))
	require.Error(t, err)
}
