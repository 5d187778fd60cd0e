package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patrolTree = `
name: patrol
blackboard:
  battery: {percentage: 80}
root:
  type: selector
  name: Tasks
  memory: false
  children:
    - type: eternal_guard
      name: Battery Low?
      expression: level < 30
      bindings: {level: battery.percentage}
      child: {type: running, name: Flash LEDs}
    - type: running
      name: Idle
`

// These tests are not parallel: each invocation replaces the package logger
// of bt.

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TREETICK_CONFIG", "TREETICK_LOG_LEVEL", "TREETICK_TICK_PERIOD", "TREETICK_COLOR"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// invoke runs the CLI against a private config file.
func invoke(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)
	if configPath == "" {
		configPath = filepath.Join(t.TempDir(), "config")
	}
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), append([]string{"--config", configPath}, args...), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := invoke(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "treetick dev\n", out)
}

func TestNoArgs_ShowsHelp(t *testing.T) {
	out, _, err := invoke(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "validate")
}

func TestValidate(t *testing.T) {
	good := writeFile(t, "good.yaml", patrolTree)
	bad := writeFile(t, "bad.yaml", "root: {type: sequence, children: [{type: teleport}]}\n")

	out, _, err := invoke(t, "", "validate", good)
	require.NoError(t, err)
	assert.Equal(t, good+": ok\n", out)

	out, _, err = invoke(t, "", "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files invalid")
	assert.Contains(t, out, good+": ok\n")
	assert.Contains(t, out, bad+": treespec: root.children[0] (teleport)")
}

func TestShow(t *testing.T) {
	path := writeFile(t, "patrol.yaml", patrolTree)

	out, _, err := invoke(t, "", "--color", "never", "show", "--ascii", "--blackboard", path)
	require.NoError(t, err)
	assert.Contains(t, out, "[o] Tasks [INVALID]\n")
	assert.Contains(t, out, "    -^- Battery Low? [INVALID]\n")
	assert.Contains(t, out, "        --> Flash LEDs [INVALID]\n")
	assert.Contains(t, out, "Blackboard Data\n")
	assert.Contains(t, out, "/battery")
	assert.NotContains(t, out, "\x1b[")
}

func TestShow_Missing(t *testing.T) {
	_, _, err := invoke(t, "", "show", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_MaxTicks(t *testing.T) {
	path := writeFile(t, "patrol.yaml", patrolTree)

	out, _, err := invoke(t, "", "--color", "never", "run", "--period", "1ms", "--max-ticks", "3", path)
	require.NoError(t, err)
	assert.Contains(t, out, "--------- patrol: tick 1 ---------")
	assert.Contains(t, out, "Idle [RUNNING]")
	// nothing changes after the first tick
	assert.NotContains(t, out, "tick 2")
	assert.Contains(t, out, "patrol: ")
	assert.Contains(t, out, " after 3 ticks\n")
}

func TestRun_UntilResolved_SharedBlackboard(t *testing.T) {
	writer := writeFile(t, "writer.yaml", `
name: writer
root:
  type: sequence
  children:
    - {type: set_blackboard_variable, variable: flag, value: true}
`)
	reader := writeFile(t, "reader.yaml", `
name: reader
root:
  type: sequence
  children:
    - {type: wait_for_blackboard_variable, variable: flag}
    - {type: success, name: Done}
`)

	out, _, err := invoke(t, "", "--color", "never", "run", "-q", "--period", "1ms", "--until-resolved", reader, writer)
	require.NoError(t, err)
	assert.NotContains(t, out, "---------")
	assert.Contains(t, out, "writer: SUCCESS after 1 ticks\n")
	assert.Contains(t, out, "reader: SUCCESS after ")
}

func TestRun_Activity(t *testing.T) {
	path := writeFile(t, "writer.yaml", `
name: writer
root:
  type: sequence
  children:
    - {type: set_blackboard_variable, name: Set, variable: flag, value: on}
`)

	out, _, err := invoke(t, "", "--color", "never", "run", "--ascii", "--activity", "--blackboard", "--max-ticks", "1", "--period", "1ms", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Blackboard Activity Stream\n")
	assert.Contains(t, out, "/flag : INITIALISED   | Set")
	assert.Contains(t, out, "Blackboard Data\n")
}

func TestRun_RequiresLimit(t *testing.T) {
	path := writeFile(t, "patrol.yaml", patrolTree)
	_, _, err := invoke(t, "", "run", path)
	assert.ErrorContains(t, err, "refusing to run forever")
}

func TestRun_MaxTicksFromConfig(t *testing.T) {
	cfg := writeFile(t, "config", "max-ticks 2\ntick-period 1ms\ncolor never\n")
	path := writeFile(t, "patrol.yaml", patrolTree)

	out, _, err := invoke(t, cfg, "run", "-q", path)
	require.NoError(t, err)
	assert.Contains(t, out, " after 2 ticks\n")
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := writeFile(t, "config", "tick-period soon\n")
	path := writeFile(t, "patrol.yaml", patrolTree)

	_, _, err := invoke(t, cfg, "run", "--max-ticks", "1", path)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config")

	out, _, err := invoke(t, cfg, "config", "set", "max-ticks", "10")
	require.NoError(t, err)
	assert.Equal(t, "Set max-ticks in "+cfg+"\n", out)
	_, _, err = invoke(t, cfg, "config", "set", "blackboard.activity-stream")
	require.NoError(t, err)

	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "max-ticks 10\n\n[blackboard]\nactivity-stream\n", string(data))

	out, _, err = invoke(t, cfg, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "Config file: "+cfg+"\n")
	assert.Contains(t, out, "Global Options:\n")
	var lines []string
	for line := range strings.SplitSeq(out, "\n") {
		if strings.HasPrefix(line, "  max-ticks ") || strings.HasPrefix(line, "  blackboard.") {
			lines = append(lines, strings.Join(strings.Fields(line), " "))
		}
	}
	assert.Contains(t, lines, "max-ticks 10")
	assert.Contains(t, lines, "blackboard.activity-stream")
	assert.Contains(t, lines, "blackboard.activity-stream-size 500")
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config")

	_, _, err := invoke(t, cfg, "config", "set", "tick-period", "soon")
	assert.ErrorContains(t, err, `expected duration, got "soon"`)
	_, _, err = invoke(t, cfg, "config", "set", "colour", "never")
	assert.ErrorContains(t, err, `unknown global option: "colour"`)
	_, err = os.Stat(cfg)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_FixesBrokenFile(t *testing.T) {
	cfg := writeFile(t, "config", "tick-period soon\n")

	_, _, err := invoke(t, cfg, "config", "set", "tick-period", "1s")
	require.NoError(t, err)
	data, err := os.ReadFile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "tick-period 1s\n", string(data))
}
