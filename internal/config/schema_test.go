package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema_RegisterReplaces(t *testing.T) {
	t.Parallel()

	s := NewSchema()
	s.Register(
		Option{Key: "a", Default: "1"},
		Option{Key: "a", Section: "x", Default: "2"},
		Option{Key: "a", Default: "3"},
	)
	opt, ok := s.Lookup("", "a")
	require.True(t, ok)
	assert.Equal(t, "3", opt.Default)
	assert.Len(t, s.Options(""), 1)
	assert.Equal(t, []string{"x"}, s.Sections())

	_, ok = s.Lookup("y", "a")
	assert.False(t, ok)
}

func TestSchema_Resolve(t *testing.T) {
	s := NewSchema()
	s.Register(
		Option{Key: "level", Default: "info", EnvVar: "TREETICK_TEST_LEVEL"},
		Option{Key: "size", Section: "bb", Default: "10"},
	)
	c := NewConfig()

	assert.Equal(t, "info", s.Resolve(c, "", "level"))
	assert.Equal(t, "10", s.Resolve(nil, "bb", "size"))
	assert.Equal(t, "", s.Resolve(c, "", "unknown"))

	c.SetGlobalOption("level", "debug")
	c.SetGlobalOption("size", "99")
	assert.Equal(t, "debug", s.Resolve(c, "", "level"))
	// section options do not fall back to globals
	assert.Equal(t, "10", s.Resolve(c, "bb", "size"))

	t.Setenv("TREETICK_TEST_LEVEL", "error")
	assert.Equal(t, "error", s.Resolve(c, "", "level"))
}

func TestOption_Check(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		opt   Option
		value string
		ok    bool
	}{
		{Option{Type: TypeString}, "anything", true},
		{Option{}, "anything", true},
		{Option{Type: TypeBool}, "off", true},
		{Option{Type: TypeBool}, "", true},
		{Option{Type: TypeBool}, "maybe", false},
		{Option{Type: TypeInt}, "-4", true},
		{Option{Type: TypeInt}, "4.5", false},
		{Option{Type: TypeDuration}, "1m30s", true},
		{Option{Type: TypeDuration}, "90", false},
		{Option{Type: TypeEnum, Values: []string{"a", "b"}}, "B", true},
		{Option{Type: TypeEnum, Values: []string{"a", "b"}}, "c", false},
		{Option{Type: "complex"}, "1i", false},
	} {
		err := tc.opt.check(tc.value)
		if tc.ok {
			assert.NoError(t, err, "%s %q", tc.opt.Type, tc.value)
		} else {
			assert.Error(t, err, "%s %q", tc.opt.Type, tc.value)
		}
	}
}

func TestSchema_FormatHelp(t *testing.T) {
	t.Parallel()

	help := DefaultSchema().FormatHelp()
	assert.Contains(t, help, "Global Options:\n")
	assert.Contains(t, help, "tick-period")
	assert.Contains(t, help, "type: duration, default: 500ms, env: TREETICK_TICK_PERIOD")
	assert.Contains(t, help, "one of: auto, always, never")
	assert.Contains(t, help, "\n[blackboard] Options:\n")
	assert.Less(t, strings.Index(help, "log-level"), strings.Index(help, "activity-stream"))
}
