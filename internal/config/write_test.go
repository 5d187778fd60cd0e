package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return path
}

func readConfig(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestSetKeyInFile(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name       string
		initial    string
		section    string
		key, value string
		want       string
	}{
		{
			name:  "new file",
			key:   "color",
			value: "never",
			want:  "color never\n",
		},
		{
			name:    "replace global",
			initial: "# mine\ncolor auto\nmax-ticks 3\n",
			key:     "color",
			value:   "always",
			want:    "# mine\ncolor always\nmax-ticks 3\n",
		},
		{
			name:    "add global before sections",
			initial: "color auto\n\n[blackboard]\nactivity-stream true\n",
			key:     "max-ticks",
			value:   "5",
			want:    "color auto\nmax-ticks 5\n\n[blackboard]\nactivity-stream true\n",
		},
		{
			name:    "global key inside a section is left alone",
			initial: "[blackboard]\ncolor auto\n",
			key:     "color",
			value:   "never",
			want:    "color never\n[blackboard]\ncolor auto\n",
		},
		{
			name:    "replace in section",
			initial: "color auto\n[blackboard]\nactivity-stream false\n",
			section: "blackboard",
			key:     "activity-stream",
			value:   "true",
			want:    "color auto\n[blackboard]\nactivity-stream true\n",
		},
		{
			name:    "add to section",
			initial: "[blackboard]\nactivity-stream true\n\n[other]\nx y\n",
			section: "blackboard",
			key:     "activity-stream-size",
			value:   "20",
			want:    "[blackboard]\nactivity-stream true\nactivity-stream-size 20\n\n[other]\nx y\n",
		},
		{
			name:    "new section",
			initial: "color auto\n",
			section: "blackboard",
			key:     "activity-stream",
			value:   "true",
			want:    "color auto\n\n[blackboard]\nactivity-stream true\n",
		},
		{
			name:    "empty value",
			initial: "color auto\n",
			key:     "color",
			want:    "color\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeConfig(t, tc.initial)
			require.NoError(t, SetKeyInFile(path, tc.section, tc.key, tc.value))
			assert.Equal(t, tc.want, readConfig(t, path))
		})
	}
}

func TestSetKeyInFile_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config")
	require.NoError(t, SetKeyInFile(path, "", KeyTickPeriod, "1s"))
	require.NoError(t, SetKeyInFile(path, SectionBlackboard, KeyActivityStream, "true"))

	c, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.False(t, c.HasWarnings(), c.Warnings)
	assert.Equal(t, "1s", c.Global[KeyTickPeriod])
	assert.Equal(t, "true", c.Sections[SectionBlackboard][KeyActivityStream])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"config", "config.lock"}, names)
}

func TestSetKeyInFile_Concurrent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config")
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			assert.NoError(t, SetKeyInFile(path, SectionBlackboard, fmt.Sprintf("key-%d", i), "x"))
		})
	}
	wg.Wait()

	c, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Len(t, c.Sections[SectionBlackboard], 8)
}
