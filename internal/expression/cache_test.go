package expression

import (
	"testing"

	"github.com/expr-lang/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := NewCache(2)
	a, err := expr.Compile("1")
	require.NoError(t, err)
	b, err := expr.Compile("2")
	require.NoError(t, err)

	c.Put("a", a)
	c.Put("b", b)
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Put("c", a)
	assert.Equal(t, 2, c.Len())
	_, ok = c.Get("b")
	assert.False(t, ok, "b was least recently used")
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)

	c.Put("a", b)
	got, _ = c.Get("a")
	assert.Same(t, b, got)

	size, hits, misses, ratio := c.Stats()
	assert.Equal(t, 2, size)
	assert.Equal(t, int64(3), hits)
	assert.Equal(t, int64(1), misses)
	assert.InDelta(t, 0.75, ratio, 1e-9)
	assert.Contains(t, c.String(), "hits=3")

	c.Resize(0)
	assert.Equal(t, 1, c.Len())
	c.Clear()
	assert.Zero(t, c.Len())
}

func TestNewCache_DefaultSize(t *testing.T) {
	t.Parallel()

	c := NewCache(0)
	assert.Equal(t, DefaultCacheSize, c.maxSize)
}

func TestCompile_UsesCache(t *testing.T) {
	t.Parallel()

	first, err := CompileCondition("cache_probe_unique_name > 1")
	require.NoError(t, err)
	second, err := CompileCondition("cache_probe_unique_name > 1")
	require.NoError(t, err)
	assert.Same(t, first, second)

	value, err := Compile("cache_probe_unique_name > 1")
	require.NoError(t, err)
	assert.NotSame(t, first, value)
}
