package blackboard

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStore_BasicOperations(t *testing.T) {
	t.Parallel()

	s := NewStore()
	require.Empty(t, s.Keys())
	require.Zero(t, s.Len())

	require.NoError(t, s.Set("/a", 1))
	require.NoError(t, s.Set("/b", map[string]any{"c": "d"}))
	require.Equal(t, []string{"/a", "/b"}, s.Keys())
	require.Equal(t, 2, s.Len())

	v, err := s.Get("/b.c")
	require.NoError(t, err)
	require.Equal(t, "d", v)

	_, err = s.Get("/b.x")
	require.ErrorIs(t, err, ErrNestedPathMissing)
	_, err = s.Get("/missing")
	require.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Set("/b.c", "e"))
	v, err = s.Get("/b.c")
	require.NoError(t, err)
	require.Equal(t, "e", v)
	require.ErrorIs(t, s.Set("/missing.x", 1), ErrKeyNotFound)

	require.True(t, s.Unset("/a"))
	require.False(t, s.Unset("/a"))
	require.False(t, s.Exists("/a"))
	require.Equal(t, map[string]any{"/b": map[string]any{"c": "e"}}, s.Snapshot())
}

func TestStore_KeysFilteredByRegex(t *testing.T) {
	t.Parallel()

	s := NewStore()
	for _, k := range []string{"/foo/a", "/foo/b", "/bar/a"} {
		require.NoError(t, s.Set(k, true))
	}

	require.NoError(t, s.NewClient("c", "/foo").RegisterKey("c", Read))

	keys, err := s.KeysFilteredByRegex("^/foo/")
	require.NoError(t, err)
	require.Equal(t, []string{"/foo/a", "/foo/b", "/foo/c"}, keys)
	require.Equal(t, []string{"/bar/a", "/foo/a", "/foo/b", "/foo/c"}, s.AllKeys())
	require.Equal(t, []string{"/bar/a", "/foo/a", "/foo/b"}, s.Keys())

	_, err = s.KeysFilteredByRegex("(")
	require.Error(t, err)
}

func TestStore_KeysFilteredByClients(t *testing.T) {
	t.Parallel()

	s := NewStore()
	a := s.NewClient("a", "/")
	b := s.NewClient("b", "/")
	require.NoError(t, a.RegisterKey("x", Read))
	require.NoError(t, a.RegisterKey("y", Write))
	require.NoError(t, b.RegisterKey("z", ExclusiveWrite))

	require.Equal(t, []string{"/x", "/y"}, s.KeysFilteredByClients(a.ID()))
	require.Equal(t, []string{"/x", "/y", "/z"}, s.KeysFilteredByClients(a.ID(), b.ID()))
	require.Empty(t, s.KeysFilteredByClients(uuid.New()))
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	s := NewStore()
	c := s.NewClient("c", "/")
	require.NoError(t, c.RegisterKey("k", Write))
	_, err := c.Set("k", 1, true)
	require.NoError(t, err)
	require.NoError(t, s.EnableActivityStream(10))

	s.Clear()
	require.Empty(t, s.Keys())
	require.Empty(t, s.Clients())
	require.Nil(t, s.ActivityStream())
	_, ok := s.Metadata("/k")
	require.False(t, ok)
}

func TestDefault(t *testing.T) {
	require.Same(t, Default(), Default())
	c := NewClient("default-store-client", "/")
	t.Cleanup(func() { c.Unregister(true) })
	require.Same(t, Default(), c.Store())
	require.Contains(t, Default().Clients(), c.ID())
}
