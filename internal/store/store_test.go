package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetSetDeleteRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.Get(ctx, "soundboard-theme")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "soundboard-theme", "light"))
	require.NoError(t, s.Set(ctx, "soundboard-theme", "dark"))
	value, ok, err := s.Get(ctx, "soundboard-theme")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "dark", value)

	require.NoError(t, s.Delete(ctx, "soundboard-theme", "never-set"))
	_, ok, err = s.Get(ctx, "soundboard-theme")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSetManyAndKeys(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SetMany(ctx, map[string]string{
		"b": "2",
		"a": "1",
	}))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, s.Clear(ctx))
	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Set(ctx, "keep", "old"))

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx *Tx) error {
		require.NoError(t, tx.Set(ctx, "keep", "new"))
		require.NoError(t, tx.Set(ctx, "added", "x"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	value, _, err := s.Get(ctx, "keep")
	require.NoError(t, err)
	require.Equal(t, "old", value)
	_, ok, err := s.Get(ctx, "added")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJSONHelpersReportCorruptValues(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, SetJSON(ctx, s, "doc", map[string]int{"a": 1}))
	var got map[string]int
	ok, err := GetJSON(ctx, s, "doc", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, map[string]int{"a": 1}, got)

	require.NoError(t, s.Set(ctx, "doc", "{not json"))
	ok, err = GetJSON(ctx, s, "doc", &got)
	require.True(t, ok)
	require.ErrorIs(t, err, ErrCorrupt)

	ok, err = GetJSON(ctx, s, "missing", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReopenKeepsValues(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "soundboard-volume", "0.5"))
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	value, ok, err := s.Get(ctx, "soundboard-volume")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "0.5", value)
	require.Equal(t, path, s.Path())
}
