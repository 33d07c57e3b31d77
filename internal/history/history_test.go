package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, limit int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"), limit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndRecent(t *testing.T) {
	s := openTestStore(t, 0)

	require.NoError(t, s.Add("foo"))
	require.NoError(t, s.Add("bar"))

	got, err := s.Recent(10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"foo", "bar"}, got)
}

func TestAddDeduplicates(t *testing.T) {
	s := openTestStore(t, 0)

	require.NoError(t, s.Add("foo"))
	require.NoError(t, s.Add("foo"))
	require.NoError(t, s.Add("foo"))

	got, err := s.Recent(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo"}, got)
}

func TestAddIgnoresEmptyQuery(t *testing.T) {
	s := openTestStore(t, 0)
	require.NoError(t, s.Add(""))

	got, err := s.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPruneKeepsLimit(t *testing.T) {
	s := openTestStore(t, 2)

	require.NoError(t, s.Add("one"))
	require.NoError(t, s.Add("two"))
	require.NoError(t, s.Add("three"))

	got, err := s.Recent(10)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestReopenKeepsHistory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.db")

	s, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Add("persisted"))
	require.NoError(t, s.Close())

	s2, err := Open(path, 0)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Recent(10)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted"}, got)
}

func TestOpenDefaultWithEmptyDir(t *testing.T) {
	assert.Nil(t, OpenDefault("", 0))
}
