package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-n-ai/statsmd/internal/session"
)

// exerciseStorage runs the behaviour every Storage must share.
func exerciseStorage(t *testing.T, s session.Storage) {
	t.Helper()
	ctx := t.Context()

	_, err := s.Load(ctx, "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, s.Save(ctx, session.StorageKey, []byte(`{"state":{},"version":0}`)))
	got, err := s.Load(ctx, session.StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":{},"version":0}`, string(got))

	require.NoError(t, s.Save(ctx, session.StorageKey, []byte(`{"state":{"darkMode":false},"version":0}`)))
	got, err = s.Load(ctx, session.StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":{"darkMode":false},"version":0}`, string(got))
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, session.NewMemoryStorage())
}

func TestMemoryStorage_CopiesData(t *testing.T) {
	s := session.NewMemoryStorage()
	data := []byte("abc")
	require.NoError(t, s.Save(t.Context(), "k", data))
	data[0] = 'x'

	got, err := s.Load(t.Context(), "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestFileStorage(t *testing.T) {
	s, err := session.NewFileStorage(filepath.Join(t.TempDir(), "nested", "dir"))
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestFileStorage_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := session.NewFileStorage(dir)
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, s.Save(t.Context(), session.StorageKey, []byte(`{}`)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, session.StorageKey+".json", entries[0].Name())
}

func TestFileStorage_RejectsPathKeys(t *testing.T) {
	s, err := session.NewFileStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", ".."} {
		assert.Error(t, s.Save(t.Context(), key, []byte(`{}`)), key)
	}
}

func TestNewFileStorage_EmptyDir(t *testing.T) {
	_, err := session.NewFileStorage("")
	assert.Error(t, err)
}

func TestSQLiteStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statsmd.db")
	s, err := session.OpenSQLiteStorage(t.Context(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	exerciseStorage(t, s)
	assert.NoError(t, s.Ping(t.Context()))
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statsmd.db")
	s, err := session.OpenSQLiteStorage(t.Context(), path)
	require.NoError(t, err)
	store := session.Open(t.Context(), s)
	store.CompleteModule("glossary")
	require.NoError(t, s.Close())

	s2, err := session.OpenSQLiteStorage(t.Context(), path)
	require.NoError(t, err)
	t.Cleanup(func() { s2.Close() })

	reopened := session.Open(t.Context(), s2)
	assert.Equal(t, []string{"glossary"}, reopened.State().Progress.CompletedModules)
}

func TestOpenSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := session.OpenSQLiteStorage(t.Context(), "")
	assert.Error(t, err)
}
