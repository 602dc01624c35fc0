package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesFiles(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	dir, err := store.Save("user-1", "a1",
		File{Name: "first.py", Content: []byte("x = 1\n")},
		File{Name: "nested/second.py", Content: []byte("y = 2\n")},
	)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(store.Root(), "user-1", "a1"), dir)

	got, err := os.ReadFile(filepath.Join(dir, "file1_first.py"))
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", string(got))

	_, err = os.Stat(filepath.Join(dir, "file2_second.py"))
	assert.NoError(t, err)
}

func TestSaveKeepsFilesWithTheSameName(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	dir, err := store.Save("user-1", "a1",
		File{Name: "solution.py", Content: []byte("first")},
		File{Name: "solution.py", Content: []byte("second")},
	)
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for slot, want := range []string{"first", "second"} {
		got, err := os.ReadFile(filepath.Join(dir, StoredName(slot, "solution.py")))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestSaveRejectsTraversal(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("..", "a1")
	assert.Error(t, err)

	_, err = store.Save("user-1", "../a1")
	assert.Error(t, err)

	_, err = store.Save("user-1", "a1", File{Name: "..", Content: nil})
	assert.Error(t, err)
}

func TestPruneKeepsRetainedAlignments(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		_, err := store.Save("user-1", id, File{Name: "f.py", Content: []byte("pass")})
		require.NoError(t, err)
	}
	_, err = store.Save("user-2", "b1", File{Name: "f.py", Content: []byte("pass")})
	require.NoError(t, err)

	removed, err := store.Prune("user-1", []string{"a3", "a4"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a2"}, removed)

	entries, err := os.ReadDir(filepath.Join(store.Root(), "user-1"))
	require.NoError(t, err)
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	assert.ElementsMatch(t, []string{"a3", "a4"}, dirs)

	_, err = os.Stat(filepath.Join(store.Root(), "user-2", "b1"))
	assert.NoError(t, err, "other users are untouched")
}

func TestPruneUnknownUser(t *testing.T) {
	store, err := NewUploadStore(t.TempDir())
	require.NoError(t, err)

	removed, err := store.Prune("nobody", nil)
	require.NoError(t, err)
	assert.Empty(t, removed)
}
