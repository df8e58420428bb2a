package artifact

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndExists(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	filename := "report__jean_dupont__01-01-2024_31-01-2024.csv"
	assert.False(t, store.Exists(5, filename))

	path, err := store.Save(5, filename, []byte("data"))
	require.NoError(t, err)
	assert.True(t, store.Exists(5, filename))
	assert.Equal(t, store.Path(5, filename), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))
}

func TestStore_SaveReplacesStaleArtifact(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	filename := "report__jean_dupont__01-01-2024_31-01-2024.csv"
	_, err = store.Save(5, filename, []byte("old"))
	require.NoError(t, err)

	path, err := store.Save(5, filename, []byte("new"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestStore_DeleteMissingIsNoError(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Delete(5, "report__nobody__01-01-2024_31-01-2024.csv"))
}

func TestStore_ListForUser(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(5, "report__jean_dupont__01-01-2024_31-01-2024.csv", []byte("a"))
	require.NoError(t, err)
	_, err = store.Save(5, "report__jean_dupont__01-02-2024_29-02-2024.csv", []byte("b"))
	require.NoError(t, err)
	_, err = store.Save(5, "report__marie_dubois__01-01-2024_31-01-2024.csv", []byte("c"))
	require.NoError(t, err)

	files, err := store.ListForUser(5, "Jean Dupont")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	// Different context, nothing there.
	files, err = store.ListForUser(6, "Jean Dupont")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestStore_RemoveForUser(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(5, "report__jean_dupont__01-01-2024_31-01-2024.csv", []byte("a"))
	require.NoError(t, err)
	_, err = store.Save(5, "report__marie_dubois__01-01-2024_31-01-2024.csv", []byte("b"))
	require.NoError(t, err)

	require.NoError(t, store.RemoveForUser(5, "Jean Dupont"))

	assert.False(t, store.Exists(5, "report__jean_dupont__01-01-2024_31-01-2024.csv"))
	assert.True(t, store.Exists(5, "report__marie_dubois__01-01-2024_31-01-2024.csv"))
}
