package sessionstore

import (
	"path/filepath"
	"testing"

	"faithconnect/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_EmptySlot(t *testing.T) {
	store := openTestStore(t)

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveLoadClear(t *testing.T) {
	store := openTestStore(t)

	identity := domain.Identity{ID: "admin-1", Email: "admin@example.com", Token: "tok"}
	require.NoError(t, store.Save(identity))

	loaded, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, identity, loaded)

	require.NoError(t, store.Clear())
	_, ok, err = store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SaveOverwrites(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.Save(domain.Identity{ID: "first", Token: "t1"}))
	require.NoError(t, store.Save(domain.Identity{ID: "second", Token: "t2"}))

	loaded, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", loaded.ID)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
}
