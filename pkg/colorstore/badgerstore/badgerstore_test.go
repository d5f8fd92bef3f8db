package badgerstore

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/itohio/gocolorimeter/pkg/colorstore"
	"github.com/itohio/gocolorimeter/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_RequiresPath(t *testing.T) {
	store, err := Open(Config{})
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestStore_InMemory(t *testing.T) {
	ctx := context.Background()
	store, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	table, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, table.Valid())

	c := colorstore.ReferenceColor{Valid: true, Color: sample.Triplet{Red: 255, Green: 255, Blue: 209}}
	require.NoError(t, store.Save(ctx, 0, c))
	require.NoError(t, store.Save(ctx, 12, c))
	require.NoError(t, store.Erase(ctx, 12))
	require.NoError(t, store.Erase(ctx, 5)) // erasing a missing slot is not an error
	assert.ErrorIs(t, store.Save(ctx, 16, c), colorstore.ErrIndexOutOfRange)

	table, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, table.Valid())
	assert.Equal(t, c, table[0])
}

func TestStore_SaveInvalidErases(t *testing.T) {
	ctx := context.Background()
	store, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(ctx, 4, colorstore.ReferenceColor{Valid: true}))
	require.NoError(t, store.Save(ctx, 4, colorstore.ReferenceColor{}))

	table, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, table.Valid())
}

func TestStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	store, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(2), []byte{1, 2})
	}))

	_, err = store.Load(ctx)
	assert.Error(t, err)
}

func TestStore_Persists(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := Open(Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	c := colorstore.ReferenceColor{Valid: true, Color: sample.Triplet{Red: 10, Green: 20, Blue: 30}}
	require.NoError(t, store.Save(ctx, 9, c))
	require.NoError(t, store.Close())

	store, err = Open(Config{Path: dir})
	require.NoError(t, err)
	defer store.Close()

	table, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{9}, table.Valid())
	assert.Equal(t, c, table[9])
}
