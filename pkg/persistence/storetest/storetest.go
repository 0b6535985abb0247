// Package storetest holds behaviour tests shared by every persistence.ITreeStore
// implementation.
package storetest

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-proof-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proof-go/pkg/testutil"
)

// CreateTestRecord builds a valid record with n leaves
func CreateTestRecord(t *testing.T, name string, n int) *persistence.TreeRecord {
	t.Helper()
	definition := testutil.CreateTestTreeDump(t, testutil.AddressLeafEncoding, testutil.CreateTestAddressValues(n))
	record, err := persistence.NewTreeRecord(name, definition)
	require.NoError(t, err)
	return record
}

// RunTreeStoreTests exercises an ITreeStore. newStore must return an empty store;
// the suite closes it.
func RunTreeStoreTests(t *testing.T, newStore func(t *testing.T) persistence.ITreeStore) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		record := CreateTestRecord(t, "airdrop-1", 4)
		require.NoError(t, store.SaveTree(record))

		loaded, err := store.LoadTree("airdrop-1")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, record.Name, loaded.Name)
		assert.Equal(t, record.Root, loaded.Root)
		assert.Equal(t, record.LeafCount, loaded.LeafCount)
		assert.Equal(t, record.Definition, loaded.Definition)
		assert.Equal(t, record.SavedAt, loaded.SavedAt)

		tree, err := loaded.Tree()
		require.NoError(t, err)
		assert.Equal(t, record.Root, tree.Root())
	})

	t.Run("LoadNotFound", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		loaded, err := store.LoadTree("does-not-exist")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})

	t.Run("Overwrite", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		first := CreateTestRecord(t, "airdrop", 2)
		second := CreateTestRecord(t, "airdrop", 5)
		require.NoError(t, store.SaveTree(first))
		require.NoError(t, store.SaveTree(second))

		loaded, err := store.LoadTree("airdrop")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, 5, loaded.LeafCount)
		assert.Equal(t, second.Root, loaded.Root)
	})

	t.Run("SaveInvalid", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.Error(t, store.SaveTree(nil))
		require.Error(t, store.SaveTree(&persistence.TreeRecord{}))
	})

	t.Run("ListSortedByName", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		empty, err := store.ListTrees()
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, name := range []string{"charlie", "alpha", "bravo"} {
			require.NoError(t, store.SaveTree(CreateTestRecord(t, name, 3)))
		}

		records, err := store.ListTrees()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "alpha", records[0].Name)
		assert.Equal(t, "bravo", records[1].Name)
		assert.Equal(t, "charlie", records[2].Name)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.SaveTree(CreateTestRecord(t, "airdrop", 3)))
		require.NoError(t, store.DeleteTree("airdrop"))

		loaded, err := store.LoadTree("airdrop")
		require.NoError(t, err)
		assert.Nil(t, loaded)

		// idempotent
		require.NoError(t, store.DeleteTree("airdrop"))

		records, err := store.ListTrees()
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("LoadedRecordIsUsable", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		values := testutil.CreateTestAddressValues(7)
		definition := testutil.CreateTestTreeDump(t, testutil.AddressLeafEncoding, values)
		record, err := persistence.NewTreeRecord("claims", definition)
		require.NoError(t, err)
		require.NoError(t, store.SaveTree(record))

		loaded, err := store.LoadTree("claims")
		require.NoError(t, err)
		tree, err := loaded.Tree()
		require.NoError(t, err)

		for _, v := range values {
			result := merkle.FindProof(tree, v[0].(string))
			require.True(t, result.Found)
			require.True(t, merkle.VerifyProof(record.Root, result.Leaf, result.Proof))
		}
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		store := newStore(t)
		defer func() { _ = store.Close() }()

		records := make([]*persistence.TreeRecord, 10)
		for i := range records {
			records[i] = CreateTestRecord(t, fmt.Sprintf("tree-%02d", i), 2+i%3)
		}

		var wg sync.WaitGroup
		for _, record := range records {
			wg.Add(1)
			go func(record *persistence.TreeRecord) {
				defer wg.Done()
				assert.NoError(t, store.SaveTree(record))
				_, err := store.LoadTree(record.Name)
				assert.NoError(t, err)
			}(record)
		}
		wg.Wait()

		listed, err := store.ListTrees()
		require.NoError(t, err)
		assert.Len(t, listed, 10)
	})

	t.Run("HealthCheckAndClose", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.HealthCheck())
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())

		require.Error(t, store.HealthCheck())
		require.Error(t, store.SaveTree(CreateTestRecord(t, "late", 2)))
		_, err := store.LoadTree("late")
		require.Error(t, err)
		_, err = store.ListTrees()
		require.Error(t, err)
		require.Error(t, store.DeleteTree("late"))
	})
}
