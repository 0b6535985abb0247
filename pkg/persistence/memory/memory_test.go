package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence/storetest"
)

func TestMemoryPersistence(t *testing.T) {
	storetest.RunTreeStoreTests(t, func(t *testing.T) persistence.ITreeStore {
		return NewMemoryPersistence()
	})
}

func TestMemoryPersistence_IsolatesRecords(t *testing.T) {
	m := NewMemoryPersistence()
	record := storetest.CreateTestRecord(t, "airdrop", 3)
	require.NoError(t, m.SaveTree(record))

	// mutating the caller's record after save does not affect the store
	record.Definition[0] = 'x'
	record.LeafCount = 99

	loaded, err := m.LoadTree("airdrop")
	require.NoError(t, err)
	require.Equal(t, 3, loaded.LeafCount)
	_, err = loaded.Tree()
	require.NoError(t, err)

	// mutating a loaded record does not affect the store either
	loaded.Definition[0] = 'x'
	again, err := m.LoadTree("airdrop")
	require.NoError(t, err)
	_, err = again.Tree()
	require.NoError(t, err)
}
