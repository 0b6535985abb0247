package badger

import (
	"testing"

	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-proof-go/pkg/logger"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence/storetest"
)

func newTestBadger(t *testing.T, path string) *BadgerPersistence {
	t.Helper()
	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	bp, err := NewBadgerPersistence(path, testLogger)
	require.NoError(t, err)
	return bp
}

func TestBadgerPersistence(t *testing.T) {
	storetest.RunTreeStoreTests(t, func(t *testing.T) persistence.ITreeStore {
		return newTestBadger(t, t.TempDir())
	})
}

func TestBadgerPersistence_SurvivesReopen(t *testing.T) {
	tmpDir := t.TempDir()

	bp := newTestBadger(t, tmpDir)
	record := storetest.CreateTestRecord(t, "airdrop", 6)
	require.NoError(t, bp.SaveTree(record))
	require.NoError(t, bp.Close())

	reopened := newTestBadger(t, tmpDir)
	defer func() { _ = reopened.Close() }()

	loaded, err := reopened.LoadTree("airdrop")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.Root, loaded.Root)
	assert.Equal(t, record.Definition, loaded.Definition)
}

func TestBadgerPersistence_RejectsUnknownSchema(t *testing.T) {
	tmpDir := t.TempDir()

	bp := newTestBadger(t, tmpDir)
	require.NoError(t, bp.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(keySchemaVersion), []byte("v0"))
	}))
	require.NoError(t, bp.Close())

	testLogger, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	_, err := NewBadgerPersistence(tmpDir, testLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema version")
}

func TestBadgerPersistence_SkipsCorruptRecords(t *testing.T) {
	bp := newTestBadger(t, t.TempDir())
	defer func() { _ = bp.Close() }()

	require.NoError(t, bp.SaveTree(storetest.CreateTestRecord(t, "good", 2)))
	require.NoError(t, bp.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(treeKey("bad"), []byte("not json"))
	}))

	records, err := bp.ListTrees()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].Name)

	_, err = bp.LoadTree("bad")
	require.Error(t, err)
}
