package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
)

// MemoryPersistence is an in-memory implementation of ITreeStore.
// Records are lost when the process exits, so it is meant for tests and one-shot runs.
// Thread-safe using sync.RWMutex; records are deep copied in and out.
type MemoryPersistence struct {
	mu sync.RWMutex

	// trees maps name -> record
	trees map[string]*persistence.TreeRecord

	closed bool
}

var _ persistence.ITreeStore = (*MemoryPersistence)(nil)

// NewMemoryPersistence creates a new in-memory tree store.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		trees: make(map[string]*persistence.TreeRecord),
	}
}

// SaveTree persists a tree record.
func (m *MemoryPersistence) SaveTree(record *persistence.TreeRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil TreeRecord")
	}
	if record.Name == "" {
		return fmt.Errorf("cannot save TreeRecord without a name")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	m.trees[record.Name] = record.Copy()
	return nil
}

// LoadTree retrieves a tree record by name.
func (m *MemoryPersistence) LoadTree(name string) (*persistence.TreeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	record, exists := m.trees[name]
	if !exists {
		return nil, nil
	}
	return record.Copy(), nil
}

// ListTrees returns all records sorted by name.
func (m *MemoryPersistence) ListTrees() ([]*persistence.TreeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	records := make([]*persistence.TreeRecord, 0, len(m.trees))
	for _, record := range m.trees {
		records = append(records, record.Copy())
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	return records, nil
}

// DeleteTree removes a record by name.
func (m *MemoryPersistence) DeleteTree(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	delete(m.trees, name)
	return nil
}

// Close marks the store as closed.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck verifies the store is operational.
func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}
	return nil
}
