package persistence

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Layr-Labs/merkle-proof-go/pkg/merkle"
)

// TreeRecord is a named, validated tree definition held by a tree store.
type TreeRecord struct {
	// Name is the primary key of the record
	Name string `json:"name"`

	// Root is the root hash of the definition at import time
	Root common.Hash `json:"root"`

	// LeafCount is the number of committed values
	LeafCount int `json:"leafCount"`

	// Definition is the serialized tree exactly as imported
	Definition []byte `json:"definition"`

	// SavedAt is the Unix timestamp of the import
	SavedAt int64 `json:"savedAt"`
}

// NewTreeRecord validates a tree definition and wraps it in a record.
func NewTreeRecord(name string, definition []byte) (*TreeRecord, error) {
	if name == "" {
		return nil, fmt.Errorf("tree name cannot be empty")
	}

	tree, err := merkle.Load(definition)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree definition %s: %w", name, err)
	}

	data := make([]byte, len(definition))
	copy(data, definition)

	return &TreeRecord{
		Name:       name,
		Root:       tree.Root(),
		LeafCount:  tree.Len(),
		Definition: data,
		SavedAt:    time.Now().Unix(),
	}, nil
}

// Tree loads the stored definition. The definition is verified again, so a record
// altered in storage is rejected, and its root must still match the recorded one.
func (r *TreeRecord) Tree() (*merkle.Tree, error) {
	tree, err := merkle.Load(r.Definition)
	if err != nil {
		return nil, err
	}
	if tree.Root() != r.Root {
		return nil, fmt.Errorf("stored tree %s has root %s, expected %s", r.Name, tree.Root().Hex(), r.Root.Hex())
	}
	return tree, nil
}

// Copy returns a deep copy of the record
func (r *TreeRecord) Copy() *TreeRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Definition = make([]byte, len(r.Definition))
	copy(out.Definition, r.Definition)
	return &out
}
