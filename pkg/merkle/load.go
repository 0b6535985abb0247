package merkle

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// treeDump is the persisted shape of a StandardMerkleTree.
type treeDump struct {
	Format       string      `json:"format"`
	LeafEncoding []string    `json:"leafEncoding"`
	Tree         []string    `json:"tree"`
	Values       []valueDump `json:"values"`
}

type valueDump struct {
	Value     []any `json:"value"`
	TreeIndex *int  `json:"treeIndex"`
}

// LoadFile reads a tree definition from path and loads it.
func LoadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Field: "path", Err: err}
	}
	return Load(data)
}

// Load parses a serialized tree and verifies it. Every leaf hash is recomputed from its
// value and every internal node from its children; a supplied hash is never trusted.
// All failures are returned as *ParseError.
func Load(data []byte) (*Tree, error) {
	var dump treeDump
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&dump); err != nil {
		return nil, &ParseError{Field: "document", Err: err}
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, &ParseError{Field: "document", Err: fmt.Errorf("unexpected data after tree definition")}
	}

	if dump.Format != FormatStandardV1 {
		return nil, &ParseError{Field: "format", Err: fmt.Errorf("%w: %q", ErrUnsupportedFormat, dump.Format)}
	}

	encoder, err := NewLeafEncoder(dump.LeafEncoding)
	if err != nil {
		return nil, &ParseError{Field: "leafEncoding", Err: err}
	}

	if len(dump.Values) == 0 {
		return nil, &ParseError{Field: "values", Err: ErrEmpty}
	}

	expectedNodes := 2*len(dump.Values) - 1
	if len(dump.Tree) != expectedNodes {
		return nil, parseErrorf("tree", "%d leaves require %d nodes, got %d: %w",
			len(dump.Values), expectedNodes, len(dump.Tree), ErrSizeMismatch)
	}

	nodes := make([]common.Hash, len(dump.Tree))
	for i, encoded := range dump.Tree {
		b, err := hexutil.Decode(encoded)
		if err != nil {
			return nil, &ParseError{Field: fmt.Sprintf("tree[%d]", i), Err: err}
		}
		if len(b) != common.HashLength {
			return nil, parseErrorf(fmt.Sprintf("tree[%d]", i), "expected %d bytes, got %d: %w",
				common.HashLength, len(b), ErrSizeMismatch)
		}
		nodes[i] = common.BytesToHash(b)
	}

	entries := make([]LeafEntry, len(dump.Values))
	claimed := make(map[int]int, len(dump.Values))
	for i, v := range dump.Values {
		field := fmt.Sprintf("values[%d]", i)

		if len(v.Value) != encoder.Arity() {
			return nil, parseErrorf(field+".value", "expected %d fields, got %d: %w",
				encoder.Arity(), len(v.Value), ErrSizeMismatch)
		}
		if v.TreeIndex == nil {
			return nil, &ParseError{Field: field + ".treeIndex", Err: fmt.Errorf("missing")}
		}
		treeIndex := *v.TreeIndex
		if !isLeafNode(len(nodes), treeIndex) {
			return nil, parseErrorf(field+".treeIndex", "%d is not a leaf position: %w", treeIndex, ErrInvalidIndex)
		}
		if other, ok := claimed[treeIndex]; ok {
			return nil, parseErrorf(field+".treeIndex", "%d already used by values[%d]: %w", treeIndex, other, ErrInvalidIndex)
		}
		claimed[treeIndex] = i

		leaf, err := encoder.Hash(v.Value)
		if err != nil {
			return nil, &ParseError{Field: field + ".value", Err: err}
		}
		if leaf != nodes[treeIndex] {
			return nil, parseErrorf(field, "leaf hash %s does not match tree[%d] %s: %w",
				leaf.Hex(), treeIndex, nodes[treeIndex].Hex(), ErrHashMismatch)
		}

		entries[i] = LeafEntry{
			Index:     i,
			TreeIndex: treeIndex,
			Value:     v.Value,
		}
	}

	// with 2n-1 nodes the internal nodes are exactly 0..n-2
	for i := len(dump.Values) - 2; i >= 0; i-- {
		expected := HashPair(nodes[leftChildIndex(i)], nodes[rightChildIndex(i)])
		if nodes[i] != expected {
			return nil, parseErrorf(fmt.Sprintf("tree[%d]", i), "expected %s, got %s: %w",
				expected.Hex(), nodes[i].Hex(), ErrHashMismatch)
		}
	}

	leafEncoding := make([]string, len(dump.LeafEncoding))
	copy(leafEncoding, dump.LeafEncoding)

	return &Tree{
		leafEncoding: leafEncoding,
		encoder:      encoder,
		nodes:        nodes,
		entries:      entries,
	}, nil
}

// Root returns the root hash of the tree.
func (t *Tree) Root() common.Hash {
	return t.nodes[0]
}

// Len returns the number of leaves.
func (t *Tree) Len() int {
	return len(t.entries)
}

// LeafEncoding returns the ABI type names of the leaf fields.
func (t *Tree) LeafEncoding() []string {
	out := make([]string, len(t.leafEncoding))
	copy(out, t.leafEncoding)
	return out
}

// Leaf returns a copy of the entry at the given values index.
func (t *Tree) Leaf(index int) (LeafEntry, error) {
	if index < 0 || index >= len(t.entries) {
		return LeafEntry{}, fmt.Errorf("leaf index %d out of bounds (tree has %d leaves): %w", index, len(t.entries), ErrInvalidIndex)
	}
	return copyEntry(t.entries[index]), nil
}

// LeafHash returns the hash of the leaf at the given values index.
func (t *Tree) LeafHash(index int) (common.Hash, error) {
	if index < 0 || index >= len(t.entries) {
		return common.Hash{}, fmt.Errorf("leaf index %d out of bounds (tree has %d leaves): %w", index, len(t.entries), ErrInvalidIndex)
	}
	return t.nodes[t.entries[index].TreeIndex], nil
}

// Entries returns copies of all entries in persisted order.
func (t *Tree) Entries() []LeafEntry {
	out := make([]LeafEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = copyEntry(e)
	}
	return out
}

// HashValue computes the leaf hash a value would have in this tree.
func (t *Tree) HashValue(value []any) (common.Hash, error) {
	return t.encoder.Hash(value)
}

func copyEntry(e LeafEntry) LeafEntry {
	return LeafEntry{
		Index:     e.Index,
		TreeIndex: e.TreeIndex,
		Value:     copyValue(e.Value),
	}
}

func copyValue(value []any) []any {
	out := make([]any, len(value))
	for i, field := range value {
		if nested, ok := field.([]any); ok {
			out[i] = copyValue(nested)
			continue
		}
		out[i] = field
	}
	return out
}
