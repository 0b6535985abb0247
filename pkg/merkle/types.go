package merkle

import (
	"github.com/ethereum/go-ethereum/common"
)

// FormatStandardV1 is the only tree dump format understood by Load.
const FormatStandardV1 = "standard-v1"

// LeafEntry is one committed record of the tree.
type LeafEntry struct {
	// Index is the position of the record in the persisted values list
	Index int

	// TreeIndex is the position of the leaf hash in the node array
	TreeIndex int

	// Value holds the record fields in leaf encoding order; Value[0] is the lookup key
	Value []any
}

// Key returns the first field of the entry rendered as a string.
func (e LeafEntry) Key() string {
	if len(e.Value) == 0 {
		return ""
	}
	return renderKey(e.Value[0])
}

// Tree is an immutable, fully verified merkle tree loaded from a dump.
// Nodes are stored in heap layout: node i has children 2i+1 and 2i+2, the root is node 0
// and the n leaves occupy the last n positions of the array.
type Tree struct {
	leafEncoding []string
	encoder      *LeafEncoder

	// nodes is the complete node hash array, nodes[0] is the root
	nodes []common.Hash

	// entries are kept in persisted order, entries[i].Index == i
	entries []LeafEntry
}

// ProofResult is the outcome of a proof lookup by key.
// A key with no matching leaf is a normal result with Found set to false.
type ProofResult struct {
	Found bool

	// LeafIndex is the index of the matched entry, -1 when not found
	LeafIndex int

	// Leaf is the hash of the matched leaf
	Leaf common.Hash

	// Proof contains the sibling hashes from leaf to root, root excluded.
	// proof[0] is the sibling of the leaf.
	Proof []common.Hash
}

// ProofStrings returns the proof as 0x-prefixed hex strings.
func (r ProofResult) ProofStrings() []string {
	out := make([]string, len(r.Proof))
	for i, h := range r.Proof {
		out[i] = h.Hex()
	}
	return out
}
