package merkle

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// FindProof scans the leaves in persisted order and returns the inclusion proof of the
// first entry whose key equals key once both are lower-cased.
//
// Keys are not required to be unique, so the lookup is linear and first match wins.
// A key with no matching leaf yields Found == false and an empty proof.
func FindProof(tree *Tree, key string) ProofResult {
	// lower-case both sides rather than case fold, so 'ſ' does not match 's'
	want := strings.ToLower(key)
	for _, entry := range tree.entries {
		if strings.ToLower(entry.Key()) != want {
			continue
		}
		return ProofResult{
			Found:     true,
			LeafIndex: entry.Index,
			Leaf:      tree.nodes[entry.TreeIndex],
			Proof:     tree.proofForNode(entry.TreeIndex),
		}
	}

	return ProofResult{
		Found:     false,
		LeafIndex: -1,
		Proof:     []common.Hash{},
	}
}

// GetProof returns the inclusion proof of the entry at the given values index.
func (t *Tree) GetProof(index int) ([]common.Hash, error) {
	if index < 0 || index >= len(t.entries) {
		return nil, fmt.Errorf("leaf index %d out of bounds (tree has %d leaves): %w", index, len(t.entries), ErrInvalidIndex)
	}
	return t.proofForNode(t.entries[index].TreeIndex), nil
}

// proofForNode walks from a leaf node up to the root collecting sibling hashes.
func (t *Tree) proofForNode(treeIndex int) []common.Hash {
	proof := make([]common.Hash, 0, nodeDepth(treeIndex))
	for i := treeIndex; i > 0; i = parentIndex(i) {
		proof = append(proof, t.nodes[siblingIndex(i)])
	}
	return proof
}

// ProcessProof recomputes the root implied by a leaf hash and its proof.
func ProcessProof(leaf common.Hash, proof []common.Hash) common.Hash {
	computed := leaf
	for _, sibling := range proof {
		computed = HashPair(computed, sibling)
	}
	return computed
}

// VerifyProof reports whether proof links leaf to root.
func VerifyProof(root common.Hash, leaf common.Hash, proof []common.Hash) bool {
	return ProcessProof(leaf, proof) == root
}

// HashPair computes keccak256 of the two hashes concatenated in ascending byte order,
// matching OpenZeppelin's MerkleProof library.
func HashPair(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

func leftChildIndex(i int) int {
	return 2*i + 1
}

func rightChildIndex(i int) int {
	return 2*i + 2
}

func parentIndex(i int) int {
	return (i - 1) / 2
}

// siblingIndex pairs odd (left) nodes with the next node and even (right) nodes with
// the previous one. Only defined for i > 0.
func siblingIndex(i int) int {
	if i%2 == 1 {
		return i + 1
	}
	return i - 1
}

func isLeafNode(treeSize, i int) bool {
	return i >= 0 && i < treeSize && leftChildIndex(i) >= treeSize
}

// nodeDepth is the number of edges between node i and the root.
func nodeDepth(i int) int {
	depth := 0
	for ; i > 0; i = parentIndex(i) {
		depth++
	}
	return depth
}
