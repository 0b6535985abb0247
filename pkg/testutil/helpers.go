package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-proof-go/pkg/merkle"
)

// AddressLeafEncoding is the usual airdrop style leaf layout
var AddressLeafEncoding = []string{"address", "uint256"}

type treeDump struct {
	Format       string      `json:"format"`
	LeafEncoding []string    `json:"leafEncoding"`
	Tree         []string    `json:"tree"`
	Values       []valueDump `json:"values"`
}

type valueDump struct {
	Value     []any `json:"value"`
	TreeIndex int   `json:"treeIndex"`
}

// BuildTreeDump produces a standard-v1 tree definition for values, laid out the same way
// OpenZeppelin's StandardMerkleTree.of does: leaf hashes sorted ascending and written
// from the end of the node array backwards.
func BuildTreeDump(leafEncoding []string, values [][]any) ([]byte, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("cannot build tree from empty values")
	}

	// round-trip through JSON so hashed values match what the loader decodes
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	var decoded [][]any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&decoded); err != nil {
		return nil, err
	}

	encoder, err := merkle.NewLeafEncoder(leafEncoding)
	if err != nil {
		return nil, err
	}

	hashes := make([]common.Hash, len(decoded))
	order := make([]int, len(decoded))
	for i, v := range decoded {
		h, err := encoder.Hash(v)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		hashes[i] = h
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return bytes.Compare(hashes[order[a]][:], hashes[order[b]][:]) < 0
	})

	nodes := make([]common.Hash, 2*len(decoded)-1)
	treeIndex := make([]int, len(decoded))
	for i, valueIndex := range order {
		pos := len(nodes) - 1 - i
		nodes[pos] = hashes[valueIndex]
		treeIndex[valueIndex] = pos
	}
	for i := len(nodes) - 1 - len(decoded); i >= 0; i-- {
		nodes[i] = merkle.HashPair(nodes[2*i+1], nodes[2*i+2])
	}

	dump := treeDump{
		Format:       merkle.FormatStandardV1,
		LeafEncoding: leafEncoding,
		Tree:         make([]string, len(nodes)),
		Values:       make([]valueDump, len(decoded)),
	}
	for i, n := range nodes {
		dump.Tree[i] = n.Hex()
	}
	for i, v := range decoded {
		dump.Values[i] = valueDump{Value: v, TreeIndex: treeIndex[i]}
	}

	return json.MarshalIndent(dump, "", "  ")
}

// CreateTestTreeDump builds a tree definition and fails the test on error
func CreateTestTreeDump(t testing.TB, leafEncoding []string, values [][]any) []byte {
	t.Helper()
	data, err := BuildTreeDump(leafEncoding, values)
	require.NoError(t, err)
	return data
}

// CreateTestTree builds and loads a tree
func CreateTestTree(t testing.TB, leafEncoding []string, values [][]any) *merkle.Tree {
	t.Helper()
	tree, err := merkle.Load(CreateTestTreeDump(t, leafEncoding, values))
	require.NoError(t, err)
	return tree
}

// CreateTestAddressValues creates n address/amount pairs with distinct addresses
func CreateTestAddressValues(n int) [][]any {
	values := make([][]any, n)
	for i := 0; i < n; i++ {
		addr := common.BigToAddress(new(big.Int).Mul(big.NewInt(int64(i+1)), big.NewInt(0xabcdef0123)))
		values[i] = []any{addr.Hex(), fmt.Sprintf("%d", (i+1)*1000)}
	}
	return values
}

// WriteTestTreeFile writes a tree definition into a temp dir and returns its path
func WriteTestTreeFile(t testing.TB, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
