package prover

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proof-go/pkg/config"
	"github.com/Layr-Labs/merkle-proof-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proof-go/pkg/proofWriter"
)

// Prover resolves trees from the configured source and answers proof queries
type Prover struct {
	cfg    *config.ProofConfig
	store  persistence.ITreeStore
	logger *zap.Logger
}

// NewProver creates a Prover. store may be nil when cfg selects the file store.
func NewProver(cfg *config.ProofConfig, store persistence.ITreeStore, logger *zap.Logger) (*Prover, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if cfg.Store.Type != config.StoreTypeFile && store == nil {
		return nil, fmt.Errorf("store type %s requires a tree store", cfg.Store.Type)
	}
	return &Prover{
		cfg:    cfg,
		store:  store,
		logger: logger,
	}, nil
}

// OpenTree loads the tree from the definition file or from the tree store
func (p *Prover) OpenTree() (*merkle.Tree, error) {
	if p.cfg.Store.Type == config.StoreTypeFile {
		p.logger.Sugar().Debugw("Loading tree definition", "path", p.cfg.TreePath)
		return merkle.LoadFile(p.cfg.TreePath)
	}

	name := p.cfg.Store.TreeName
	p.logger.Sugar().Debugw("Loading stored tree", "store", p.cfg.Store.Type, "name", name)

	record, err := p.store.LoadTree(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load tree %s: %w", name, err)
	}
	if record == nil {
		return nil, fmt.Errorf("tree %s not found in %s store", name, p.cfg.Store.Type)
	}
	return record.Tree()
}

// FindProof loads the tree and looks up key
func (p *Prover) FindProof(key string) (*merkle.Tree, merkle.ProofResult, error) {
	tree, err := p.OpenTree()
	if err != nil {
		return nil, merkle.ProofResult{}, err
	}

	result := merkle.FindProof(tree, key)
	p.logger.Sugar().Infow("Proof lookup finished",
		"key", key,
		"found", result.Found,
		"leafIndex", result.LeafIndex,
		"proofLength", len(result.Proof),
		"root", tree.Root().Hex(),
	)
	return tree, result, nil
}

// Prove looks up key and writes the result to the configured output path.
// Nothing is written when loading fails.
func (p *Prover) Prove(key string) (merkle.ProofResult, error) {
	_, result, err := p.FindProof(key)
	if err != nil {
		return merkle.ProofResult{}, err
	}

	format, err := proofWriter.ParseFormat(p.cfg.OutputFormat)
	if err != nil {
		return merkle.ProofResult{}, err
	}
	if err := proofWriter.WriteFile(p.cfg.OutputPath, result, format); err != nil {
		return merkle.ProofResult{}, err
	}

	p.logger.Sugar().Debugw("Proof result written", "path", p.cfg.OutputPath, "format", format)
	return result, nil
}

// VerifyResult describes a self-check of a proof against the tree root
type VerifyResult struct {
	Result merkle.ProofResult
	Root   common.Hash
	Valid  bool
}

// Verify looks up key and checks the proof recombines to the root
func (p *Prover) Verify(key string) (*VerifyResult, error) {
	tree, result, err := p.FindProof(key)
	if err != nil {
		return nil, err
	}

	out := &VerifyResult{
		Result: result,
		Root:   tree.Root(),
	}
	if result.Found {
		out.Valid = merkle.VerifyProof(tree.Root(), result.Leaf, result.Proof)
	}
	return out, nil
}

// Import validates the definition at path and saves it under name
func (p *Prover) Import(name string, path string) (*persistence.TreeRecord, error) {
	if p.store == nil {
		return nil, fmt.Errorf("import requires a badger or redis store")
	}

	definition, err := os.ReadFile(path)
	if err != nil {
		return nil, &merkle.ParseError{Field: "path", Err: err}
	}

	record, err := persistence.NewTreeRecord(name, definition)
	if err != nil {
		return nil, err
	}
	if err := p.store.SaveTree(record); err != nil {
		return nil, fmt.Errorf("failed to save tree %s: %w", name, err)
	}

	p.logger.Sugar().Infow("Imported tree",
		"name", record.Name,
		"root", record.Root.Hex(),
		"leaves", record.LeafCount,
		"store", p.cfg.Store.Type,
	)
	return record, nil
}

// List returns the stored trees
func (p *Prover) List() ([]*persistence.TreeRecord, error) {
	if p.store == nil {
		return nil, fmt.Errorf("list requires a badger or redis store")
	}
	return p.store.ListTrees()
}
