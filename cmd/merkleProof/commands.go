package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/merkle-proof-go/internal/prover"
	"github.com/Layr-Labs/merkle-proof-go/pkg/config"
	"github.com/Layr-Labs/merkle-proof-go/pkg/logger"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proof-go/pkg/proofWriter"
)

// buildConfig maps the global flags onto a ProofConfig
func buildConfig(c *cli.Context) *config.ProofConfig {
	return &config.ProofConfig{
		TreePath:     c.String("tree"),
		OutputPath:   c.String("output"),
		OutputFormat: c.String("output-format"),
		Store: config.StoreConfig{
			Type:       config.StoreType(c.String("store")),
			TreeName:   c.String("tree-name"),
			BadgerPath: c.String("badger-path"),
			Redis: &config.RedisConfig{
				Address:   c.String("redis-address"),
				Password:  c.String("redis-password"),
				DB:        c.Int("redis-db"),
				KeyPrefix: c.String("redis-key-prefix"),
			},
		},
		Verbose: c.Bool("verbose"),
	}
}

// withProver validates the configuration, opens the store and hands a Prover to fn.
// The store is closed when fn returns.
func withProver(c *cli.Context, fn func(p *prover.Prover, cfg *config.ProofConfig) error) error {
	cfg := buildConfig(c)
	if err := cfg.Validate(); err != nil {
		return cli.Exit(fmt.Sprintf("Invalid configuration: %v", err), 1)
	}

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Verbose})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	store, err := prover.NewTreeStore(&cfg.Store, l)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Store.Type, err)
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				l.Sugar().Warnw("Failed to close tree store", "error", err)
			}
		}()
	}

	p, err := prover.NewProver(cfg, store, l)
	if err != nil {
		return fmt.Errorf("failed to create prover: %w", err)
	}
	return fn(p, cfg)
}

// proveCommand handles the default action: merkle-proof <address>
func proveCommand(c *cli.Context) error {
	address := c.Args().First()
	if address == "" {
		return cli.Exit("Error: No address provided. Usage: merkle-proof <address>", 1)
	}
	if c.NArg() > 1 {
		return cli.Exit(fmt.Sprintf("Error: unexpected arguments %v. Flags must come before the address: merkle-proof [flags] <address>", c.Args().Tail()), 1)
	}

	return withProver(c, func(p *prover.Prover, cfg *config.ProofConfig) error {
		result, err := p.Prove(address)
		if err != nil {
			return fmt.Errorf("failed to generate proof: %w", err)
		}

		// the console always shows the JSON form, whatever the file encoding
		echo, err := json.MarshalIndent(proofWriter.Document(result), "", " ")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, string(echo))

		outputPath, err := filepath.Abs(cfg.OutputPath)
		if err != nil {
			outputPath = cfg.OutputPath
		}
		if !result.Found {
			color.New(color.FgYellow).Fprintf(c.App.Writer, "Address %s not found in tree\n", address)
		}
		color.New(color.FgGreen).Fprintf(c.App.Writer, "Proof saved to %s\n", outputPath)
		return nil
	})
}

// importCommand handles: merkle-proof import <name>
func importCommand(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("Error: No tree name provided. Usage: merkle-proof import <name>", 1)
	}
	if c.NArg() > 1 {
		return cli.Exit(fmt.Sprintf("Error: unexpected arguments %v. Usage: merkle-proof [flags] import <name>", c.Args().Tail()), 1)
	}

	return withProver(c, func(p *prover.Prover, cfg *config.ProofConfig) error {
		record, err := p.Import(name, cfg.TreePath)
		if err != nil {
			return fmt.Errorf("failed to import tree: %w", err)
		}
		color.New(color.FgGreen).Fprintf(c.App.Writer, "Imported %s into %s store\n", record.Name, cfg.Store.Type)
		printRecord(c, record)
		return nil
	})
}

// listCommand handles: merkle-proof list
func listCommand(c *cli.Context) error {
	return withProver(c, func(p *prover.Prover, cfg *config.ProofConfig) error {
		records, err := p.List()
		if err != nil {
			return fmt.Errorf("failed to list trees: %w", err)
		}
		if len(records) == 0 {
			fmt.Fprintf(c.App.Writer, "No trees in %s store\n", cfg.Store.Type)
			return nil
		}
		for _, record := range records {
			printRecord(c, record)
		}
		return nil
	})
}

// verifyCommand handles: merkle-proof verify <address>
func verifyCommand(c *cli.Context) error {
	address := c.Args().First()
	if address == "" {
		return cli.Exit("Error: No address provided. Usage: merkle-proof verify <address>", 1)
	}
	if c.NArg() > 1 {
		return cli.Exit(fmt.Sprintf("Error: unexpected arguments %v. Usage: merkle-proof [flags] verify <address>", c.Args().Tail()), 1)
	}

	return withProver(c, func(p *prover.Prover, _ *config.ProofConfig) error {
		verified, err := p.Verify(address)
		if err != nil {
			return fmt.Errorf("failed to verify proof: %w", err)
		}

		fmt.Fprintf(c.App.Writer, "Root: %s\n", verified.Root.Hex())
		if !verified.Result.Found {
			color.New(color.FgYellow).Fprintf(c.App.Writer, "Address %s not found in tree\n", address)
			return nil
		}
		fmt.Fprintf(c.App.Writer, "Leaf: %s (index %d)\n", verified.Result.Leaf.Hex(), verified.Result.LeafIndex)
		for i, sibling := range verified.Result.Proof {
			fmt.Fprintf(c.App.Writer, "  [%d] %s\n", i, sibling.Hex())
		}
		if !verified.Valid {
			return cli.Exit(color.RedString("Proof does not verify against root %s", verified.Root.Hex()), 1)
		}
		color.New(color.FgGreen).Fprintln(c.App.Writer, "Proof verified")
		return nil
	})
}

func printRecord(c *cli.Context, record *persistence.TreeRecord) {
	fmt.Fprintf(c.App.Writer, "%s\troot=%s\tleaves=%d\tsaved=%s\n",
		record.Name,
		record.Root.Hex(),
		record.LeafCount,
		time.Unix(record.SavedAt, 0).UTC().Format(time.RFC3339),
	)
}
