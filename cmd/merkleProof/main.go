package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/merkle-proof-go/pkg/config"
)

func newApp() *cli.App {
	return &cli.App{
		Name:      "merkle-proof",
		Usage:     "Generate Merkle membership proofs from an OpenZeppelin standard tree",
		UsageText: "merkle-proof [flags] <address>",
		Description: `Looks up an address in a StandardMerkleTree dump and writes its proof.

The tree is read from a standard-v1 JSON definition, or from a tree previously
imported into a badger or redis store. The proof is written to the output file
as {"proof": [...]}; an address that is not in the tree yields {"proof": ""}.

Flags must be given before the address; anything after it is rejected.`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "tree",
				Usage:   "Path to the tree definition file",
				Value:   config.DefaultTreePath,
				EnvVars: []string{config.EnvTreePath},
			},
			&cli.StringFlag{
				Name:    "output",
				Usage:   "Path of the proof file to write",
				Value:   config.DefaultOutputPath,
				EnvVars: []string{config.EnvOutputPath},
			},
			&cli.StringFlag{
				Name:    "output-format",
				Usage:   "Proof file encoding (json, cbor)",
				Value:   config.DefaultOutputFormat,
				EnvVars: []string{config.EnvOutputFormat},
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "Where trees are read from (" + config.GetSupportedStoreTypesString() + ")",
				Value:   config.StoreTypeFile.String(),
				EnvVars: []string{config.EnvStoreType},
			},
			&cli.StringFlag{
				Name:    "tree-name",
				Usage:   "Name of the stored tree",
				Value:   config.DefaultTreeName,
				EnvVars: []string{config.EnvTreeName},
			},
			&cli.StringFlag{
				Name:    "badger-path",
				Usage:   "Badger database directory",
				Value:   config.DefaultBadgerPath(),
				EnvVars: []string{config.EnvBadgerPath},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Usage:   "Redis server address",
				Value:   config.DefaultRedisAddress,
				EnvVars: []string{config.EnvRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Usage:   "Redis database number (0-15)",
				EnvVars: []string{config.EnvRedisDB},
			},
			&cli.StringFlag{
				Name:    "redis-key-prefix",
				Usage:   "Prefix prepended to every redis key",
				EnvVars: []string{config.EnvRedisKeyPrefix},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable debug logging",
				EnvVars: []string{config.EnvVerbose},
			},
		},
		Action: proveCommand,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Validate the tree file and save it into the configured store",
				ArgsUsage: "<name>",
				Action:    importCommand,
			},
			{
				Name:   "list",
				Usage:  "List stored trees",
				Action: listCommand,
			},
			{
				Name:      "verify",
				Usage:     "Compute a proof and check it against the tree root",
				ArgsUsage: "<address>",
				Action:    verifyCommand,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
