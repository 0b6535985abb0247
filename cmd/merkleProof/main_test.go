package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/Layr-Labs/merkle-proof-go/pkg/config"
	"github.com/Layr-Labs/merkle-proof-go/pkg/testutil"
)

// runApp runs the CLI with args and returns its stdout. Exit calls are recorded instead of
// terminating the test binary.
func runApp(t *testing.T, args ...string) (string, int, error) {
	t.Helper()

	exitCode := 0
	oldExiter, oldErrWriter := cli.OsExiter, cli.ErrWriter
	cli.OsExiter = func(code int) { exitCode = code }
	cli.ErrWriter = &bytes.Buffer{}
	t.Cleanup(func() {
		cli.OsExiter = oldExiter
		cli.ErrWriter = oldErrWriter
	})

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}

	err := app.Run(append([]string{"merkle-proof"}, args...))
	return out.String(), exitCode, err
}

func TestProveCommand(t *testing.T) {
	values := testutil.CreateTestAddressValues(5)
	treePath := testutil.WriteTestTreeFile(t, testutil.CreateTestTreeDump(t, testutil.AddressLeafEncoding, values))
	outputPath := filepath.Join(t.TempDir(), "proof.json")

	t.Run("Found", func(t *testing.T) {
		out, _, err := runApp(t, "--tree", treePath, "--output", outputPath, values[2][0].(string))
		require.NoError(t, err)
		assert.Contains(t, out, "Proof saved to "+outputPath)

		data, err := os.ReadFile(outputPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"proof": [`)
	})

	t.Run("Not found", func(t *testing.T) {
		out, _, err := runApp(t, "--tree", treePath, "--output", outputPath, "0x000000000000000000000000000000000000dEaD")
		require.NoError(t, err)
		assert.Contains(t, out, `"proof": ""`)

		data, err := os.ReadFile(outputPath)
		require.NoError(t, err)
		assert.JSONEq(t, `{"proof": ""}`, string(data))
	})
}

func TestProveCommandMissingAddress(t *testing.T) {
	_, code, err := runApp(t)
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, err.Error(), "No address provided")
}

func TestProveCommandRejectsFlagsAfterAddress(t *testing.T) {
	values := testutil.CreateTestAddressValues(2)
	treePath := testutil.WriteTestTreeFile(t, testutil.CreateTestTreeDump(t, testutil.AddressLeafEncoding, values))
	outputPath := filepath.Join(t.TempDir(), "proof.json")

	_, code, err := runApp(t, "--output", outputPath, values[0][0].(string), "--tree", treePath)
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, err.Error(), "--tree")

	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr))

	_, code, err = runApp(t, "verify", values[0][0].(string), "extra")
	require.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestProveCommandBadTreeWritesNothing(t *testing.T) {
	treePath := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, os.WriteFile(treePath, []byte(`{}`), 0o600))
	outputPath := filepath.Join(t.TempDir(), "proof.json")

	_, _, err := runApp(t, "--tree", treePath, "--output", outputPath, "0x1111111111111111111111111111111111111111")
	require.Error(t, err)

	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestProveCommandInvalidConfig(t *testing.T) {
	_, code, err := runApp(t, "--output-format", "xml", "0x1111111111111111111111111111111111111111")
	require.Error(t, err)
	assert.Equal(t, 1, code)
	assert.Contains(t, err.Error(), "outputFormat")
}

func TestImportListVerifyWithBadger(t *testing.T) {
	values := testutil.CreateTestAddressValues(4)
	treePath := testutil.WriteTestTreeFile(t, testutil.CreateTestTreeDump(t, testutil.AddressLeafEncoding, values))
	badgerPath := t.TempDir()
	storeFlags := []string{"--store", "badger", "--badger-path", badgerPath, "--tree-name", "airdrop"}

	out, _, err := runApp(t, append(append([]string{}, storeFlags...), "--tree", treePath, "import", "airdrop")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported airdrop into badger store")

	out, _, err = runApp(t, append(append([]string{}, storeFlags...), "list")...)
	require.NoError(t, err)
	assert.Contains(t, out, "airdrop\troot=0x")
	assert.Contains(t, out, "leaves=4")

	out, _, err = runApp(t, append(append([]string{}, storeFlags...), "verify", values[3][0].(string))...)
	require.NoError(t, err)
	assert.Contains(t, out, "Proof verified")
}

func TestBuildConfigFromFlags(t *testing.T) {
	var captured *config.ProofConfig
	app := newApp()
	app.Action = func(c *cli.Context) error {
		captured = buildConfig(c)
		return nil
	}

	err := app.Run([]string{"merkle-proof",
		"--tree", "airdrop.json",
		"--output", "out.cbor",
		"--output-format", "cbor",
		"--store", "redis",
		"--redis-address", "redis:6379",
		"--redis-db", "3",
		"--verbose",
	})
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Equal(t, "airdrop.json", captured.TreePath)
	assert.Equal(t, "out.cbor", captured.OutputPath)
	assert.Equal(t, "cbor", captured.OutputFormat)
	assert.Equal(t, config.StoreTypeRedis, captured.Store.Type)
	assert.Equal(t, config.DefaultTreeName, captured.Store.TreeName)
	assert.Equal(t, "redis:6379", captured.Store.Redis.Address)
	assert.Equal(t, 3, captured.Store.Redis.DB)
	assert.True(t, captured.Verbose)
	require.NoError(t, captured.Validate())
}
