package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *ProofConfig {
	return &ProofConfig{
		TreePath:     DefaultTreePath,
		OutputPath:   DefaultOutputPath,
		OutputFormat: DefaultOutputFormat,
		Store: StoreConfig{
			Type:     StoreTypeFile,
			TreeName: DefaultTreeName,
		},
	}
}

func TestProofConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(c *ProofConfig)
		wantErr []string
	}{
		{
			name:   "Valid file store",
			mutate: func(c *ProofConfig) {},
		},
		{
			name: "Valid badger store",
			mutate: func(c *ProofConfig) {
				c.Store.Type = StoreTypeBadger
				c.Store.BadgerPath = "/tmp/trees"
			},
		},
		{
			name: "Valid redis store without tree path",
			mutate: func(c *ProofConfig) {
				c.TreePath = ""
				c.Store.Type = StoreTypeRedis
				c.Store.Redis = &RedisConfig{Address: DefaultRedisAddress, DB: 3}
			},
		},
		{
			name: "Missing tree path",
			mutate: func(c *ProofConfig) {
				c.TreePath = ""
			},
			wantErr: []string{"treePath"},
		},
		{
			name: "Missing output and bad format",
			mutate: func(c *ProofConfig) {
				c.OutputPath = ""
				c.OutputFormat = "yaml"
			},
			wantErr: []string{"outputPath", "outputFormat"},
		},
		{
			name: "Unknown store",
			mutate: func(c *ProofConfig) {
				c.Store.Type = "s3"
			},
			wantErr: []string{"store.type"},
		},
		{
			name: "Badger without path or name",
			mutate: func(c *ProofConfig) {
				c.Store.Type = StoreTypeBadger
				c.Store.TreeName = ""
			},
			wantErr: []string{"store.badgerPath", "store.treeName"},
		},
		{
			name: "Redis without address",
			mutate: func(c *ProofConfig) {
				c.Store.Type = StoreTypeRedis
			},
			wantErr: []string{"store.redis.address"},
		},
		{
			name: "Redis db out of range",
			mutate: func(c *ProofConfig) {
				c.Store.Type = StoreTypeRedis
				c.Store.Redis = &RedisConfig{Address: DefaultRedisAddress, DB: 16}
			},
			wantErr: []string{"store.redis.db"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if len(tc.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, fieldName := range tc.wantErr {
				assert.Contains(t, err.Error(), fieldName)
			}
		})
	}
}

func TestDefaultBadgerPath(t *testing.T) {
	path := DefaultBadgerPath()
	assert.True(t, strings.HasSuffix(path, "trees"))
	assert.Contains(t, path, appName)
}

func TestGetSupportedStoreTypesString(t *testing.T) {
	assert.Equal(t, "file, badger, redis", GetSupportedStoreTypesString())
}
