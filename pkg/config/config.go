package config

import (
	"fmt"
	"path/filepath"

	"github.com/kirsle/configdir"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for the merkle-proof CLI
const (
	EnvTreePath       = "MERKLE_TREE_PATH"
	EnvOutputPath     = "MERKLE_PROOF_OUTPUT"
	EnvOutputFormat   = "MERKLE_PROOF_OUTPUT_FORMAT"
	EnvStoreType      = "MERKLE_STORE_TYPE"
	EnvTreeName       = "MERKLE_TREE_NAME"
	EnvBadgerPath     = "MERKLE_BADGER_PATH"
	EnvRedisAddress   = "MERKLE_REDIS_ADDRESS"
	EnvRedisPassword  = "MERKLE_REDIS_PASSWORD"
	EnvRedisDB        = "MERKLE_REDIS_DB"
	EnvRedisKeyPrefix = "MERKLE_REDIS_KEY_PREFIX"
	EnvVerbose        = "MERKLE_VERBOSE"
)

// Defaults match the file names the proof tooling has always used
const (
	DefaultTreePath     = "tree.json"
	DefaultOutputPath   = "proof.json"
	DefaultOutputFormat = "json"
	DefaultTreeName     = "default"
	DefaultRedisAddress = "localhost:6379"

	appName = "merkle-proof"
)

type StoreType string

func (s StoreType) String() string {
	return string(s)
}

const (
	// StoreTypeFile reads the tree definition straight from TreePath
	StoreTypeFile   StoreType = "file"
	StoreTypeBadger StoreType = "badger"
	StoreTypeRedis  StoreType = "redis"
)

// GetSupportedStoreTypes returns all supported store types
func GetSupportedStoreTypes() []StoreType {
	return []StoreType{StoreTypeFile, StoreTypeBadger, StoreTypeRedis}
}

// GetSupportedStoreTypesString returns supported store types for CLI help
func GetSupportedStoreTypesString() string {
	return fmt.Sprintf("%s, %s, %s", StoreTypeFile, StoreTypeBadger, StoreTypeRedis)
}

// DefaultBadgerPath returns the badger directory under the user's config dir
func DefaultBadgerPath() string {
	return filepath.Join(configdir.LocalConfig(appName), "trees")
}

type RedisConfig struct {
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
}

type StoreConfig struct {
	Type       StoreType    `json:"type" yaml:"type"`
	TreeName   string       `json:"treeName" yaml:"treeName"`
	BadgerPath string       `json:"badgerPath" yaml:"badgerPath"`
	Redis      *RedisConfig `json:"redis,omitempty" yaml:"redis,omitempty"`
}

// ProofConfig is the complete configuration of a proof run
type ProofConfig struct {
	// TreePath is the tree definition file, used by the file store and by import
	TreePath string `json:"treePath" yaml:"treePath"`

	// OutputPath is where the proof result is written
	OutputPath   string `json:"outputPath" yaml:"outputPath"`
	OutputFormat string `json:"outputFormat" yaml:"outputFormat"`

	Store StoreConfig `json:"store" yaml:"store"`

	Verbose bool `json:"verbose" yaml:"verbose"`
}

// Validate checks the configuration and reports every problem at once
func (c *ProofConfig) Validate() error {
	var allErrors field.ErrorList

	if c.TreePath == "" && c.Store.Type == StoreTypeFile {
		allErrors = append(allErrors, field.Required(field.NewPath("treePath"), "treePath is required for the file store"))
	}
	if c.OutputPath == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("outputPath"), "outputPath is required"))
	}
	switch c.OutputFormat {
	case "json", "cbor":
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("outputFormat"), c.OutputFormat, []string{"json", "cbor"}))
	}

	allErrors = append(allErrors, c.Store.validate(field.NewPath("store"))...)

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

func (s *StoreConfig) validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList

	switch s.Type {
	case StoreTypeFile:
		return nil
	case StoreTypeBadger:
		if s.BadgerPath == "" {
			allErrors = append(allErrors, field.Required(path.Child("badgerPath"), "badgerPath is required for the badger store"))
		}
	case StoreTypeRedis:
		if s.Redis == nil || s.Redis.Address == "" {
			allErrors = append(allErrors, field.Required(path.Child("redis", "address"), "redis address is required for the redis store"))
		} else if s.Redis.DB < 0 || s.Redis.DB > 15 {
			allErrors = append(allErrors, field.Invalid(path.Child("redis", "db"), s.Redis.DB, "must be between 0-15"))
		}
	default:
		supported := make([]string, 0, len(GetSupportedStoreTypes()))
		for _, st := range GetSupportedStoreTypes() {
			supported = append(supported, st.String())
		}
		return append(allErrors, field.NotSupported(path.Child("type"), string(s.Type), supported))
	}

	if s.TreeName == "" {
		allErrors = append(allErrors, field.Required(path.Child("treeName"), "treeName is required for stored trees"))
	}
	return allErrors
}
