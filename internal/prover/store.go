package prover

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proof-go/pkg/config"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence/badger"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence/redis"
)

// NewTreeStore opens the store selected by cfg. The file store has no backing
// ITreeStore and returns nil.
func NewTreeStore(cfg *config.StoreConfig, logger *zap.Logger) (persistence.ITreeStore, error) {
	switch cfg.Type {
	case config.StoreTypeFile:
		return nil, nil
	case config.StoreTypeBadger:
		store, err := badger.NewBadgerPersistence(cfg.BadgerPath, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StoreTypeRedis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("redis store selected without redis configuration")
		}
		store, err := redis.NewRedisPersistence(&redis.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported store type %q (supported: %s)", cfg.Type, config.GetSupportedStoreTypesString())
	}
}
