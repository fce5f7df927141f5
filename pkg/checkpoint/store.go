package checkpoint

import (
	"context"
	"fmt"

	"sinacrawler/pkg/config"
	"sinacrawler/pkg/logger"
)

// Store is the key-value contract checkpoints are persisted through.
// Get reports found=false for an absent key.
type Store interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NewStore builds the backend selected in cfg
func NewStore(ctx context.Context, cfg config.CheckpointConfig, log logger.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, log)
	case config.BackendFile:
		dir := cfg.FileDirectory
		if dir == "" {
			var err error
			dir, err = DefaultDirectory()
			if err != nil {
				return nil, err
			}
		}
		return NewFileStore(dir, log)
	case config.BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", cfg.Backend)
	}
}
