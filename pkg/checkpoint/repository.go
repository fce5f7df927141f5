package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"

	errs "sinacrawler/pkg/errors"
	"sinacrawler/pkg/logger"
)

// Key returns the store key for an account, e.g. sina:1669879400:his
func Key(platform, uid string) string {
	return fmt.Sprintf("%s:%s:his", platform, uid)
}

// Repository loads and saves checkpoints for one platform
type Repository struct {
	store    Store
	platform string
	logger   logger.Logger
}

// NewRepository wraps store
func NewRepository(store Store, platform string, log logger.Logger) *Repository {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Repository{store: store, platform: platform, logger: log}
}

// Key returns the store key for uid
func (r *Repository) Key(uid string) string {
	return Key(r.platform, uid)
}

// Load returns the stored checkpoint for uid, or the zero checkpoint when
// none exists. A stored value that is not a JSON object is an
// ErrorTypeCheckpoint error.
func (r *Repository) Load(ctx context.Context, uid string) (Checkpoint, error) {
	key := r.Key(uid)

	value, found, err := r.store.Get(ctx, key)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("checkpoint store unavailable: %w", err)
	}
	if !found {
		r.logger.DebugWithFields("no checkpoint stored", map[string]interface{}{"key": key})
		return Checkpoint{}, nil
	}

	cp, err := Decode(value)
	if err != nil {
		return Checkpoint{}, &errs.Error{
			Type:    errs.ErrorTypeCheckpoint,
			Message: fmt.Sprintf("value under %s is corrupt: %v", key, err),
		}
	}

	r.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"key":           key,
		"newest":        cp.NewestCreateAt,
		"crawled_pages": cp.CrawledPages,
	})
	return cp, nil
}

// Save overwrites the stored checkpoint for uid
func (r *Repository) Save(ctx context.Context, uid string, cp Checkpoint) error {
	key := r.Key(uid)

	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := r.store.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to persist checkpoint: %w", err)
	}

	logger.LogCheckpointWrite(r.logger, key, cp.CrawledPages, cp.NewestCreateAt)
	return nil
}

// Reset deletes the stored checkpoint for uid
func (r *Repository) Reset(ctx context.Context, uid string) error {
	key := r.Key(uid)
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to reset checkpoint: %w", err)
	}
	r.logger.InfoWithFields("checkpoint reset", map[string]interface{}{"key": key})
	return nil
}

// Decode parses a stored checkpoint value
func Decode(value string) (Checkpoint, error) {
	var cp *Checkpoint
	if err := json.Unmarshal([]byte(value), &cp); err != nil {
		return Checkpoint{}, err
	}
	if cp == nil {
		return Checkpoint{}, fmt.Errorf("value is null")
	}
	if cp.CrawledPages < 0 {
		return Checkpoint{}, fmt.Errorf("crawled_pages is negative (%d)", cp.CrawledPages)
	}
	return *cp, nil
}
