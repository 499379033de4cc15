// Package cache provides the time-boxed key/value store used to memoise
// scraped market data. Values are stored as encoded bytes, so every read
// within one entry's lifetime returns an identical value.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Store is a key/value store with per-entry expiry. A ttl <= 0 stores the
// entry without expiry.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON reads and decodes a cached value. A decode failure is reported as
// an error and the entry treated as missing by callers.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T
	b, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return out, false, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, false, fmt.Errorf("decode cache entry %s: %w", key, err)
	}
	return out, true, nil
}

// SetJSON encodes and stores a value.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", key, err)
	}
	return s.Set(ctx, key, b, ttl)
}
