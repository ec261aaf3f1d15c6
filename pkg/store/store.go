// Package store provides the key/value backing stores that container
// listings are cached in.
package store

import (
	"context"
	"time"
)

// NoExpiry is the TTL of values that stay in the store until they are
// overwritten or evicted.
const NoExpiry time.Duration = 0

// Producer computes a value on a cache miss.
type Producer func(ctx context.Context) ([]byte, error)

// Store is a key/value store with optional per-value expiry.
type Store interface {
	// Get returns the value stored under key. ok is false if there is none.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key. A ttl of NoExpiry disables expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Remember returns the value stored under key, or calls produce and stores
	// its result if there is none. Nothing is stored when produce fails.
	Remember(ctx context.Context, key string, ttl time.Duration, produce Producer) ([]byte, error)
}

func remember(ctx context.Context, s Store, key string, ttl time.Duration, produce Producer) ([]byte, error) {
	val, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if ok {
		return val, nil
	}

	val, err = produce(ctx)
	if err != nil {
		return nil, err
	}
	err = s.Put(ctx, key, val, ttl)
	if err != nil {
		return nil, err
	}
	return val, nil
}
