package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// NewMemory produces an in-process store that holds at most maxBytes of values.
func NewMemory(maxBytes int64) (*Memory, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     maxBytes,
		BufferItems: 64,

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Memory{cache: c}, nil
}

var _ Store = (*Memory)(nil)

// Memory keeps values in a ristretto cache. Values may be evicted under
// memory pressure regardless of their TTL.
type Memory struct {
	cache *ristretto.Cache
}

// Get implements Store
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false, fmt.Errorf("unexpected value type %T under %s", v, key)
	}
	return b, true, nil
}

// Put implements Store
func (m *Memory) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	val := make([]byte, len(value))
	copy(val, value)

	if !m.cache.SetWithTTL(key, val, int64(len(val)), ttl) {
		return fmt.Errorf("value for %s was rejected by the cache", key)
	}
	m.cache.Wait()
	return nil
}

// Remember implements Store
func (m *Memory) Remember(ctx context.Context, key string, ttl time.Duration, produce Producer) ([]byte, error) {
	return remember(ctx, m, key, ttl, produce)
}

func (m *Memory) Close() error {
	m.cache.Close()
	return nil
}
