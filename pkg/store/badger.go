package store

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	log "github.com/sirupsen/logrus"
)

// OpenBadger opens a badger database at dir. An empty dir opens an in-memory database.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Badger{DB: db}, nil
}

var _ Store = (*Badger)(nil)

// Badger stores values in a badger database.
type Badger struct {
	DB *badger.DB
}

// Get implements Store
func (b *Badger) Get(ctx context.Context, key string) (res []byte, ok bool, err error) {
	err = b.DB.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		res, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	log.WithField("key", key).WithField("hit", ok).Debug("store lookup")
	return res, ok, nil
}

// Put implements Store
func (b *Badger) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.DB.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Remember implements Store
func (b *Badger) Remember(ctx context.Context, key string, ttl time.Duration, produce Producer) ([]byte, error) {
	return remember(ctx, b, key, ttl, produce)
}

func (b *Badger) Close() error {
	return b.DB.Close()
}
