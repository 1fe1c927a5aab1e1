package badger

import (
	"context"
	"log"
	"time"

	"kotochan-birthday/core"

	badger "github.com/dgraph-io/badger/v4"
)

type badgerKV struct {
	db *badger.DB
}

// NewKV creates a new Badger-based store. Badger handles TTL natively, so
// session records expire without any lazy cleanup on our side.
func NewKV(dbPath string) *badgerKV {
	opts := badger.DefaultOptions(dbPath).
		WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("failed to open badger database: %v", err)
	}
	return &badgerKV{db}
}

func (s *badgerKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return nil, core.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *badgerKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (s *badgerKV) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Close releases the underlying database. Only used on shutdown.
func (s *badgerKV) Close() error {
	return s.db.Close()
}
