package memory

import (
	"context"
	"sync"
	"time"

	"kotochan-birthday/core"
)

type entry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// memKV is the default in-process backend. Expiry is checked lazily on Get.
type memKV struct {
	mu   sync.RWMutex
	data map[string]entry
}

// NewKV creates a new in-memory store.
func NewKV() *memKV {
	return &memKV{data: make(map[string]entry)}
}

func (s *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	e, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, core.ErrKeyNotFound
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		s.mu.Lock()
		delete(s.data, key)
		s.mu.Unlock()
		return nil, core.ErrKeyNotFound
	}

	// Copy so callers can't mutate the stored slice.
	value := make([]byte, len(e.value))
	copy(value, e.value)
	return value, nil
}

func (s *memKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	e := entry{value: stored}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.data[key] = e
	s.mu.Unlock()
	return nil
}

func (s *memKV) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}
