// test/mock/cache_store.go
package mock

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/notyourkokoro/FDB/cache"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of cache.Store for tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	// FailAll makes every operation error, simulating a cache outage.
	FailAll bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

var errStoreDown = errors.New("cache store down")

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return nil, errStoreDown
	}
	entry, ok := s.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return nil, cache.ErrCacheMiss
	}
	return entry.value, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return errStoreDown
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) SetIfNewer(ctx context.Context, key string, value []byte, commitStamp int64, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return false, errStoreDown
	}
	if entry, ok := s.entries[key]; ok && time.Now().Before(entry.expiresAt) {
		var current struct {
			CommitStamp int64 `json:"commit_stamp"`
		}
		if err := json.Unmarshal(entry.value, &current); err == nil && current.CommitStamp > commitStamp {
			return false, nil
		}
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAll {
		return errStoreDown
	}
	delete(s.entries, key)
	return nil
}

// Len reports the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
