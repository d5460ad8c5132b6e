// test/mock/storage.go
package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/notyourkokoro/FDB/model"
)

// StubStorageClient is a function-backed implementation of
// client.IStorageClient that counts calls; handy for the concurrency tests
// where expectation-style mocks get in the way.
type StubStorageClient struct {
	ReadFunc  func(ctx context.Context, key model.ResourceKey) (*model.Record, error)
	WriteFunc func(ctx context.Context, key model.ResourceKey, payload json.RawMessage, expectedVersion int64) (int64, error)

	mu     sync.Mutex
	reads  int
	writes int
}

func (s *StubStorageClient) Read(ctx context.Context, key model.ResourceKey) (*model.Record, error) {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
	return s.ReadFunc(ctx, key)
}

func (s *StubStorageClient) Write(ctx context.Context, key model.ResourceKey, payload json.RawMessage, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return s.WriteFunc(ctx, key, payload, expectedVersion)
}

func (s *StubStorageClient) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *StubStorageClient) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
