// cache/coordinator.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/notyourkokoro/FDB/client"
	logger "github.com/notyourkokoro/FDB/logging"
	"github.com/notyourkokoro/FDB/model"
)

// Coordinator owns the cache: key derivation, read-through population with
// per-key single-flight de-duplication, and write-through population ordered
// by storage commit stamps. No other component touches cache entries.
//
// The cache is a disposable projection of storage. A cache outage therefore
// degrades to direct reads against the storage service; it never fails a
// request on its own.
type Coordinator struct {
	store      Store
	storage    client.IStorageClient
	namespace  string
	ttls       map[string]time.Duration
	defaultTTL time.Duration
	flights    singleflight.Group
}

func NewCoordinator(store Store, storage client.IStorageClient, namespace string, ttls map[string]time.Duration, defaultTTL time.Duration) *Coordinator {
	return &Coordinator{
		store:      store,
		storage:    storage,
		namespace:  namespace,
		ttls:       ttls,
		defaultTTL: defaultTTL,
	}
}

func (c *Coordinator) ttlFor(resourceType string) time.Duration {
	if ttl, ok := c.ttls[resourceType]; ok {
		return ttl
	}
	return c.defaultTTL
}

// lookup returns the cached record for cacheKey, treating every store
// failure as a miss so the request can fall through to storage.
func (c *Coordinator) lookup(ctx context.Context, cacheKey string) (*model.Record, bool) {
	value, err := c.store.Get(ctx, cacheKey)
	if err == ErrCacheMiss {
		return nil, false
	} else if err != nil {
		logger.Warn("Cache store unavailable, bypassing cache",
			zap.String("cacheKey", cacheKey), zap.Error(err))
		return nil, false
	}

	var entry model.CacheEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		logger.Warn("Dropping undecodable cache entry",
			zap.String("cacheKey", cacheKey), zap.Error(err))
		if delErr := c.store.Delete(ctx, cacheKey); delErr != nil {
			logger.Warn("Failed to drop cache entry", zap.String("cacheKey", cacheKey), zap.Error(delErr))
		}
		return nil, false
	}

	return entry.Record(), true
}

func (c *Coordinator) populate(ctx context.Context, cacheKey string, record *model.Record, ttl time.Duration) {
	entry := model.CacheEntry{
		Payload:     record.Payload,
		CommitStamp: record.CommitStamp,
		InsertedAt:  time.Now().UTC(),
	}
	value, err := json.Marshal(entry)
	if err != nil {
		logger.Error("Failed to marshal cache entry", zap.String("cacheKey", cacheKey), zap.Error(err))
		return
	}

	// SetIfNewer so a concurrent write-through with a higher commit stamp
	// is never clobbered by this read's (possibly older) snapshot.
	applied, err := c.store.SetIfNewer(ctx, cacheKey, value, record.CommitStamp, ttl)
	if err != nil {
		logger.Warn("Failed to populate cache entry",
			zap.String("cacheKey", cacheKey), zap.Error(err))
		return
	}
	if !applied {
		logger.Debug("Skipped cache population, newer entry present",
			zap.String("cacheKey", cacheKey), zap.Int64("commitStamp", record.CommitStamp))
	}
}

// Get serves a record read-through: cache hit, or a single storage read
// shared by every concurrent caller of the same key.
func (c *Coordinator) Get(ctx context.Context, key model.ResourceKey) (*model.Record, error) {
	cacheKey := Key(c.namespace, key)

	if record, ok := c.lookup(ctx, cacheKey); ok {
		return record, nil
	}

	// The singleflight group is the in-flight request token: at most one
	// storage read per key across all concurrent callers. The fetch runs on
	// a detached context so a cancelled initiator cannot fail the populate
	// out from under the remaining waiters.
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(cacheKey, func() (interface{}, error) {
		if record, ok := c.lookup(fetchCtx, cacheKey); ok {
			return record, nil
		}

		record, err := c.storage.Read(fetchCtx, key)
		if err != nil {
			// No partial success: nothing is cached and every waiter
			// receives this same failure.
			return nil, err
		}

		c.populate(fetchCtx, cacheKey, record, c.ttlFor(key.Type))
		return record, nil
	})

	select {
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*model.Record), nil
	case <-ctx.Done():
		// Detach: the in-progress populate and its other waiters continue.
		return nil, ctx.Err()
	}
}

// Put writes through: storage first, then the cache, with the storage
// commit stamp as the sole ordering authority. A failed write leaves the
// cache exactly as it was.
func (c *Coordinator) Put(ctx context.Context, key model.ResourceKey, payload json.RawMessage, expectedVersion int64) (int64, error) {
	commitStamp, err := c.storage.Write(ctx, key, payload, expectedVersion)
	if err != nil {
		return 0, err
	}

	cacheKey := Key(c.namespace, key)
	record := &model.Record{Payload: payload, CommitStamp: commitStamp}
	entry := model.CacheEntry{
		Payload:     record.Payload,
		CommitStamp: record.CommitStamp,
		InsertedAt:  time.Now().UTC(),
	}
	value, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		logger.Error("Failed to marshal cache entry", zap.String("cacheKey", cacheKey), zap.Error(marshalErr))
		return commitStamp, nil
	}

	applied, storeErr := c.store.SetIfNewer(ctx, cacheKey, value, commitStamp, c.ttlFor(key.Type))
	if storeErr != nil {
		// The write is already committed; the entry this instance can no
		// longer refresh must not outlive it, so drop it best-effort.
		logger.Warn("Failed to write through cache, invalidating",
			zap.String("cacheKey", cacheKey), zap.Error(storeErr))
		if delErr := c.store.Delete(ctx, cacheKey); delErr != nil {
			logger.Warn("Failed to invalidate cache entry",
				zap.String("cacheKey", cacheKey), zap.Error(delErr))
		}
		return commitStamp, nil
	}
	if !applied {
		logger.Debug("Skipped cache population, newer entry present",
			zap.String("cacheKey", cacheKey), zap.Int64("commitStamp", commitStamp))
	}

	return commitStamp, nil
}

// Invalidate drops the cached entry for a key. This is the in-process end
// of the external invalidation signal.
func (c *Coordinator) Invalidate(ctx context.Context, key model.ResourceKey) error {
	cacheKey := Key(c.namespace, key)
	if err := c.store.Delete(ctx, cacheKey); err != nil {
		return fmt.Errorf("failed to invalidate %s: %w", key.String(), err)
	}
	logger.Debug("Cache entry invalidated", zap.String("cacheKey", cacheKey))
	return nil
}
