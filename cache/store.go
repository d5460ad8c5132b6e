// cache/store.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by Store.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Store is the logical get/set/delete-with-ttl surface of the cache store.
// The production implementation is Redis; tests substitute an in-memory one.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetIfNewer writes the entry unless the cached entry carries a strictly
	// higher commit stamp (a racing writer already put something fresher).
	// Returns whether the write was applied. The check and write are atomic.
	SetIfNewer(ctx context.Context, key string, value []byte, commitStamp int64, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// setIfNewerScript compares the commit stamp inside the stored JSON entry
// against the candidate's stamp server-side, so racing writers on different
// gateway instances cannot interleave between read and write.
var setIfNewerScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current then
	local entry = cjson.decode(current)
	if tonumber(entry['commit_stamp']) > tonumber(ARGV[2]) then
		return 0
	end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	} else if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return value, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

func (s *RedisStore) SetIfNewer(ctx context.Context, key string, value []byte, commitStamp int64, ttl time.Duration) (bool, error) {
	applied, err := setIfNewerScript.Run(ctx, s.client,
		[]string{key}, value, commitStamp, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to conditionally set cache entry: %w", err)
	}
	return applied == 1, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
