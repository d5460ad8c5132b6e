// cache/key.go
package cache

import (
	"net/url"

	"github.com/notyourkokoro/FDB/model"
)

// Key derives the cache key for a resource key. Each field is escaped so
// the encoding stays injective even when ids contain the separator, and the
// namespace tag keeps resource types from colliding with other keyspaces
// (locks, rate limits) in the same Redis.
func Key(namespace string, key model.ResourceKey) string {
	return namespace + ":record:" +
		url.QueryEscape(key.Type) + ":" +
		url.QueryEscape(key.ID) + ":" +
		url.QueryEscape(key.Qualifier)
}
