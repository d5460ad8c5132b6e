// model/record.go
package model

import (
	"encoding/json"
	"time"
)

// Record is a data item served by the gateway. CommitStamp is the monotonic
// per-key marker assigned by the storage service on each successful write;
// it orders cache freshness.
type Record struct {
	Payload     json.RawMessage `json:"payload"`
	CommitStamp int64           `json:"commit_stamp"`
}

// CacheEntry is what the cache coordinator stores in Redis for one record.
type CacheEntry struct {
	Payload     json.RawMessage `json:"payload"`
	CommitStamp int64           `json:"commit_stamp"`
	InsertedAt  time.Time       `json:"inserted_at"`
}

func (e CacheEntry) Record() *Record {
	return &Record{Payload: e.Payload, CommitStamp: e.CommitStamp}
}
