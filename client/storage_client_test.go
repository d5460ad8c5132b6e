// client/storage_client_test.go
package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notyourkokoro/FDB/client"
	gateway_errors "github.com/notyourkokoro/FDB/errors"
	"github.com/notyourkokoro/FDB/model"
)

func TestStorageReadSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/storage/records/doc/42", r.URL.Path)
		assert.Equal(t, "v2", r.URL.Query().Get("qualifier"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"payload":      map[string]int{"a": 1},
			"commit_stamp": 9,
		})
	}))
	defer server.Close()

	storageClient := client.NewStorageClient(server.URL, time.Second, 0)
	record, err := storageClient.Read(context.Background(), model.ResourceKey{Type: "doc", ID: "42", Qualifier: "v2"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(record.Payload))
	assert.Equal(t, int64(9), record.CommitStamp)
}

func TestStorageReadNotFoundNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	storageClient := client.NewStorageClient(server.URL, time.Second, 3)
	_, err := storageClient.Read(context.Background(), model.ResourceKey{Type: "doc", ID: "missing"})
	assert.ErrorIs(t, err, gateway_errors.ErrRecordNotFound)
	assert.Equal(t, int32(1), calls.Load(), "not-found must not be retried")
}

func TestStorageReadRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"payload":      "ok",
			"commit_stamp": 1,
		})
	}))
	defer server.Close()

	storageClient := client.NewStorageClient(server.URL, time.Second, 2)
	record, err := storageClient.Read(context.Background(), model.ResourceKey{Type: "doc", ID: "1"})
	require.NoError(t, err, "a transient 5xx must be retried on the read path")
	assert.Equal(t, int64(1), record.CommitStamp)
	assert.Equal(t, int32(2), calls.Load())
}

func TestStorageReadExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	storageClient := client.NewStorageClient(server.URL, time.Second, 2)
	_, err := storageClient.Read(context.Background(), model.ResourceKey{Type: "doc", ID: "1"})
	assert.ErrorIs(t, err, gateway_errors.ErrUnavailable)
	assert.Equal(t, int32(3), calls.Load(), "retry attempts are bounded")
}

func TestStorageWriteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/storage/records/doc/3", r.URL.Path)

		var body struct {
			Payload         json.RawMessage `json:"payload"`
			ExpectedVersion int64           `json:"expected_version"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.JSONEq(t, `"v1"`, string(body.Payload))
		assert.Equal(t, int64(0), body.ExpectedVersion)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]int64{"commit_stamp": 1})
	}))
	defer server.Close()

	storageClient := client.NewStorageClient(server.URL, time.Second, 0)
	stamp, err := storageClient.Write(context.Background(), model.ResourceKey{Type: "doc", ID: "3"}, json.RawMessage(`"v1"`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stamp)
}

func TestStorageWriteConflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	storageClient := client.NewStorageClient(server.URL, time.Second, 0)
	_, err := storageClient.Write(context.Background(), model.ResourceKey{Type: "doc", ID: "3"}, json.RawMessage(`"v2"`), 0)
	assert.ErrorIs(t, err, gateway_errors.ErrConflict)
}

func TestStorageWriteNeverRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	storageClient := client.NewStorageClient(server.URL, time.Second, 5)
	_, err := storageClient.Write(context.Background(), model.ResourceKey{Type: "doc", ID: "3"}, json.RawMessage(`"v1"`), 0)
	assert.ErrorIs(t, err, gateway_errors.ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load(), "writes surface unavailability instead of retrying")
}
