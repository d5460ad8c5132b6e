// client/storage_client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	gateway_errors "github.com/notyourkokoro/FDB/errors"
	logger "github.com/notyourkokoro/FDB/logging"
	"github.com/notyourkokoro/FDB/model"
)

// IStorageClient is the typed client to the storage service. It is a
// stateless protocol adapter: it owns no data, only the connection pool.
type IStorageClient interface {
	Read(ctx context.Context, key model.ResourceKey) (*model.Record, error)
	Write(ctx context.Context, key model.ResourceKey, payload json.RawMessage, expectedVersion int64) (int64, error)
}

type StorageClient struct {
	baseURL     string
	httpClient  *http.Client
	readRetries uint64
}

func NewStorageClient(baseURL string, timeout time.Duration, readRetries int) *StorageClient {
	if readRetries < 0 {
		readRetries = 0
	}
	return &StorageClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
		readRetries: uint64(readRetries),
	}
}

func (sc *StorageClient) recordURL(key model.ResourceKey) string {
	u := fmt.Sprintf("%s/storage/records/%s/%s",
		sc.baseURL, url.PathEscape(key.Type), url.PathEscape(key.ID))
	if key.Qualifier != "" {
		u += "?qualifier=" + url.QueryEscape(key.Qualifier)
	}
	return u
}

// Read fetches a record and its commit stamp. Reads are idempotent, so
// Unavailable results are retried with exponential backoff up to the
// configured attempt limit; NotFound is terminal and never retried.
func (sc *StorageClient) Read(ctx context.Context, key model.ResourceKey) (*model.Record, error) {
	var record *model.Record

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sc.recordURL(key), nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build storage request: %w", err))
		}

		resp, err := sc.httpClient.Do(req)
		if err != nil {
			logger.Warn("Storage read failed, will retry",
				zap.String("key", key.String()), zap.Error(err))
			return fmt.Errorf("storage service request failed: %w", gateway_errors.ErrUnavailable)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var rec model.Record
			if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
				return backoff.Permanent(fmt.Errorf("failed to decode storage response: %w", gateway_errors.ErrUnavailable))
			}
			record = &rec
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("record %s: %w", key.String(), gateway_errors.ErrRecordNotFound))
		case resp.StatusCode >= http.StatusInternalServerError:
			logger.Warn("Storage read error, will retry",
				zap.String("key", key.String()), zap.Int("status", resp.StatusCode))
			return fmt.Errorf("storage service returned %d: %w", resp.StatusCode, gateway_errors.ErrUnavailable)
		default:
			return backoff.Permanent(fmt.Errorf("storage service returned %d: %w", resp.StatusCode, gateway_errors.ErrInvalidRequest))
		}
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), sc.readRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, err
	}
	return record, nil
}

type writeRecordRequest struct {
	Payload         json.RawMessage `json:"payload"`
	ExpectedVersion int64           `json:"expected_version"`
	Qualifier       string          `json:"qualifier,omitempty"`
}

type writeRecordResponse struct {
	CommitStamp int64 `json:"commit_stamp"`
}

// Write commits a record and returns the storage-assigned commit stamp.
// Writes are never retried here: a replayed write is not known to be
// idempotent, and an ambiguous double-write is worse than a surfaced
// Unavailable.
func (sc *StorageClient) Write(ctx context.Context, key model.ResourceKey, payload json.RawMessage, expectedVersion int64) (int64, error) {
	body, err := json.Marshal(writeRecordRequest{
		Payload:         payload,
		ExpectedVersion: expectedVersion,
		Qualifier:       key.Qualifier,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal write request: %w", err)
	}

	u := fmt.Sprintf("%s/storage/records/%s/%s",
		sc.baseURL, url.PathEscape(key.Type), url.PathEscape(key.ID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build storage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := sc.httpClient.Do(req)
	if err != nil {
		logger.Warn("Storage write failed",
			zap.String("key", key.String()), zap.Error(err))
		return 0, fmt.Errorf("storage service request failed: %w", gateway_errors.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var result writeRecordResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode storage response: %w", gateway_errors.ErrUnavailable)
		}
		return result.CommitStamp, nil
	case resp.StatusCode == http.StatusConflict:
		return 0, fmt.Errorf("record %s expected version %d: %w", key.String(), expectedVersion, gateway_errors.ErrConflict)
	case resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("record %s: %w", key.String(), gateway_errors.ErrRecordNotFound)
	case resp.StatusCode >= http.StatusInternalServerError:
		return 0, fmt.Errorf("storage service returned %d: %w", resp.StatusCode, gateway_errors.ErrUnavailable)
	default:
		return 0, fmt.Errorf("storage service returned %d: %w", resp.StatusCode, gateway_errors.ErrInvalidRequest)
	}
}
