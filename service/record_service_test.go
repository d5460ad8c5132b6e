// service/record_service_test.go
package service_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/notyourkokoro/FDB/cache"
	gateway_errors "github.com/notyourkokoro/FDB/errors"
	logger "github.com/notyourkokoro/FDB/logging"
	"github.com/notyourkokoro/FDB/model"
	"github.com/notyourkokoro/FDB/service"
	"github.com/notyourkokoro/FDB/test/mock"
	"github.com/notyourkokoro/FDB/util"
)

func TestMain(m *testing.M) {
	logDir, err := os.MkdirTemp("", "fdb-service-test")
	if err != nil {
		panic(err)
	}
	logger.InitLogger(logDir)
	code := m.Run()
	logger.Sync()
	os.RemoveAll(logDir)
	os.Exit(code)
}

type gatewayFixture struct {
	service *service.RecordService
	auth    *mock.MockAuthClient
	storage *mock.StubStorageClient
	store   *mock.MemoryStore
}

func newGatewayFixture(t *testing.T) *gatewayFixture {
	t.Helper()

	store := mock.NewMemoryStore()
	storage := &mock.StubStorageClient{}
	coordinator := cache.NewCoordinator(store, storage, "test",
		map[string]time.Duration{"doc": time.Minute}, time.Minute)

	authClient := &mock.MockAuthClient{}
	eventBus := util.NewEventBus()
	recordService := service.NewRecordService(
		authClient,
		coordinator,
		util.NewValidationUtil(),
		util.NewNotificationService(),
		mock.NopAuditService{},
		eventBus,
	)

	return &gatewayFixture{
		service: recordService,
		auth:    authClient,
		storage: storage,
		store:   store,
	}
}

func TestReadThenDeniedReadOnWarmCache(t *testing.T) {
	f := newGatewayFixture(t)
	key := model.ResourceKey{Type: "doc", ID: "1"}

	f.storage.ReadFunc = func(context.Context, model.ResourceKey) (*model.Record, error) {
		return &model.Record{Payload: json.RawMessage(`"secret"`), CommitStamp: 1}, nil
	}

	reader := &model.Identity{UserID: "a", Permissions: []string{"doc:read"}}
	f.auth.On("Authorize", testify_mock.Anything, "token-a").Return(reader, nil)

	record, err := f.service.GetRecord(context.Background(), "token-a", key)
	require.NoError(t, err)
	assert.JSONEq(t, `"secret"`, string(record.Payload))
	assert.Equal(t, 1, f.storage.Reads())

	// Identity B has no permission on doc/1. The cache is warm, but the
	// authorization check runs first, so the hit never happens.
	denied := &model.Identity{UserID: "b", Permissions: []string{"dataset:read"}}
	f.auth.On("Authorize", testify_mock.Anything, "token-b").Return(denied, nil)

	_, err = f.service.GetRecord(context.Background(), "token-b", key)
	assert.ErrorIs(t, err, gateway_errors.ErrForbidden)
	assert.Equal(t, 1, f.storage.Reads(), "a denied identity must not trigger storage access")
}

func TestUnauthenticatedRejectedBeforeServing(t *testing.T) {
	f := newGatewayFixture(t)
	key := model.ResourceKey{Type: "doc", ID: "1"}

	f.auth.On("Authorize", testify_mock.Anything, "bad-token").
		Return(nil, gateway_errors.ErrUnauthenticated)

	_, err := f.service.GetRecord(context.Background(), "bad-token", key)
	assert.ErrorIs(t, err, gateway_errors.ErrUnauthenticated)
	assert.Equal(t, 0, f.storage.Reads())
	assert.Equal(t, 0, f.store.Len())
}

func TestInvalidResourceKeyRejectedBeforeAuth(t *testing.T) {
	f := newGatewayFixture(t)

	// No Authorize expectation is set: reaching the auth client would fail
	// the test.
	_, err := f.service.GetRecord(context.Background(), "token", model.ResourceKey{Type: "doc"})
	assert.ErrorIs(t, err, gateway_errors.ErrInvalidRequest)
}

func TestWriteReadConflictScenario(t *testing.T) {
	f := newGatewayFixture(t)
	key := model.ResourceKey{Type: "doc", ID: "3"}

	writer := &model.Identity{UserID: "w", Permissions: []string{"doc:read", "doc:write"}}
	f.auth.On("Authorize", testify_mock.Anything, "token-w").Return(writer, nil)

	committed := false
	f.storage.WriteFunc = func(_ context.Context, _ model.ResourceKey, _ json.RawMessage, expectedVersion int64) (int64, error) {
		if committed && expectedVersion == 0 {
			return 0, gateway_errors.ErrConflict
		}
		committed = true
		return 1, nil
	}
	f.storage.ReadFunc = func(context.Context, model.ResourceKey) (*model.Record, error) {
		t.Fatal("read must be served from the write-through cache")
		return nil, nil
	}

	stamp, err := f.service.PutRecord(context.Background(), "token-w", key, json.RawMessage(`"v1"`), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stamp)

	record, err := f.service.GetRecord(context.Background(), "token-w", key)
	require.NoError(t, err)
	assert.JSONEq(t, `"v1"`, string(record.Payload))
	assert.Equal(t, 0, f.storage.Reads())

	// Stale expected version: the conflict is surfaced, never auto-retried,
	// and the cache still holds v1.
	_, err = f.service.PutRecord(context.Background(), "token-w", key, json.RawMessage(`"v2"`), 0)
	assert.ErrorIs(t, err, gateway_errors.ErrConflict)

	record, err = f.service.GetRecord(context.Background(), "token-w", key)
	require.NoError(t, err)
	assert.JSONEq(t, `"v1"`, string(record.Payload))
}

func TestWriteRequiresWritePermission(t *testing.T) {
	f := newGatewayFixture(t)
	key := model.ResourceKey{Type: "doc", ID: "1"}

	readOnly := &model.Identity{UserID: "r", Permissions: []string{"doc:read"}}
	f.auth.On("Authorize", testify_mock.Anything, "token-r").Return(readOnly, nil)

	_, err := f.service.PutRecord(context.Background(), "token-r", key, json.RawMessage(`"v"`), 0)
	assert.ErrorIs(t, err, gateway_errors.ErrForbidden)
	assert.Equal(t, 0, f.storage.Writes())
}

func TestWriteRejectsEmptyPayload(t *testing.T) {
	f := newGatewayFixture(t)
	key := model.ResourceKey{Type: "doc", ID: "1"}

	_, err := f.service.PutRecord(context.Background(), "token", key, nil, 0)
	assert.ErrorIs(t, err, gateway_errors.ErrInvalidRequest)
}
