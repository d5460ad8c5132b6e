// test/mock/record_service.go
package mock

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/notyourkokoro/FDB/model"
)

// MockRecordService is a mock implementation of service.IRecordService
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) GetRecord(ctx context.Context, credential string, key model.ResourceKey) (*model.Record, error) {
	args := m.Called(ctx, credential, key)
	if record, ok := args.Get(0).(*model.Record); ok {
		return record, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecordService) PutRecord(ctx context.Context, credential string, key model.ResourceKey, payload json.RawMessage, expectedVersion int64) (int64, error) {
	args := m.Called(ctx, credential, key, payload, expectedVersion)
	return args.Get(0).(int64), args.Error(1)
}
