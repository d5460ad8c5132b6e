// test/mock/audit.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/notyourkokoro/FDB/audit"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) LogAccess(ctx context.Context, log audit.AccessLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditService) QueryLogs(ctx context.Context, from, to time.Time, userID, resourceID string) ([]audit.AccessLog, error) {
	args := m.Called(ctx, from, to, userID, resourceID)
	return args.Get(0).([]audit.AccessLog), args.Error(1)
}

// NopAuditService accepts everything; for tests that don't assert on audit.
type NopAuditService struct{}

func (NopAuditService) LogAccess(ctx context.Context, log audit.AccessLog) error {
	return nil
}

func (NopAuditService) QueryLogs(ctx context.Context, from, to time.Time, userID, resourceID string) ([]audit.AccessLog, error) {
	return nil, nil
}
