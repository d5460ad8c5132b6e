// test/mock/auth.go
package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/notyourkokoro/FDB/model"
)

// MockAuthClient is a mock implementation of client.IAuthClient
type MockAuthClient struct {
	mock.Mock
}

func (m *MockAuthClient) Authorize(ctx context.Context, credential string) (*model.Identity, error) {
	args := m.Called(ctx, credential)
	if identity, ok := args.Get(0).(*model.Identity); ok {
		return identity, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthClient) CheckPermission(identity *model.Identity, key model.ResourceKey, op model.Operation) bool {
	if identity == nil {
		return false
	}
	return identity.Can(key, op)
}
