package direct

import (
	"context"
	"filedrop/internal/core/port"

	"github.com/stretchr/testify/mock"
)

type MockDirectUploadService struct {
	mock.Mock
}

func NewMockDirectUploadService() *MockDirectUploadService {
	return &MockDirectUploadService{}
}

func (m *MockDirectUploadService) Upload(ctx context.Context, req port.DirectUploadRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
