package upload

import (
	"context"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockUploadService struct {
	mock.Mock
}

func NewMockUploadService() *MockUploadService {
	return &MockUploadService{}
}

func (m *MockUploadService) CreateUpload(ctx context.Context, identity domain.Identity, req port.CreateUploadRequest) (*domain.UploadSession, error) {
	args := m.Called(ctx, identity, req)
	return args.Get(0).(*domain.UploadSession), args.Error(1)
}

func (m *MockUploadService) GetUpload(ctx context.Context, identity domain.Identity, id string) (*domain.UploadSession, error) {
	args := m.Called(ctx, identity, id)
	return args.Get(0).(*domain.UploadSession), args.Error(1)
}

func (m *MockUploadService) AppendChunk(ctx context.Context, identity domain.Identity, id string, offset int64, body io.Reader) (*domain.UploadSession, error) {
	args := m.Called(ctx, identity, id, offset, body)
	return args.Get(0).(*domain.UploadSession), args.Error(1)
}

func (m *MockUploadService) MaxSize(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
