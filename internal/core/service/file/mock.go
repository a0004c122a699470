package file

import (
	"context"
	"filedrop/internal/core/domain"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func NewMockFileService() *MockFileService {
	return &MockFileService{}
}

func (m *MockFileService) GetFile(ctx context.Context, id string) (*domain.FileRecord, io.ReadCloser, error) {
	args := m.Called(ctx, id)
	rc, _ := args.Get(1).(io.ReadCloser)
	return args.Get(0).(*domain.FileRecord), rc, args.Error(2)
}
