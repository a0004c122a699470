package finalize

import (
	"context"
	"filedrop/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockFinalizeService struct {
	mock.Mock
}

func NewMockFinalizeService() *MockFinalizeService {
	return &MockFinalizeService{}
}

func (m *MockFinalizeService) Finalize(ctx context.Context, session domain.UploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) PublishUploadFinished(ctx context.Context, event domain.UploadFinishedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
