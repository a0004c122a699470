package settings

import (
	"context"
	"filedrop/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockSettingsProvider struct {
	mock.Mock
}

func NewMockSettingsProvider() *MockSettingsProvider {
	return &MockSettingsProvider{}
}

func (m *MockSettingsProvider) Get(ctx context.Context) (domain.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Settings), args.Error(1)
}

func (m *MockSettingsProvider) Invalidate() {
	m.Called()
}
