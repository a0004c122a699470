package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func NewMockStorage() *MockStorage {
	return &MockStorage{}
}

func (m *MockStorage) Create(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStorage) Append(ctx context.Context, id string, offset int64, r io.Reader) (int64, error) {
	args := m.Called(ctx, id, offset, r)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) Write(ctx context.Context, id string, r io.Reader) (int64, error) {
	args := m.Called(ctx, id, r)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	args := m.Called(ctx, id)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockStorage) Size(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
