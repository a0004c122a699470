package repository

import (
	"context"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockUploadSessionRepository struct {
	mock.Mock
}

func NewMockUploadSessionRepository() *MockUploadSessionRepository {
	return &MockUploadSessionRepository{}
}

func (m *MockUploadSessionRepository) Get(ctx context.Context, id string) (*domain.UploadSession, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.UploadSession), args.Error(1)
}

func (m *MockUploadSessionRepository) Set(ctx context.Context, session domain.UploadSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockUploadSessionRepository) AdvanceOffset(ctx context.Context, id string, from, to int64) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockUploadSessionRepository) FindInactive(ctx context.Context, before time.Time) ([]domain.UploadSession, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]domain.UploadSession), args.Error(1)
}

type MockFileRepository struct {
	mock.Mock
}

func NewMockFileRepository() *MockFileRepository {
	return &MockFileRepository{}
}

func (m *MockFileRepository) Create(ctx context.Context, file domain.FileRecord) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id string) (*domain.FileRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.FileRecord), args.Error(1)
}

type MockQuotaRepository struct {
	mock.Mock
}

func NewMockQuotaRepository() *MockQuotaRepository {
	return &MockQuotaRepository{}
}

func (m *MockQuotaRepository) Get(ctx context.Context, userID string) (*domain.QuotaCounters, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(*domain.QuotaCounters), args.Error(1)
}

func (m *MockQuotaRepository) Increment(ctx context.Context, userID string, bytes, files int64) error {
	args := m.Called(ctx, userID, bytes, files)
	return args.Error(0)
}

type MockSettingsRepository struct {
	mock.Mock
}

func NewMockSettingsRepository() *MockSettingsRepository {
	return &MockSettingsRepository{}
}

func (m *MockSettingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *MockSettingsRepository) InsertMissing(ctx context.Context, defaults map[string]string) error {
	args := m.Called(ctx, defaults)
	return args.Error(0)
}

func (m *MockSettingsRepository) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) FindIDByAPIKey(ctx context.Context, apiKey string) (string, error) {
	args := m.Called(ctx, apiKey)
	return args.String(0), args.Error(1)
}

type MockFolderRepository struct {
	mock.Mock
}

func NewMockFolderRepository() *MockFolderRepository {
	return &MockFolderRepository{}
}

func (m *MockFolderRepository) FindByID(ctx context.Context, id string) (*domain.Folder, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.Folder), args.Error(1)
}

type MockUnitOfWork struct {
	mock.Mock
	fileRepo          *MockFileRepository
	uploadSessionRepo *MockUploadSessionRepository
	quotaRepo         *MockQuotaRepository
	folderRepo        *MockFolderRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		fileRepo:          &MockFileRepository{},
		uploadSessionRepo: &MockUploadSessionRepository{},
		quotaRepo:         &MockQuotaRepository{},
		folderRepo:        &MockFolderRepository{},
	}
}

func (m *MockUnitOfWork) FileRepo() port.FileRepository {
	return m.fileRepo
}

func (m *MockUnitOfWork) UploadSessionRepo() port.UploadSessionRepository {
	return m.uploadSessionRepo
}

func (m *MockUnitOfWork) QuotaRepo() port.QuotaRepository {
	return m.quotaRepo
}

func (m *MockUnitOfWork) FolderRepo() port.FolderRepository {
	return m.folderRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetFileRepoMock() *MockFileRepository {
	return m.fileRepo
}

func (m *MockUnitOfWork) GetUploadSessionRepoMock() *MockUploadSessionRepository {
	return m.uploadSessionRepo
}

func (m *MockUnitOfWork) GetQuotaRepoMock() *MockQuotaRepository {
	return m.quotaRepo
}

func (m *MockUnitOfWork) GetFolderRepoMock() *MockFolderRepository {
	return m.folderRepo
}
