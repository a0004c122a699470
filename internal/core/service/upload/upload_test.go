package upload_test

import (
	"filedrop/internal/adapters/locker/memory"
	"filedrop/internal/adapters/repository"
	"filedrop/internal/adapters/storage/filesystem"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"filedrop/internal/core/service/finalize"
	"filedrop/internal/core/service/settings"
	"filedrop/internal/core/service/upload"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var owner = domain.Identity{UserID: "user-1"}

var defaultSettings = domain.Settings{
	BlacklistedExtensions:     []string{"exe"},
	UploadMaxSize:             1 << 20,
	ChunkSize:                 1 << 10,
	DefaultUserQuota:          1 << 30,
	DefaultUserFileCountQuota: 1000,
}

type fixture struct {
	uow       *repository.MockUnitOfWork
	sessions  *repository.MockUploadSessionRepository
	quota     *repository.MockQuotaRepository
	settings  *settings.MockSettingsProvider
	finalizer *finalize.MockFinalizeService
	storage   *filesystem.Adapter
	root      string
	service   port.UploadService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	storage, err := filesystem.NewAdapter(root, discardLogger())
	require.NoError(t, err)

	mockUow := repository.NewMockUnitOfWork()
	settingsProvider := settings.NewMockSettingsProvider()
	finalizer := finalize.NewMockFinalizeService()

	return &fixture{
		uow:       mockUow,
		sessions:  mockUow.GetUploadSessionRepoMock(),
		quota:     mockUow.GetQuotaRepoMock(),
		settings:  settingsProvider,
		finalizer: finalizer,
		storage:   storage,
		root:      root,
		service: upload.NewUploadService(
			mockUow,
			storage,
			memory.NewLocker(),
			settingsProvider,
			finalizer,
			time.Second,
			discardLogger(),
		),
	}
}

// blobCount returns how many blobs exist on disk
func (f *fixture) blobCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.root)
	require.NoError(t, err)
	return len(entries)
}

func (f *fixture) blob(t *testing.T, id string) string {
	t.Helper()
	data, err := os.ReadFile(f.root + string(os.PathSeparator) + id)
	require.NoError(t, err)
	return string(data)
}
