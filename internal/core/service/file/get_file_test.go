package file_test

import (
	"context"
	"errors"
	"filedrop/internal/adapters/repository"
	"filedrop/internal/adapters/storage"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/service/file"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFileService_GetFile(t *testing.T) {
	ctx := context.Background()
	fileID := "9b2f6c1e-0d3a-4a59-9d2b-6f1f7d5e8a10"

	t.Run("success - record and content", func(t *testing.T) {
		// Arrange
		mockUow := repository.NewMockUnitOfWork()
		mockStorage := storage.NewMockStorage()
		service := file.NewFileService(mockUow, mockStorage, discardLogger())
		record := &domain.FileRecord{ID: fileID, Filename: "notes.txt", Size: 5, MimeType: "text/plain"}

		mockUow.GetFileRepoMock().On("FindByID", ctx, fileID).Return(record, nil)
		mockStorage.On("Open", ctx, fileID).Return(io.NopCloser(strings.NewReader("hello")), nil)

		// Act
		got, content, err := service.GetFile(ctx, fileID)

		// Assert
		require.NoError(t, err)
		defer content.Close()
		assert.Equal(t, record, got)
		data, err := io.ReadAll(content)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		mockUow.GetFileRepoMock().AssertExpectations(t)
		mockStorage.AssertExpectations(t)
	})

	t.Run("error - unknown file", func(t *testing.T) {
		// Arrange
		mockUow := repository.NewMockUnitOfWork()
		mockStorage := storage.NewMockStorage()
		service := file.NewFileService(mockUow, mockStorage, discardLogger())

		mockUow.GetFileRepoMock().On("FindByID", ctx, fileID).Return((*domain.FileRecord)(nil), domain.ErrFileNotFound)

		// Act
		got, content, err := service.GetFile(ctx, fileID)

		// Assert
		require.ErrorIs(t, err, domain.ErrFileNotFound)
		assert.Nil(t, got)
		assert.Nil(t, content)
		mockStorage.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("error - blob is missing", func(t *testing.T) {
		// Arrange
		mockUow := repository.NewMockUnitOfWork()
		mockStorage := storage.NewMockStorage()
		service := file.NewFileService(mockUow, mockStorage, discardLogger())

		mockUow.GetFileRepoMock().On("FindByID", ctx, fileID).Return(&domain.FileRecord{ID: fileID}, nil)
		mockStorage.On("Open", ctx, fileID).Return(nil, domain.ErrFileNotFound)

		// Act
		got, content, err := service.GetFile(ctx, fileID)

		// Assert
		require.ErrorIs(t, err, domain.ErrFileNotFound)
		assert.Nil(t, got)
		assert.Nil(t, content)
	})

	t.Run("error - database failure", func(t *testing.T) {
		// Arrange
		mockUow := repository.NewMockUnitOfWork()
		mockStorage := storage.NewMockStorage()
		service := file.NewFileService(mockUow, mockStorage, discardLogger())
		dbErr := errors.New("connection refused")

		mockUow.GetFileRepoMock().On("FindByID", ctx, fileID).Return((*domain.FileRecord)(nil), dbErr)

		// Act
		_, _, err := service.GetFile(ctx, fileID)

		// Assert
		require.ErrorIs(t, err, dbErr)
	})
}
