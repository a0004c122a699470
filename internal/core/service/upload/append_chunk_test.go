package upload_test

import (
	"bytes"
	"context"
	"errors"
	"filedrop/internal/adapters/locker/memory"
	"filedrop/internal/adapters/repository"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"filedrop/internal/core/service/finalize"
	"filedrop/internal/core/service/upload"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type failingReader struct {
	data []byte
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.data), nil
}

type busyLocker struct{}

func (busyLocker) Lock(ctx context.Context, id string) (func(), error) {
	return nil, domain.ErrLockUnavailable
}

// createSession allocates a real blob and returns the stored session
func createSession(t *testing.T, f *fixture, size int64) domain.UploadSession {
	t.Helper()
	ctx := context.Background()
	f.settings.On("Get", ctx).Return(defaultSettings, nil).Once()
	f.quota.On("Get", ctx, "user-1").Return(&domain.QuotaCounters{UserID: "user-1"}, nil).Once()
	f.sessions.On("Set", ctx, mock.Anything).Return(nil).Once()

	session, err := f.service.CreateUpload(ctx, owner, port.CreateUploadRequest{Size: size, Filename: "data.bin"})
	require.NoError(t, err)
	return *session
}

func withOffset(s domain.UploadSession, offset int64) *domain.UploadSession {
	s.Offset = offset
	return &s
}

func TestUploadService_AppendChunk(t *testing.T) {
	ctx := context.Background()

	t.Run("two chunks of 10 and 20 bytes finalize a 30 byte upload", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		session := createSession(t, f, 30)
		f.sessions.On("Get", ctx, session.ID).Return(withOffset(session, 0), nil).Once()
		f.sessions.On("AdvanceOffset", mock.Anything, session.ID, int64(0), int64(10)).Return(nil).Once()
		f.sessions.On("Get", ctx, session.ID).Return(withOffset(session, 10), nil).Once()
		f.sessions.On("AdvanceOffset", mock.Anything, session.ID, int64(10), int64(30)).Return(nil).Once()
		f.finalizer.On("Finalize", mock.Anything, mock.MatchedBy(func(s domain.UploadSession) bool {
			return s.ID == session.ID && s.Offset == 30 && s.Size == 30
		})).Return(nil).Once()

		// Act
		first, err1 := f.service.AppendChunk(ctx, owner, session.ID, 0, strings.NewReader("0123456789"))
		second, err2 := f.service.AppendChunk(ctx, owner, session.ID, 10, strings.NewReader("abcdefghijklmnopqrst"))

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, int64(10), first.Offset)
		assert.Equal(t, int64(30), second.Offset)
		assert.Equal(t, "0123456789abcdefghijklmnopqrst", f.blob(t, session.ID))
		f.sessions.AssertExpectations(t)
		f.finalizer.AssertExpectations(t)
	})

	t.Run("offset mismatch is rejected without touching blob or metadata", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		session := createSession(t, f, 30)
		f.sessions.On("Get", ctx, session.ID).Return(withOffset(session, 0), nil).Once()
		f.sessions.On("AdvanceOffset", mock.Anything, session.ID, int64(0), int64(10)).Return(nil).Once()
		_, err := f.service.AppendChunk(ctx, owner, session.ID, 0, strings.NewReader("0123456789"))
		require.NoError(t, err)
		f.sessions.On("Get", ctx, session.ID).Return(withOffset(session, 10), nil)

		// Act
		replayed, replayErr := f.service.AppendChunk(ctx, owner, session.ID, 0, strings.NewReader("XXXXXXXXXX"))
		ahead, aheadErr := f.service.AppendChunk(ctx, owner, session.ID, 20, strings.NewReader("YYYYYYYYYY"))

		// Assert
		require.ErrorIs(t, replayErr, domain.ErrOffsetMismatch)
		require.ErrorIs(t, aheadErr, domain.ErrOffsetMismatch)
		assert.Equal(t, int64(10), replayed.Offset)
		assert.Equal(t, int64(10), ahead.Offset)
		assert.Equal(t, "0123456789", f.blob(t, session.ID))
		f.sessions.AssertNumberOfCalls(t, "AdvanceOffset", 1)
	})

	t.Run("chunk running past the declared size is rejected and dropped", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		session := createSession(t, f, 5)
		f.sessions.On("Get", ctx, session.ID).Return(withOffset(session, 0), nil).Once()

		// Act
		got, err := f.service.AppendChunk(ctx, owner, session.ID, 0, strings.NewReader("0123456789"))

		// Assert
		require.ErrorIs(t, err, domain.ErrFileSizeTooBig)
		assert.Equal(t, int64(0), got.Offset)
		assert.Equal(t, "", f.blob(t, session.ID))
		f.sessions.AssertNotCalled(t, "AdvanceOffset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.finalizer.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
	})

	t.Run("chunk exactly filling the declared size is accepted", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		session := createSession(t, f, 10)
		f.sessions.On("Get", ctx, session.ID).Return(withOffset(session, 4), nil).Once()
		f.sessions.On("AdvanceOffset", mock.Anything, session.ID, int64(4), int64(10)).Return(nil).Once()
		f.finalizer.On("Finalize", mock.Anything, mock.Anything).Return(nil).Once()

		// Act
		got, err := f.service.AppendChunk(ctx, owner, session.ID, 4, strings.NewReader("456789"))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(10), got.Offset)
		f.finalizer.AssertExpectations(t)
	})

	t.Run("data sent to a fully received session is rejected", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		session := createSession(t, f, 3)
		f.sessions.On("Get", ctx, session.ID).Return(withOffset(session, 3), nil)

		// Act
		_, err := f.service.AppendChunk(ctx, owner, session.ID, 3, strings.NewReader("x"))

		// Assert
		require.ErrorIs(t, err, domain.ErrFileSizeTooBig)
		f.finalizer.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
	})

	t.Run("interrupted chunk keeps the received bytes", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		session := createSession(t, f, 30)
		dropped := errors.New("connection reset by peer")
		f.sessions.On("Get", ctx, session.ID).Return(withOffset(session, 0), nil).Once()
		f.sessions.On("AdvanceOffset", mock.Anything, session.ID, int64(0), int64(4)).Return(nil).Once()

		// Act
		got, err := f.service.AppendChunk(ctx, owner, session.ID, 0, &failingReader{data: []byte("abcd"), err: dropped})

		// Assert
		require.ErrorIs(t, err, dropped)
		assert.Equal(t, int64(4), got.Offset)
		assert.Equal(t, "abcd", f.blob(t, session.ID))
		f.sessions.AssertExpectations(t)
		f.finalizer.AssertNotCalled(t, "Finalize", mock.Anything, mock.Anything)
	})

	t.Run("empty chunk on a fully received session retries finalize", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		session := createSession(t, f, 3)
		f.sessions.On("Get", ctx, session.ID).Return(withOffset(session, 3), nil)
		f.finalizer.On("Finalize", ctx, mock.Anything).Return(errors.New("tx aborted")).Once()
		f.finalizer.On("Finalize", ctx, mock.Anything).Return(nil).Once()

		// Act
		_, firstErr := f.service.AppendChunk(ctx, owner, session.ID, 3, bytes.NewReader(nil))
		_, retryErr := f.service.AppendChunk(ctx, owner, session.ID, 3, bytes.NewReader(nil))

		// Assert
		require.Error(t, firstErr)
		require.NoError(t, retryErr)
		f.finalizer.AssertNumberOfCalls(t, "Finalize", 2)
		f.sessions.AssertNotCalled(t, "AdvanceOffset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("session of another user is not found", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		session := createSession(t, f, 3)
		f.sessions.On("Get", ctx, session.ID).Return(withOffset(session, 0), nil)

		// Act
		_, err := f.service.AppendChunk(ctx, domain.Identity{UserID: "intruder"}, session.ID, 0, strings.NewReader("abc"))

		// Assert
		require.ErrorIs(t, err, domain.ErrSessionNotFound)
		assert.Equal(t, "", f.blob(t, session.ID))
	})

	t.Run("unknown session", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.sessions.On("Get", ctx, "missing").Return((*domain.UploadSession)(nil), domain.ErrSessionNotFound)

		// Act
		_, err := f.service.AppendChunk(ctx, owner, "missing", 0, strings.NewReader("abc"))

		// Assert
		require.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("busy session lock", func(t *testing.T) {
		// Arrange
		mockUow := repository.NewMockUnitOfWork()
		service := upload.NewUploadService(mockUow, nil, busyLocker{}, nil, nil, 10*time.Millisecond, discardLogger())

		// Act
		_, err := service.AppendChunk(ctx, owner, "any", 0, strings.NewReader("abc"))

		// Assert
		require.ErrorIs(t, err, domain.ErrLockUnavailable)
	})
}

func TestUploadService_QuotaScenario(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture(t)
	finalizer := finalize.NewFinalizeService(f.uow, nil, discardLogger())
	service := upload.NewUploadService(f.uow, f.storage, memory.NewLocker(), f.settings, finalizer, time.Second, discardLogger())
	counters := &domain.QuotaCounters{UserID: "user-1", UsedQuotaBytes: 950, QuotaBytes: 1000}

	f.settings.On("Get", ctx).Return(defaultSettings, nil)
	f.quota.On("Get", ctx, "user-1").Return(counters, nil)
	f.sessions.On("Set", ctx, mock.Anything).Return(nil)

	// Act
	_, rejectedErr := service.CreateUpload(ctx, owner, port.CreateUploadRequest{Size: 100, Filename: "big.bin"})
	session, createErr := service.CreateUpload(ctx, owner, port.CreateUploadRequest{Size: 40, Filename: "small.bin"})
	require.NoError(t, createErr)

	f.sessions.On("Get", ctx, session.ID).Return(withOffset(*session, 0), nil)
	f.sessions.On("AdvanceOffset", mock.Anything, session.ID, int64(0), int64(40)).Return(nil)
	f.uow.On("Execute", mock.Anything, mock.Anything).Return(nil)
	f.uow.GetFileRepoMock().On("Create", mock.Anything, mock.MatchedBy(func(r domain.FileRecord) bool {
		return r.ID == session.ID && r.Size == 40
	})).Return(nil)
	f.quota.On("Increment", mock.Anything, "user-1", int64(40), int64(1)).Return(nil)
	f.sessions.On("Delete", mock.Anything, session.ID).Return(nil)

	_, appendErr := service.AppendChunk(ctx, owner, session.ID, 0, strings.NewReader(strings.Repeat("x", 40)))

	// Assert
	require.ErrorIs(t, rejectedErr, domain.ErrQuotaExceeded)
	require.NoError(t, appendErr)
	f.uow.GetFileRepoMock().AssertExpectations(t)
	f.quota.AssertCalled(t, "Increment", mock.Anything, "user-1", int64(40), int64(1))
	f.sessions.AssertCalled(t, "Delete", mock.Anything, session.ID)
}
