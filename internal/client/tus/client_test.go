package tus_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"filedrop/internal/client/tus"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer is an in memory upload endpoint
type fakeServer struct {
	mu       sync.Mutex
	uploads  map[string]*fakeUpload
	next     int
	failures map[string][]int
	requests []string
	metadata string
	token    string
}

type fakeUpload struct {
	size      int64
	data      []byte
	finalized bool
}

func newFakeServer() *fakeServer {
	return &fakeServer{uploads: map[string]*fakeUpload{}, failures: map[string][]int{}}
}

// failNext makes the next requests of method answer with the given codes
func (s *fakeServer) failNext(method string, codes ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], codes...)
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r.Method)

	if r.Header.Get("Tus-Resumable") != "1.0.0" {
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	}
	if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if codes := s.failures[r.Method]; len(codes) > 0 {
		s.failures[r.Method] = codes[1:]
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("X-Request-Id", "req-1")
		http.Error(w, http.StatusText(codes[0]), codes[0])
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/upload/")
	switch r.Method {
	case http.MethodPost:
		size, _ := strconv.ParseInt(r.Header.Get("Upload-Length"), 10, 64)
		s.next++
		newID := fmt.Sprintf("u%d", s.next)
		s.uploads[newID] = &fakeUpload{size: size, finalized: size == 0}
		s.metadata = r.Header.Get("Upload-Metadata")
		w.Header().Set("Location", "/api/upload/"+newID)
		w.WriteHeader(http.StatusCreated)
	case http.MethodHead:
		up, ok := s.uploads[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Upload-Offset", strconv.Itoa(len(up.data)))
		w.WriteHeader(http.StatusOK)
	case http.MethodPatch:
		up, ok := s.uploads[id]
		if !ok {
			http.Error(w, "upload not found", http.StatusNotFound)
			return
		}
		offset, _ := strconv.ParseInt(r.Header.Get("Upload-Offset"), 10, 64)
		if offset != int64(len(up.data)) {
			http.Error(w, "upload offset mismatch", http.StatusConflict)
			return
		}
		chunk, _ := io.ReadAll(r.Body)
		up.data = append(up.data, chunk...)
		if int64(len(up.data)) == up.size {
			up.finalized = true
		}
		w.Header().Set("Upload-Offset", strconv.Itoa(len(up.data)))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *fakeServer) upload(id string) *fakeUpload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads[id]
}

func (s *fakeServer) count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.requests {
		if m == method {
			n++
		}
	}
	return n
}

func newClient(t *testing.T, endpoint string, chunkSize int64) *tus.Client {
	t.Helper()
	client, err := tus.NewClient(tus.Config{
		Endpoint:    endpoint + "/api/upload",
		Token:       "token",
		ChunkSize:   chunkSize,
		RetryDelays: []time.Duration{0, time.Millisecond, time.Millisecond, time.Millisecond},
	}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return client
}

func TestClient_Upload_InChunks(t *testing.T) {
	// Arrange
	fake := newFakeServer()
	fake.token = "token"
	srv := httptest.NewServer(fake)
	defer srv.Close()

	content := []byte("0123456789abcdefghijklmnopqrstuvwxyz")
	var progress []int64
	upload := &tus.Upload{
		Source:     bytes.NewReader(content),
		Size:       int64(len(content)),
		Metadata:   map[string]string{"filename": "a.txt", "filetype": "text/plain"},
		OnProgress: func(sent, total int64) { progress = append(progress, sent) },
	}

	// Act
	err := newClient(t, srv.URL, 10).Upload(context.Background(), upload)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api/upload/u1", upload.URL())
	assert.Equal(t, content, fake.upload("u1").data)
	assert.True(t, fake.upload("u1").finalized)
	assert.Equal(t, []int64{10, 20, 30, 36}, progress)
	assert.Equal(t, 4, fake.count(http.MethodPatch))
	assert.Equal(t,
		"filename "+base64.StdEncoding.EncodeToString([]byte("a.txt"))+",filetype "+base64.StdEncoding.EncodeToString([]byte("text/plain")),
		fake.metadata)
}

func TestClient_Upload_EmptyFile(t *testing.T) {
	// Arrange
	fake := newFakeServer()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	upload := &tus.Upload{Source: bytes.NewReader(nil), Size: 0}

	// Act
	err := newClient(t, srv.URL, 10).Upload(context.Background(), upload)

	// Assert
	require.NoError(t, err)
	assert.True(t, fake.upload("u1").finalized)
	assert.Zero(t, fake.count(http.MethodPatch))
}

func TestClient_Upload_RetriesServerErrorsFromCurrentOffset(t *testing.T) {
	// Arrange
	fake := newFakeServer()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	fake.failNext(http.MethodPatch, http.StatusInternalServerError, http.StatusConflict)

	content := []byte("hello world")
	upload := &tus.Upload{Source: bytes.NewReader(content), Size: int64(len(content))}

	// Act
	err := newClient(t, srv.URL, 4).Upload(context.Background(), upload)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, content, fake.upload("u1").data)
	assert.Equal(t, 2, fake.count(http.MethodHead))
}

func TestClient_Upload_GivesUpAfterRetryDelays(t *testing.T) {
	// Arrange
	fake := newFakeServer()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	fake.failNext(http.MethodPost, 500, 502, 503, 504, 500)

	upload := &tus.Upload{Source: bytes.NewReader([]byte("x")), Size: 1}

	// Act
	err := newClient(t, srv.URL, 4).Upload(context.Background(), upload)

	// Assert
	var transferErr *tus.TransferError
	require.ErrorAs(t, err, &transferErr)
	assert.Equal(t, http.StatusInternalServerError, transferErr.StatusCode)
	assert.Equal(t, 5, fake.count(http.MethodPost))
	assert.Empty(t, upload.URL())
}

func TestClient_Upload_ClientErrorsAreFinal(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestEntityTooLarge} {
		t.Run(strconv.Itoa(code), func(t *testing.T) {
			// Arrange
			fake := newFakeServer()
			srv := httptest.NewServer(fake)
			defer srv.Close()
			fake.failNext(http.MethodPost, code)

			upload := &tus.Upload{Source: bytes.NewReader([]byte("x")), Size: 1}

			// Act
			err := newClient(t, srv.URL, 4).Upload(context.Background(), upload)

			// Assert
			var transferErr *tus.TransferError
			require.ErrorAs(t, err, &transferErr)
			assert.Equal(t, code, transferErr.StatusCode)
			assert.Equal(t, "req-1", transferErr.RequestID)
			assert.Equal(t, 1, fake.count(http.MethodPost))
		})
	}
}

func TestClient_Upload_ResumesAfterCancel(t *testing.T) {
	// Arrange
	fake := newFakeServer()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	content := []byte("abcdefghij")
	ctx, cancel := context.WithCancel(context.Background())
	upload := &tus.Upload{
		Source: bytes.NewReader(content),
		Size:   int64(len(content)),
	}
	upload.OnProgress = func(sent, total int64) {
		if sent == 4 {
			cancel()
		}
	}
	client := newClient(t, srv.URL, 4)

	// Act
	err := client.Upload(ctx, upload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, []byte("abcd"), fake.upload("u1").data)

	upload.OnProgress = nil
	err = client.Upload(context.Background(), upload)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, content, fake.upload("u1").data)
	assert.Equal(t, 1, fake.count(http.MethodPost))
	assert.Equal(t, 1, fake.count(http.MethodHead))
}

func TestClient_Upload_ResumeFromSavedURL(t *testing.T) {
	// Arrange
	fake := newFakeServer()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	content := []byte("abcdefghij")
	ctx, cancel := context.WithCancel(context.Background())
	first := &tus.Upload{Source: bytes.NewReader(content), Size: int64(len(content))}
	first.OnProgress = func(sent, total int64) {
		if sent == 4 {
			cancel()
		}
	}
	client := newClient(t, srv.URL, 4)
	require.Error(t, client.Upload(ctx, first))
	require.NotEmpty(t, first.URL())

	second := &tus.Upload{Source: bytes.NewReader(content), Size: int64(len(content))}
	second.ResumeFrom(first.URL())

	// Act
	err := client.Upload(context.Background(), second)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, content, fake.upload("u1").data)
	assert.Equal(t, 1, fake.count(http.MethodPost))
	assert.Equal(t, 1, fake.count(http.MethodHead))
}

func TestClient_Upload_EmptyPatchRetriesFinalize(t *testing.T) {
	// Arrange
	fake := newFakeServer()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	content := []byte("abcd")
	upload := &tus.Upload{Source: bytes.NewReader(content), Size: 4}
	client := newClient(t, srv.URL, 4)
	require.NoError(t, client.Upload(context.Background(), upload))
	fake.upload("u1").finalized = false

	// Act
	err := client.Upload(context.Background(), upload)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, fake.count(http.MethodPatch))
	assert.Equal(t, content, fake.upload("u1").data)
}

func TestTransferError_Retryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusConflict, true},
		{http.StatusLocked, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadRequest, false},
		{http.StatusForbidden, false},
		{http.StatusNotFound, false},
	}
	for _, tt := range tests {
		err := &tus.TransferError{StatusCode: tt.code}
		assert.Equal(t, tt.want, err.Retryable(), "status %d", tt.code)
	}
}
