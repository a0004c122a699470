package uploader

import (
	"context"
	"filedrop/internal/client/tus"
	"io"
	"sync"
)

// Transport sends one upload to the server, *tus.Client implements it
type Transport interface {
	Upload(ctx context.Context, u *tus.Upload) error
}

// Control drives a single transfer
type Control interface {
	Start()
	Pause()
	Resume()
	Retry()
	Cancel()
}

// Source is a local file to upload
type Source struct {
	Name     string
	Size     int64
	MimeType string
	Reader   io.ReaderAt
}

// Item is a point in time view of a queued file
type Item struct {
	ID                  string
	Name                string
	Size                int64
	Status              Status
	Progress            float64
	LastErrorMessage    string
	LastErrorStatusCode int
	// CanRetry is false for errors a retry cannot fix
	CanRetry bool
}

type listener interface {
	statusChanged(id string, status Status)
	progressChanged(id string, progress float64)
}

// FileUpload is the state machine of one file:
// pending -> uploading -> paused | error | completed, paused -> uploading, error -> uploading.
type FileUpload struct {
	id        string
	source    Source
	transport Transport
	listener  listener
	upload    *tus.Upload

	// tmu orders transitions with their notifications
	tmu sync.Mutex

	mu            sync.Mutex
	status        Status
	progress      float64
	errMessage    string
	errStatusCode int
	started       bool
	closed        bool
	gen           int
	cancel        context.CancelFunc
	done          chan struct{}
}

var _ Control = (*FileUpload)(nil)

// NewFileUpload creates a pending file that nothing watches, a Queue creates its own
func NewFileUpload(id string, source Source, metadata map[string]string, transport Transport) *FileUpload {
	return newFileUpload(id, source, metadata, transport, nil)
}

func newFileUpload(id string, source Source, metadata map[string]string, transport Transport, l listener) *FileUpload {
	return &FileUpload{
		id:        id,
		source:    source,
		transport: transport,
		listener:  l,
		status:    StatusPending,
		upload: &tus.Upload{
			Source:   source.Reader,
			Size:     source.Size,
			Metadata: metadata,
		},
	}
}

// ID returns the queue id of the file
func (f *FileUpload) ID() string {
	return f.id
}

// URL returns the server url of the upload, empty before creation and after Cancel.
// It is only stable while no transfer runs.
func (f *FileUpload) URL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upload.URL()
}

// Start begins the transfer of a pending file, only the first call has an effect
func (f *FileUpload) Start() {
	f.transition(func() (Status, bool) {
		if f.closed || f.started || f.status != StatusPending {
			return f.status, false
		}
		f.launchLocked()
		return StatusUploading, true
	})
}

// Pause stops the transfer, the server keeps what it received
func (f *FileUpload) Pause() {
	f.transition(func() (Status, bool) {
		if f.closed || (f.status != StatusUploading && f.status != StatusPending) {
			return f.status, false
		}
		f.stopLocked()
		f.status = StatusPaused
		return StatusPaused, true
	})
}

// Resume continues a paused transfer from the server offset
func (f *FileUpload) Resume() {
	f.waitIdle()
	f.transition(func() (Status, bool) {
		if f.closed || f.status != StatusPaused {
			return f.status, false
		}
		f.launchLocked()
		return StatusUploading, true
	})
}

// Retry restarts a failed transfer unless its error is final
func (f *FileUpload) Retry() {
	f.waitIdle()
	f.transition(func() (Status, bool) {
		if f.closed || f.status != StatusError || !CanRetry(f.errStatusCode) {
			return f.status, false
		}
		f.launchLocked()
		return StatusUploading, true
	})
}

// Cancel aborts the transfer and forgets the server side upload.
// The file goes back to pending, partial data on the server is left to its cleanup.
func (f *FileUpload) Cancel() {
	f.transition(func() (Status, bool) {
		prev := f.status
		f.stopLocked()
		f.status = StatusPending
		f.started = false
		f.progress = 0
		f.errMessage, f.errStatusCode = "", 0
		return StatusPending, prev != StatusPending
	})
	f.waitIdle()

	f.mu.Lock()
	if !f.started {
		f.upload.Reset()
	}
	f.mu.Unlock()
}

// discard stops the file for good without notifying
func (f *FileUpload) discard() {
	f.tmu.Lock()
	defer f.tmu.Unlock()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.stopLocked()
}

// Item returns a snapshot of the file
func (f *FileUpload) Item() Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Item{
		ID:                  f.id,
		Name:                f.source.Name,
		Size:                f.source.Size,
		Status:              f.status,
		Progress:            f.progress,
		LastErrorMessage:    f.errMessage,
		LastErrorStatusCode: f.errStatusCode,
		CanRetry:            f.status == StatusError && CanRetry(f.errStatusCode),
	}
}

func (f *FileUpload) transition(fn func() (Status, bool)) {
	f.tmu.Lock()
	defer f.tmu.Unlock()

	f.mu.Lock()
	status, changed := fn()
	f.mu.Unlock()

	if changed && f.listener != nil {
		f.listener.statusChanged(f.id, status)
	}
}

func (f *FileUpload) waitIdle() {
	f.mu.Lock()
	done := f.done
	f.mu.Unlock()
	if done != nil {
		<-done
	}
}

// stopLocked cancels the running transfer, its late results are dropped
func (f *FileUpload) stopLocked() {
	f.gen++
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
}

func (f *FileUpload) launchLocked() {
	f.gen++
	gen := f.gen
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	f.cancel = cancel
	f.done = done
	f.started = true
	f.status = StatusUploading
	f.errMessage, f.errStatusCode = "", 0
	f.upload.OnProgress = func(sent, total int64) {
		f.reportProgress(gen, sent, total)
	}

	go f.run(ctx, gen, done)
}

func (f *FileUpload) run(ctx context.Context, gen int, done chan struct{}) {
	err := f.transport.Upload(ctx, f.upload)
	close(done)

	f.transition(func() (Status, bool) {
		if f.gen != gen || f.status != StatusUploading {
			return f.status, false
		}
		if f.cancel != nil {
			f.cancel()
			f.cancel = nil
		}
		if err == nil {
			f.status = StatusCompleted
			f.progress = 100
			return StatusCompleted, true
		}
		f.errStatusCode, f.errMessage = errorDetails(err)
		f.status = StatusError
		return StatusError, true
	})
}

func (f *FileUpload) reportProgress(gen int, sent, total int64) {
	f.mu.Lock()
	if f.gen != gen {
		f.mu.Unlock()
		return
	}
	progress := 100.0
	if total > 0 {
		progress = float64(sent) / float64(total) * 100
	}
	f.progress = progress
	f.mu.Unlock()

	if f.listener != nil {
		f.listener.progressChanged(f.id, progress)
	}
}
