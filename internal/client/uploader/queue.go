package uploader

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// DefaultConcurrency is the number of files transferred at once
const DefaultConcurrency = 5

// Stats is the queue summary handed to OnChange
type Stats struct {
	Progress
	Total       int
	QueueLength int
	ActiveCount int
}

// Queue uploads files with at most limit transfers running.
// Files waiting for a slot are started in the order they asked for one.
type Queue struct {
	transport Transport
	limit     int
	folderID  string

	mu       sync.Mutex
	files    []*FileUpload
	byID     map[string]*FileUpload
	active   map[string]struct{}
	waiting  []string
	onChange func(Stats)
	changed  chan struct{}
}

// Option configures a Queue
type Option func(*Queue)

// WithConcurrency sets the number of simultaneous transfers
func WithConcurrency(limit int) Option {
	return func(q *Queue) {
		if limit > 0 {
			q.limit = limit
		}
	}
}

// WithFolder uploads every file into folderID
func WithFolder(folderID string) Option {
	return func(q *Queue) {
		q.folderID = folderID
	}
}

// NewQueue creates an empty queue
func NewQueue(transport Transport, opts ...Option) *Queue {
	q := &Queue{
		transport: transport,
		limit:     DefaultConcurrency,
		byID:      make(map[string]*FileUpload),
		active:    make(map[string]struct{}),
		changed:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// OnChange registers fn to be called after every status or progress change.
// fn may be called from several goroutines at once.
func (q *Queue) OnChange(fn func(Stats)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onChange = fn
}

// Add queues sources and starts as many as the limit allows. It returns their ids.
func (q *Queue) Add(sources ...Source) []string {
	added := make([]*FileUpload, 0, len(sources))
	ids := make([]string, 0, len(sources))

	q.mu.Lock()
	for _, source := range sources {
		id := "upload-" + uuid.NewString()
		f := newFileUpload(id, source, q.metadata(source), q.transport, q)
		q.files = append(q.files, f)
		q.byID[id] = f
		added = append(added, f)
		ids = append(ids, id)
	}
	q.mu.Unlock()

	for _, f := range added {
		q.admit(f)
	}
	q.emit()
	return ids
}

func (q *Queue) metadata(source Source) map[string]string {
	meta := map[string]string{
		"filename": source.Name,
		"filetype": source.MimeType,
	}
	if q.folderID != "" {
		meta["folderId"] = q.folderID
	}
	return meta
}

// Remove cancels a file and drops it from the queue
func (q *Queue) Remove(id string) {
	q.mu.Lock()
	f, ok := q.byID[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	delete(q.byID, id)
	q.files = slices.DeleteFunc(q.files, func(other *FileUpload) bool { return other.id == id })
	q.removeWaitingLocked(id)
	_, wasActive := q.active[id]
	q.mu.Unlock()

	f.discard()
	if wasActive {
		q.release(id)
	}
	q.emit()
}

// ClearCompleted drops every completed file
func (q *Queue) ClearCompleted() {
	q.mu.Lock()
	q.files = slices.DeleteFunc(q.files, func(f *FileUpload) bool {
		if f.Item().Status != StatusCompleted {
			return false
		}
		delete(q.byID, f.id)
		return true
	})
	q.mu.Unlock()
	q.emit()
}

// Pause stops a file, a waiting file gives up its place in line
func (q *Queue) Pause(id string) {
	q.mu.Lock()
	f, ok := q.byID[id]
	q.removeWaitingLocked(id)
	q.mu.Unlock()
	if ok {
		f.Pause()
	}
}

// Resume puts a paused file back in line
func (q *Queue) Resume(id string) {
	f := q.get(id)
	if f == nil || f.Item().Status != StatusPaused {
		return
	}
	q.admit(f)
	q.emit()
}

// Retry puts a failed file back in line and reports whether it was eligible
func (q *Queue) Retry(id string) bool {
	f := q.get(id)
	if f == nil || !f.Item().CanRetry {
		return false
	}
	q.admit(f)
	q.emit()
	return true
}

// Start puts a pending file back in line, a canceled file starts over
func (q *Queue) Start(id string) {
	f := q.get(id)
	if f == nil || f.Item().Status != StatusPending {
		return
	}
	q.admit(f)
	q.emit()
}

// Cancel aborts a file and keeps it as pending. Its slot or place in line goes to the next file.
func (q *Queue) Cancel(id string) {
	q.mu.Lock()
	f, ok := q.byID[id]
	q.removeWaitingLocked(id)
	q.mu.Unlock()
	if !ok {
		return
	}

	f.Cancel()

	q.mu.Lock()
	_, holdsSlot := q.active[id]
	q.mu.Unlock()
	if holdsSlot {
		q.release(id)
	}
	q.emit()
}

// Items returns a snapshot of every file in insertion order
func (q *Queue) Items() []Item {
	q.mu.Lock()
	files := slices.Clone(q.files)
	q.mu.Unlock()

	items := make([]Item, 0, len(files))
	for _, f := range files {
		items = append(items, f.Item())
	}
	return items
}

// Stats summarizes the queue
func (q *Queue) Stats() Stats {
	items := q.Items()

	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Progress:    CalculateGlobalProgress(items),
		Total:       len(items),
		QueueLength: len(q.waiting),
		ActiveCount: len(q.active),
	}
}

// Wait blocks until no file is transferring or waiting for a slot
func (q *Queue) Wait(ctx context.Context) error {
	for {
		if s := q.Stats(); s.ActiveCount == 0 && s.QueueLength == 0 {
			return nil
		}
		select {
		case <-q.changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *Queue) get(id string) *FileUpload {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.byID[id]
}

// admit starts f when a slot is free and queues it otherwise
func (q *Queue) admit(f *FileUpload) {
	q.mu.Lock()
	if _, ok := q.active[f.id]; ok {
		q.mu.Unlock()
		return
	}
	if len(q.active) >= q.limit {
		if !slices.Contains(q.waiting, f.id) {
			q.waiting = append(q.waiting, f.id)
		}
		q.mu.Unlock()
		return
	}
	q.active[f.id] = struct{}{}
	q.removeWaitingLocked(f.id)
	q.mu.Unlock()

	q.launch(f)
}

// launch runs a file that already holds a slot and frees the slot when nothing started
func (q *Queue) launch(f *FileUpload) {
	switch f.Item().Status {
	case StatusPending:
		f.Start()
	case StatusPaused:
		f.Resume()
	case StatusError:
		f.Retry()
	}

	q.mu.Lock()
	_, holdsSlot := q.active[f.id]
	q.mu.Unlock()
	if holdsSlot && f.Item().Status != StatusUploading {
		q.release(f.id)
	}
}

// release frees the slot of id and hands it to the next waiting file
func (q *Queue) release(id string) {
	q.mu.Lock()
	delete(q.active, id)
	next := q.popLocked()
	q.mu.Unlock()

	if next != nil {
		q.launch(next)
	}
}

// popLocked reserves a slot for the first waiting file that can still run
func (q *Queue) popLocked() *FileUpload {
	for len(q.waiting) > 0 && len(q.active) < q.limit {
		id := q.waiting[0]
		q.waiting = q.waiting[1:]
		f, ok := q.byID[id]
		if !ok {
			continue
		}
		switch f.Item().Status {
		case StatusUploading, StatusCompleted:
			continue
		}
		q.active[id] = struct{}{}
		return f
	}
	return nil
}

func (q *Queue) removeWaitingLocked(id string) {
	q.waiting = slices.DeleteFunc(q.waiting, func(other string) bool { return other == id })
}

func (q *Queue) statusChanged(id string, status Status) {
	q.mu.Lock()
	_, wasActive := q.active[id]
	var next *FileUpload
	if status == StatusUploading {
		if !wasActive {
			q.active[id] = struct{}{}
			q.removeWaitingLocked(id)
		}
	} else if wasActive {
		delete(q.active, id)
		next = q.popLocked()
	}
	q.mu.Unlock()

	if next != nil {
		q.launch(next)
	}
	q.emit()
}

func (q *Queue) progressChanged(string, float64) {
	q.emit()
}

func (q *Queue) emit() {
	select {
	case q.changed <- struct{}{}:
	default:
	}

	q.mu.Lock()
	fn := q.onChange
	q.mu.Unlock()
	if fn != nil {
		fn(q.Stats())
	}
}
