package memory

import (
	"context"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"sync"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Locker hands out one in-process lock per session id
type Locker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

var _ port.Locker = (*Locker)(nil)

// NewLocker creates an empty Locker
func NewLocker() *Locker {
	return &Locker{entries: make(map[string]*entry)}
}

// Lock blocks until the id is free or ctx is done
func (l *Locker) Lock(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[id]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		l.entries[id] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(id, e)
		return nil, domain.ErrLockUnavailable
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			l.release(id, e)
		})
	}, nil
}

func (l *Locker) release(id string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, id)
	}
}

// Len returns the number of ids currently tracked
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
