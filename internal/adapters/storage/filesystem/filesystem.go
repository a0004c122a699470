package filesystem

import (
	"context"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Adapter stores blobs as flat files named by upload id
type Adapter struct {
	root   string
	logger *slog.Logger
}

var _ port.BlobStorage = (*Adapter)(nil)

// NewAdapter creates the storage directory if needed
func NewAdapter(root string, logger *slog.Logger) (*Adapter, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", root, err)
	}
	logger.Info("file storage ready", "root", root)
	return &Adapter{root: root, logger: logger}, nil
}

func (a *Adapter) path(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: invalid blob id %q", domain.ErrInvalidUploadRequest, id)
	}
	return filepath.Join(a.root, id), nil
}

// Create allocates an empty blob
func (a *Adapter) Create(ctx context.Context, id string) error {
	p, err := a.path(id)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create blob: %w", err)
	}
	return f.Close()
}

// Append drops anything past offset, then writes r at offset and syncs.
// Bytes copied before a read error stay on disk and are counted.
func (a *Adapter) Append(ctx context.Context, id string, offset int64, r io.Reader) (int64, error) {
	p, err := a.path(id)
	if err != nil {
		return 0, err
	}
	f, err := os.OpenFile(p, os.O_WRONLY, 0)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, domain.ErrSessionNotFound
		}
		return 0, fmt.Errorf("failed to open blob: %w", err)
	}
	defer f.Close()

	if err := f.Truncate(offset); err != nil {
		return 0, fmt.Errorf("failed to truncate blob: %w", err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return 0, fmt.Errorf("failed to seek blob: %w", err)
	}

	n, copyErr := io.Copy(f, &contextReader{ctx: ctx, r: r})
	if syncErr := f.Sync(); syncErr != nil && copyErr == nil {
		copyErr = fmt.Errorf("failed to sync blob: %w", syncErr)
	}
	return n, copyErr
}

// Write stores a whole blob, removing it again on failure
func (a *Adapter) Write(ctx context.Context, id string, r io.Reader) (int64, error) {
	p, err := a.path(id)
	if err != nil {
		return 0, err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return 0, fmt.Errorf("failed to create blob: %w", err)
	}

	n, err := io.Copy(f, &contextReader{ctx: ctx, r: r})
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if rmErr := os.Remove(p); rmErr != nil {
			a.logger.Warn("failed to remove partial blob", "id", id, "error", rmErr)
		}
		return n, err
	}
	return n, nil
}

// Open returns a reader over the blob
func (a *Adapter) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	p, err := a.path(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

// Size returns the current blob length
func (a *Adapter) Size(ctx context.Context, id string) (int64, error) {
	p, err := a.path(id)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, domain.ErrFileNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}

// Delete removes the blob, missing blobs are ignored
func (a *Adapter) Delete(ctx context.Context, id string) error {
	p, err := a.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// contextReader stops a copy once the request context is done
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
