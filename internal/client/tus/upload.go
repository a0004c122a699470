package tus

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sethvargo/go-retry"
)

// Upload is one file transferred through a Client. It keeps its url between
// runs so a stopped upload resumes where the server left it.
type Upload struct {
	Source   io.ReaderAt
	Size     int64
	Metadata map[string]string
	// OnProgress receives the bytes acknowledged by the server so far
	OnProgress func(sent, total int64)

	url    string
	offset int64
}

// URL returns the upload url, empty until the upload was created
func (u *Upload) URL() string {
	return u.url
}

// ResumeFrom points u at an upload the server already holds, the next run
// continues from the server offset instead of creating a new one
func (u *Upload) ResumeFrom(url string) {
	u.url = url
	u.offset = 0
}

// Reset forgets the server side upload so the next run starts over
func (u *Upload) Reset() {
	u.url = ""
	u.offset = 0
}

// Upload creates or resumes u and sends it chunk by chunk.
// Every request is retried on the configured delays; a retried chunk
// first re-reads the server offset. It returns when the last chunk was
// acknowledged, ctx is done or a request failed for good.
func (c *Client) Upload(ctx context.Context, u *Upload) error {
	if u.url == "" {
		err := c.withRetry(ctx, func(ctx context.Context, _ bool) error {
			location, err := c.Create(ctx, u.Size, u.Metadata)
			if err != nil {
				return err
			}
			u.url = location
			u.offset = 0
			return nil
		})
		if err != nil {
			return err
		}
		c.logger.Debug("upload created", "url", u.url, "size", u.Size)
		if u.Size == 0 {
			u.progress()
			return nil
		}
	} else {
		err := c.withRetry(ctx, func(ctx context.Context, _ bool) error {
			offset, err := c.Offset(ctx, u.url)
			if err != nil {
				return err
			}
			u.offset = offset
			return nil
		})
		if err != nil {
			return err
		}
		c.logger.Debug("upload resumed", "url", u.url, "offset", u.offset)
		u.progress()
	}

	for {
		done := false
		err := c.withRetry(ctx, func(ctx context.Context, retrying bool) error {
			if retrying {
				offset, err := c.Offset(ctx, u.url)
				if err != nil {
					return err
				}
				u.offset = offset
			}
			// at offset == size an empty chunk asks the server to finish the upload
			n := min(c.config.ChunkSize, u.Size-u.offset)
			offset, err := c.Patch(ctx, u.url, u.offset, io.NewSectionReader(u.Source, u.offset, n), n)
			if err != nil {
				return err
			}
			u.offset = offset
			done = offset >= u.Size
			u.progress()
			return nil
		})
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (u *Upload) progress() {
	if u.OnProgress != nil {
		u.OnProgress(u.offset, u.Size)
	}
}

// withRetry runs fn until it succeeds, fails with a final error or the delays run out
func (c *Client) withRetry(ctx context.Context, fn func(ctx context.Context, retrying bool) error) error {
	attempt := 0
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		err := fn(ctx, attempt > 0)
		attempt++
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !retryable(err) {
			return err
		}
		c.logger.Warn("request failed, retrying", "attempt", attempt, "error", err)
		return retry.RetryableError(err)
	})
}

func (c *Client) backoff() retry.Backoff {
	delays := c.config.RetryDelays
	i := 0
	return retry.BackoffFunc(func() (time.Duration, bool) {
		if i >= len(delays) {
			return 0, true
		}
		d := delays[i]
		i++
		return d, false
	})
}

func retryable(err error) bool {
	var transferErr *TransferError
	if errors.As(err, &transferErr) {
		return transferErr.Retryable()
	}
	return !errors.Is(err, ErrUploadNotCreated)
}
