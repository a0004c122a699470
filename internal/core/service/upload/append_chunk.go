package upload

import (
	"context"
	"errors"
	"filedrop/internal/core/domain"
	"fmt"
	"io"
	"strings"
)

// AppendChunk writes body at offset. The offset must equal the bytes already received,
// otherwise nothing is touched and domain.ErrOffsetMismatch is returned. A body running
// past the declared length is rejected with domain.ErrFileSizeTooBig and none of it is
// kept. Received bytes are recorded before any other write error is returned. Receiving
// the last byte finalizes the upload; an empty chunk on a fully received session retries
// the finalize.
func (u *uploadService) AppendChunk(ctx context.Context, identity domain.Identity, id string, offset int64, body io.Reader) (*domain.UploadSession, error) {
	if identity.UserID == "" {
		return nil, domain.ErrUnauthorized
	}

	lockCtx, cancel := context.WithTimeout(ctx, u.lockWait)
	unlock, err := u.locker.Lock(lockCtx, id)
	cancel()
	if err != nil {
		return nil, err
	}
	defer unlock()

	session, err := u.GetUpload(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if offset != session.Offset {
		return session, fmt.Errorf("%w: got %d, expected %d", domain.ErrOffsetMismatch, offset, session.Offset)
	}

	if session.Complete() {
		if _, err := io.Copy(io.Discard, &sizeGuard{r: body}); err != nil {
			return session, u.tooBig(session, err)
		}
		return session, u.finalizer.Finalize(ctx, *session)
	}

	// the client may drop mid chunk, progress and finalize must still be stored
	persistCtx := context.WithoutCancel(ctx)

	written, writeErr := u.storage.Append(ctx, id, offset, &sizeGuard{r: body, n: session.Remaining()})
	if errors.Is(writeErr, domain.ErrFileSizeTooBig) {
		if _, err := u.storage.Append(persistCtx, id, offset, strings.NewReader("")); err != nil {
			u.logger.Warn("failed to drop oversized chunk", "id", id, "error", err)
		}
		return session, u.tooBig(session, writeErr)
	}
	if written > 0 {
		if err := u.uow.UploadSessionRepo().AdvanceOffset(persistCtx, id, offset, offset+written); err != nil {
			return session, errors.Join(writeErr, fmt.Errorf("failed to record offset: %w", err))
		}
		session.Offset += written
	}
	if writeErr != nil {
		u.logger.Warn("chunk interrupted", "id", id, "offset", session.Offset, "error", writeErr)
		return session, fmt.Errorf("failed to write chunk: %w", writeErr)
	}

	if session.Complete() {
		if err := u.finalizer.Finalize(persistCtx, *session); err != nil {
			return session, err
		}
	}
	return session, nil
}

func (u *uploadService) tooBig(session *domain.UploadSession, err error) error {
	if !errors.Is(err, domain.ErrFileSizeTooBig) {
		return err
	}
	u.logger.Info("chunk rejected", "id", session.ID, "reason", err, "size", session.Size)
	return fmt.Errorf("%w: chunk runs past the declared length of %d bytes", domain.ErrFileSizeTooBig, session.Size)
}

// sizeGuard passes on at most n bytes and fails with domain.ErrFileSizeTooBig
// as soon as the underlying reader has more
type sizeGuard struct {
	r io.Reader
	n int64
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	if g.n <= 0 {
		var extra [1]byte
		for {
			k, err := g.r.Read(extra[:])
			if k > 0 {
				return 0, domain.ErrFileSizeTooBig
			}
			if err != nil {
				return 0, err
			}
		}
	}
	if int64(len(p)) > g.n {
		p = p[:g.n]
	}
	k, err := g.r.Read(p)
	g.n -= int64(k)
	return k, err
}
