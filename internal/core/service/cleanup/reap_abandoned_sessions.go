package cleanup

import (
	"context"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"time"
)

const lockWait = 100 * time.Millisecond

// ReapAbandonedSessions reclaims sessions idle since now minus the ttl.
// Each session is read again once its lock is held: a session finalized or resumed
// since the sweep listed it is left alone. Fully received sessions get their finalize
// retried instead of being dropped. Failures are logged and the sweep moves on.
func (c *cleanupService) ReapAbandonedSessions(ctx context.Context, now time.Time) (port.ReapReport, error) {
	var report port.ReapReport
	cutoff := now.Add(-c.ttl)

	sessions, err := c.uow.UploadSessionRepo().FindInactive(ctx, cutoff)
	if err != nil {
		return report, err
	}
	report.Found = len(sessions)

	for _, listed := range sessions {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		lockCtx, cancel := context.WithTimeout(ctx, lockWait)
		unlock, lockErr := c.locker.Lock(lockCtx, listed.ID)
		cancel()
		if lockErr != nil {
			c.logger.Info("skipping busy session", "id", listed.ID)
			report.Skipped++
			continue
		}

		c.reap(ctx, listed.ID, cutoff, &report)
		unlock()
	}
	c.logger.Info("abandoned sessions reaped",
		"found", report.Found, "finalized", report.Finalized, "removed", report.Removed, "skipped", report.Skipped)
	return report, nil
}

// reap handles one session while its lock is held
func (c *cleanupService) reap(ctx context.Context, id string, cutoff time.Time, report *port.ReapReport) {
	session, err := c.uow.UploadSessionRepo().Get(ctx, id)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		c.logger.Info("session went away before it was reaped", "id", id)
		report.Skipped++
		return
	case err != nil:
		c.logger.Error("failed to reload abandoned session", "id", id, "error", err)
		report.Skipped++
		return
	case !session.UpdatedAt.Before(cutoff):
		c.logger.Info("session resumed before it was reaped", "id", id)
		report.Skipped++
		return
	}

	if session.Complete() {
		if err := c.finalizer.Finalize(ctx, *session); err != nil {
			c.logger.Error("failed to finalize abandoned session", "id", id, "error", err)
			report.Skipped++
			return
		}
		report.Finalized++
		return
	}

	if err := c.remove(ctx, *session); err != nil {
		c.logger.Error("failed to remove abandoned session", "id", id, "error", err)
		report.Skipped++
		return
	}
	report.Removed++
}

// remove drops the session row, then its blob unless a file record owns it
func (c *cleanupService) remove(ctx context.Context, session domain.UploadSession) error {
	txErr := c.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		return uow.UploadSessionRepo().Delete(ctx, session.ID)
	})
	if txErr != nil {
		return txErr
	}

	_, err := c.uow.FileRepo().FindByID(ctx, session.ID)
	switch {
	case err == nil:
		c.logger.Warn("keeping blob of a committed file", "id", session.ID)
		return nil
	case !errors.Is(err, domain.ErrFileNotFound):
		return err
	}
	return c.storage.Delete(ctx, session.ID)
}
