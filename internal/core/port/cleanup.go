package port

import (
	"context"
	"time"
)

// ReapReport counts what one reaper sweep did
type ReapReport struct {
	Found     int
	Finalized int
	Removed   int
	// Skipped sessions were locked by an in-flight request or failed to reclaim
	Skipped int
}

// CleanupService reclaims upload sessions the client walked away from
type CleanupService interface {
	ReapAbandonedSessions(ctx context.Context, now time.Time) (ReapReport, error)
}
