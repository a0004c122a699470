package port

import "context"

// Locker serializes work on a single upload session
type Locker interface {
	Lock(ctx context.Context, id string) (unlock func(), err error)
}
