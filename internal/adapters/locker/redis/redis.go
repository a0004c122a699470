package redis

import (
	"context"
	"errors"
	"filedrop/internal/core/domain"
	"filedrop/internal/core/port"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

const keyPrefix = "filedrop:upload-lock:"

var unlockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker is a Redis backed session lock shared by every replica
type Locker struct {
	client *goredis.Client
	ttl    time.Duration
	poll   time.Duration
	logger *slog.Logger
}

var _ port.Locker = (*Locker)(nil)

// NewLocker creates a Locker. ttl bounds how long a crashed holder blocks a session.
func NewLocker(client *goredis.Client, ttl time.Duration, logger *slog.Logger) *Locker {
	return &Locker{client: client, ttl: ttl, poll: 50 * time.Millisecond, logger: logger}
}

// Lock polls SET NX until the key is free or ctx is done
func (l *Locker) Lock(ctx context.Context, id string) (func(), error) {
	key := keyPrefix + id
	token := uuid.NewString()

	err := retry.Do(ctx, retry.NewConstant(l.poll), func(ctx context.Context) error {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(domain.ErrLockUnavailable)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrLockUnavailable) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, domain.ErrLockUnavailable
		}
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(releaseCtx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release upload lock", "id", id, "error", err)
		}
	}, nil
}
