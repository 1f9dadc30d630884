package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/thynetwork/timeclock/internal/core/domain"
	"github.com/thynetwork/timeclock/internal/core/ports"
)

const (
	defaultLockTTL  = 10 * time.Second
	defaultLockWait = 3 * time.Second
	lockRetryDelay  = 25 * time.Millisecond
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var _ ports.KeyedSerializer = (*ClockLock)(nil)

// ClockLock serializes clock actions per user across API instances.
// Key format: clocklock:<user_id>
type ClockLock struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewClockLock creates a ClockLock. ttl bounds how long a crashed holder can
// block a user; wait bounds how long Do waits for a busy lock.
func NewClockLock(client *redis.Client, ttl, wait time.Duration) *ClockLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &ClockLock{client: client, ttl: ttl, wait: wait}
}

// Do acquires the lock for key, runs fn and releases the lock. It returns
// domain.ErrClockBusy when the lock is not acquired within the wait period.
func (l *ClockLock) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}
	defer func() {
		// The caller's ctx may already be done; release on a fresh one.
		relCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		_ = releaseScript.Run(relCtx, l.client, []string{l.key(key)}, token).Err()
	}()

	return fn(ctx)
}

func (l *ClockLock) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.client.SetNX(ctx, l.key(key), token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire clock lock: %w", err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return domain.ErrClockBusy
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
}

func (l *ClockLock) key(userID string) string {
	return fmt.Sprintf("clocklock:%s", userID)
}
