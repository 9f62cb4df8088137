package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker hands out short-lived exclusive locks shared by every replica
// connected to the same Redis.
type RedisLocker struct {
	client *redislock.Client
	prefix string
}

// NewRedisLocker returns nil for a nil client; callers treat a nil locker as
// "run unlocked".
func NewRedisLocker(rdb *redis.Client, namespace string) *RedisLocker {
	if rdb == nil {
		return nil
	}
	return &RedisLocker{client: redislock.New(rdb), prefix: "invoizo:" + namespace + ":lock:"}
}

// TryLock attempts to take key for ttl without retrying. ok is false when
// another holder has it.
func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error) {
	lock, err := l.client.Obtain(ctx, l.prefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}, true, nil
}
