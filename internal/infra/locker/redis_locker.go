package locker

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dispatchLockKey = "immunization:dispatch:lock"

// RedisRunLocker guards the dispatch loop with a single Redis key so at
// most one run executes at a time, even with several instances deployed.
type RedisRunLocker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisRunLocker(client *redis.Client, ttl time.Duration) *RedisRunLocker {
	return &RedisRunLocker{client: client, key: dispatchLockKey, ttl: ttl}
}

// TryLock attempts to take the run lock without blocking. The TTL bounds
// how long a crashed run can keep the lock held.
func (l *RedisRunLocker) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring dispatch lock: %w", err)
	}
	return ok, nil
}

// Unlock releases the run lock.
func (l *RedisRunLocker) Unlock(ctx context.Context) error {
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("releasing dispatch lock: %w", err)
	}
	return nil
}
