// Package runlock guards against overlapping orchestration runs.
package runlock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLock implements ingest.RunLock with SET NX + TTL. The TTL bounds
// how long a crashed run can hold the lock.
type RedisLock struct {
	client *redis.Client
	key    string
	token  string
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewRedisLock constructs a lock on the given key. Token identifies this
// process so Release only deletes its own lock.
func NewRedisLock(client *redis.Client, key, token string) *RedisLock {
	return &RedisLock{client: client, key: key, token: token}
}

// Acquire attempts to take the lock; false means another run holds it.
func (l *RedisLock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

// Release deletes the lock if this process still holds it.
func (l *RedisLock) Release(ctx context.Context) error {
	// Check-and-delete so an expired lock taken over by another run is
	// never removed from under it.
	const script = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`
	if err := l.client.Eval(ctx, script, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

// NopLock satisfies ingest.RunLock when no redis is configured; every
// acquire succeeds.
type NopLock struct{}

// Acquire always succeeds.
func (NopLock) Acquire(context.Context, time.Duration) (bool, error) { return true, nil }

// Release does nothing.
func (NopLock) Release(context.Context) error { return nil }
