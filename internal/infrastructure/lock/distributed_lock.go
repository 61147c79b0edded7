package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrLockFailed = errors.New("failed to acquire distributed lock")

// DistributedLock is a redis SET NX EX lock. The value identifies the holder
// so Unlock never releases a lock that has expired and been re-acquired by
// someone else.
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock attempts to take the lock without blocking.
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock retries TryLock up to maxRetries times.
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock releases the lock if we still hold it. Check and delete run as one
// Lua script to stay atomic.
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// NewCallbackLock serializes gateway callback processing per external
// reference. The providers retry aggressively; without the lock two retries of
// the same callback could both pass the pending check before either commits.
func NewCallbackLock(client *redis.Client, provider, externalRef string) *DistributedLock {
	key := fmt.Sprintf("gateway:lock:%s:%s", provider, externalRef)
	return NewDistributedLock(client, key, externalRef, 30*time.Second)
}
