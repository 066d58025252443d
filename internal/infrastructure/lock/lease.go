package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/tpm/backend/internal/domain/shared"
)

// RedisLeaseLocker hands out short-lived exclusive leases backed by Redis.
// It fails fast when the lease is already held instead of blocking, so a
// second generation request for the same report gets an immediate conflict.
type RedisLeaseLocker struct {
	locker *redislock.Client
	ttl    time.Duration
}

// NewRedisLeaseLocker creates a lease locker with the given lease lifetime
func NewRedisLeaseLocker(client redis.UniversalClient, ttl time.Duration) *RedisLeaseLocker {
	return &RedisLeaseLocker{
		locker: redislock.New(client),
		ttl:    ttl,
	}
}

// Acquire obtains the lease for key, returning a release function. A lease
// already held by another run maps to ErrGenerationInFlight.
func (l *RedisLeaseLocker) Acquire(ctx context.Context, key string) (func(context.Context) error, error) {
	lease, err := l.locker.Obtain(ctx, key, l.ttl, nil)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, shared.ErrGenerationInFlight
		}
		return nil, err
	}

	release := func(ctx context.Context) error {
		if err := lease.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}
		return nil
	}
	return release, nil
}
