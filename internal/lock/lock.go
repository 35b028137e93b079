// Package lock provides the advisory job lock that keeps the daily
// recurring-expense tick to a single instance. Two overlapping passes could
// double-materialize, so multi-instance deployments must run with Redis
// configured.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrNotObtained is returned when another holder owns the lock.
var ErrNotObtained = redislock.ErrNotObtained

type JobLock struct {
	client *redislock.Client
	rdb    *redis.Client
}

// New connects to Redis at addr and returns the lock client.
func New(ctx context.Context, addr string) (*JobLock, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &JobLock{client: redislock.New(rdb), rdb: rdb}, nil
}

// Acquire obtains the named lock for ttl. Returns ErrNotObtained when held
// elsewhere; callers skip the pass in that case.
func (l *JobLock) Acquire(ctx context.Context, name string, ttl time.Duration) (*redislock.Lock, error) {
	lock, err := l.client.Obtain(ctx, name, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrNotObtained
	}
	return lock, err
}

func (l *JobLock) Close() error {
	return l.rdb.Close()
}
