// Package lock provides the posting locks used around multi-row updates.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/oilmill/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "oilmill:lock:"

// RedisLocker implements shared.Locker with redislock
type RedisLocker struct {
	client *redislock.Client
	retry  redislock.RetryStrategy
	logger *zap.Logger
}

// RedisLockerOption configures a RedisLocker
type RedisLockerOption func(*RedisLocker)

// WithRetry sets how long Obtain keeps trying before giving up
func WithRetry(backoff time.Duration, attempts int) RedisLockerOption {
	return func(l *RedisLocker) {
		l.retry = redislock.LimitRetry(redislock.LinearBackoff(backoff), attempts)
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) RedisLockerOption {
	return func(l *RedisLocker) {
		l.logger = logger
	}
}

// NewRedisLocker creates a locker on a redis client
func NewRedisLocker(client redis.UniversalClient, opts ...RedisLockerOption) *RedisLocker {
	l := &RedisLocker{
		client: redislock.New(client),
		retry:  redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 50),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Obtain takes the lock for key, retrying while another holder has it
func (l *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (shared.Unlock, error) {
	lock, err := l.client.Obtain(ctx, keyPrefix+key, ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, shared.NewDomainError(shared.CodeConcurrencyConflict,
			fmt.Sprintf("another posting holds %s, retry shortly", key))
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
			return err
		}
		return nil
	}, nil
}

var _ shared.Locker = (*RedisLocker)(nil)
