// Package redislock provides the advisory SetNX lock that keeps
// overlapping fee-collection runs from scanning the same rows. The
// ledger stays correct without it; per-row conditional updates carry
// the exactly-once guarantee.
package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisLocker struct {
	rdb *redis.Client
}

func NewRedisLocker(addr, password string, db int) (*RedisLocker, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisLocker{rdb: rdb}, nil
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", key), "1", ttl).Result()
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.rdb.Del(ctx, fmt.Sprintf("lock:%s", key)).Err()
}

func (l *RedisLocker) Close() error {
	return l.rdb.Close()
}
