package cache

import (
	"context"
	"time"

	"invitegen/storage/redis"
)

// 基于 SetNX 的分布式锁，scheduler 多实例刷新和 worker 幂等都依赖它
const lockPrefix = "lock"

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	c := redis.Client()
	if c == nil {
		return false, ErrCacheUnavailable
	}

	return c.SetNX(ctx, redis.Key(lockPrefix, key), 1, ttl).Result()
}

func Unlock(ctx context.Context, key string) error {
	c := redis.Client()
	if c == nil {
		return ErrCacheUnavailable
	}

	return c.Del(ctx, redis.Key(lockPrefix, key)).Err()
}
