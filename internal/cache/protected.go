package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	ri "github.com/redis/go-redis/v9"

	"invitegen/storage/redis"
)

// 防雪崩：TTL 上叠加的随机抖动上限
const ttlJitterMax = 30 * time.Second

// ErrCacheUnavailable Redis 未初始化
var ErrCacheUnavailable = errors.New("redis client unavailable")

// ProtectedCache 带 JSON 序列化和 TTL 抖动的缓存包装器
type ProtectedCache struct {
	client    func() ri.Cmdable
	keyPrefix string
	ttl       time.Duration
}

// NewProtectedCache 创建受保护的缓存实例，默认使用全局 Redis 客户端
func NewProtectedCache(keyPrefix string, ttl time.Duration) *ProtectedCache {
	return &ProtectedCache{
		keyPrefix: keyPrefix,
		ttl:       ttl,
		client: func() ri.Cmdable {
			if c := redis.Client(); c != nil {
				return c
			}
			return nil
		},
	}
}

// WithClient 使用指定客户端
func (pc *ProtectedCache) WithClient(c ri.Cmdable) *ProtectedCache {
	pc.client = func() ri.Cmdable { return c }
	return pc
}

func (pc *ProtectedCache) cmd() (ri.Cmdable, error) {
	c := pc.client()
	if c == nil {
		return nil, ErrCacheUnavailable
	}
	return c, nil
}

// Set 设置缓存
func (pc *ProtectedCache) Set(ctx context.Context, key string, value interface{}) error {
	c, err := pc.cmd()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	ttl := pc.ttl + time.Duration(rand.Int63n(int64(ttlJitterMax)))
	return c.Set(ctx, redis.Key(pc.keyPrefix, key), data, ttl).Err()
}

// Get 获取缓存，未命中返回 false
func (pc *ProtectedCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c, err := pc.cmd()
	if err != nil {
		return false, err
	}

	data, err := c.Get(ctx, redis.Key(pc.keyPrefix, key)).Bytes()
	if err != nil {
		if errors.Is(err, ri.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return true, nil
}
