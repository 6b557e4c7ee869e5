package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"invitegen/pkg/errors"
	"invitegen/pkg/logger"
	"invitegen/pkg/response"
	"invitegen/storage/redis"
)

// RateLimitConfig 按客户端 IP 的滑动窗口限流
type RateLimitConfig struct {
	KeyPrefix   string
	Window      time.Duration
	MaxRequests int
}

// SearchRateLimitConfig 每次搜索都会打到 CRM，搜索接口单独限流
var SearchRateLimitConfig = RateLimitConfig{
	KeyPrefix:   "rate:search",
	Window:      10 * time.Second,
	MaxRequests: 30,
}

// RateLimiter 基于 Redis zset 的滑动窗口
type RateLimiter struct {
	config RateLimitConfig
	client func() *redislib.Client
	now    func() time.Time
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		config: config,
		client: redis.Client,
		now:    time.Now,
	}
}

// Allow 记录一次请求并返回窗口内的请求数
func (rl *RateLimiter) Allow(ctx context.Context, identifier string) (bool, int, error) {
	client := rl.client()
	if client == nil {
		return true, 0, errRedisUnavailable
	}

	key := redis.Key(rl.config.KeyPrefix, identifier)
	now := rl.now()
	windowStart := now.Add(-rl.config.Window)

	pipe := client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redislib.Z{
		Score:  float64(now.UnixNano()),
		Member: now.UnixNano(),
	})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window+10*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		return true, 0, fmt.Errorf("failed to execute rate limit pipeline: %w", err)
	}

	count := int(card.Val())
	return count <= rl.config.MaxRequests, count, nil
}

var errRedisUnavailable = fmt.Errorf("redis not initialized")

// RateLimitMiddleware Redis 不可用时放行，只记日志
func RateLimitMiddleware(config RateLimitConfig) app.HandlerFunc {
	limiter := NewRateLimiter(config)

	return func(ctx context.Context, c *app.RequestContext) {
		allowed, count, err := limiter.Allow(ctx, "ip:"+c.ClientIP())
		if err != nil {
			if err != errRedisUnavailable {
				logger.Logger.Warn("Rate limit check failed, allowing request", zap.Error(err))
			}
			c.Next(ctx)
			return
		}

		remaining := config.MaxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		c.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(config.MaxRequests))
		c.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			logger.Logger.Warn("Rate limit exceeded",
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", string(c.Path())),
				zap.Int("count", count),
			)
			response.Error(ctx, c, errors.TooManyRequests)
			c.Abort()
			return
		}

		c.Next(ctx)
	}
}

// SearchRateLimitMiddleware 通讯录搜索限流
func SearchRateLimitMiddleware() app.HandlerFunc {
	return RateLimitMiddleware(SearchRateLimitConfig)
}
