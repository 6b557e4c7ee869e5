package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"invitegen/internal/model/dto"
	"invitegen/pkg/logger"
	"invitegen/pkg/metrics"
)

const directoryListKey = "contacts"

// DirectoryCache 全量通讯录缓存。任何失败都只记录日志，不影响请求
type DirectoryCache struct {
	pc      *ProtectedCache
	breaker *CircuitBreaker
}

func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		pc:      NewProtectedCache("directory", ttl),
		breaker: DirectoryBreaker,
	}
}

// Get 读取缓存的全量列表
func (c *DirectoryCache) Get(ctx context.Context) (*dto.ListResponse, bool) {
	var resp dto.ListResponse
	var hit bool

	err := c.breaker.Call(ctx, func() error {
		var err error
		hit, err = c.pc.Get(ctx, directoryListKey, &resp)
		return err
	})
	if err != nil {
		metrics.RecordCache(ctx, "error")
		logger.Logger.Warn("Failed to read directory cache", zap.Error(err))
		return nil, false
	}

	if !hit {
		metrics.RecordCache(ctx, "miss")
		return nil, false
	}

	metrics.RecordCache(ctx, "hit")
	return &resp, true
}

// Set 写入全量列表
func (c *DirectoryCache) Set(ctx context.Context, resp *dto.ListResponse) {
	err := c.breaker.Call(ctx, func() error {
		return c.pc.Set(ctx, directoryListKey, resp)
	})
	if err != nil {
		logger.Logger.Warn("Failed to write directory cache",
			zap.Int("contacts", len(resp.Contacts)),
			zap.Error(err),
		)
	}
}
