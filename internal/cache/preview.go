package cache

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"invitegen/pkg/logger"
)

// 模板不可变，预览可以长时间缓存
const previewTTL = 7 * 24 * time.Hour

type previewEntry struct {
	Text string `json:"text"`
}

// PreviewCache 模板文本预览缓存，由 worker 写入
type PreviewCache struct {
	pc      *ProtectedCache
	breaker *CircuitBreaker
}

func NewPreviewCache() *PreviewCache {
	return &PreviewCache{
		pc:      NewProtectedCache("template:preview", previewTTL),
		breaker: PreviewBreaker,
	}
}

func (c *PreviewCache) Get(ctx context.Context, templateID int64) (string, bool) {
	var entry previewEntry
	var hit bool

	err := c.breaker.Call(ctx, func() error {
		var err error
		hit, err = c.pc.Get(ctx, strconv.FormatInt(templateID, 10), &entry)
		return err
	})
	if err != nil {
		logger.Logger.Warn("Failed to read preview cache",
			zap.Int64("template_id", templateID),
			zap.Error(err),
		)
		return "", false
	}

	return entry.Text, hit
}

func (c *PreviewCache) Set(ctx context.Context, templateID int64, text string) error {
	return c.breaker.Call(ctx, func() error {
		return c.pc.Set(ctx, strconv.FormatInt(templateID, 10), previewEntry{Text: text})
	})
}
