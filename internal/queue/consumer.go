package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"invitegen/internal/cache"
	"invitegen/pkg/logger"
	"invitegen/storage/mq"
)

const processedTTL = 24 * time.Hour

// Renderer 把模板渲染进预览缓存
type Renderer interface {
	RenderToCache(ctx context.Context, templateID int64) error
}

// Deduper 消息去重，TryLock 返回 false 表示已处理过
type Deduper interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type redisDeduper struct{}

func (redisDeduper) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return cache.TryLock(ctx, key, ttl)
}

func (redisDeduper) Unlock(ctx context.Context, key string) error {
	return cache.Unlock(ctx, key)
}

// TemplateSavedHandler 处理 template.saved 消息
type TemplateSavedHandler struct {
	renderer Renderer
	dedup    Deduper
}

func NewTemplateSavedHandler(renderer Renderer, dedup Deduper) *TemplateSavedHandler {
	if dedup == nil {
		dedup = redisDeduper{}
	}
	return &TemplateSavedHandler{renderer: renderer, dedup: dedup}
}

// Handle 解析并处理一条消息，返回 error 时消息进入死信队列
func (h *TemplateSavedHandler) Handle(ctx context.Context, body []byte) error {
	var msg TemplateSavedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to unmarshal template saved message: %w", err)
	}

	key := "msg:" + msg.MessageID
	if msg.MessageID != "" {
		acquired, err := h.dedup.TryLock(ctx, key, processedTTL)
		if err != nil {
			// 去重失败时继续处理，渲染本身是幂等的
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !acquired {
			logger.Logger.Info("Message already processed, skipping",
				zap.String("message_id", msg.MessageID),
				zap.Int64("template_id", msg.TemplateID),
			)
			return nil
		}
	}

	if err := h.renderer.RenderToCache(ctx, msg.TemplateID); err != nil {
		if msg.MessageID != "" {
			_ = h.dedup.Unlock(ctx, key)
		}
		return fmt.Errorf("failed to render template %d: %w", msg.TemplateID, err)
	}

	logger.Logger.Info("Template preview rendered",
		zap.String("message_id", msg.MessageID),
		zap.Int64("template_id", msg.TemplateID),
	)
	return nil
}

// StartTemplateRenderConsumer 启动模板渲染消费者，阻塞直到 ctx 取消
func StartTemplateRenderConsumer(ctx context.Context, renderer Renderer) error {
	h := NewTemplateSavedHandler(renderer, nil)

	return mq.Consume(ctx, mq.ConsumeOptions{
		Queue:         mq.TemplateRenderQueue,
		ConsumerTag:   "template_render_consumer",
		PrefetchCount: 1,
		Handler:       h.Handle,
	})
}
