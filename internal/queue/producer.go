package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invitegen/config"
	"invitegen/internal/model"
	pkgerrors "invitegen/pkg/errors"
	"invitegen/pkg/logger"
	"invitegen/storage/mq"
)

// Publisher 事件发布器
type Publisher struct {
	publish func(ctx context.Context, exchange, routingKey, messageID string, body interface{}) error
	enabled func() bool
}

func NewPublisher() *Publisher {
	return &Publisher{
		publish: mq.PublishMessage,
		enabled: func() bool {
			return config.Cfg.RabbitMQEnabled && mq.Connection() != nil
		},
	}
}

// PublishTemplateSaved 发布 template.saved 事件
func (p *Publisher) PublishTemplateSaved(ctx context.Context, t *model.EventTemplate) error {
	if !p.enabled() {
		return pkgerrors.ErrPublisherUnavailable
	}

	msg := TemplateSavedMessage{
		MessageID:  uuid.NewString(),
		TemplateID: t.ID,
		SavedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := p.publish(ctx, mq.EventsExchange, mq.TemplateSavedRouting, msg.MessageID, msg); err != nil {
		logger.Logger.Error("Failed to publish template saved message",
			zap.Int64("template_id", t.ID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published template saved message",
		zap.String("message_id", msg.MessageID),
		zap.Int64("template_id", t.ID),
	)
	return nil
}
