package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"invitegen/config"
	"invitegen/pkg/logger"
)

// 事件拓扑：一个 topic exchange，模板渲染队列绑定 template.saved
const (
	EventsExchange         = "invitegen.events"
	TemplateRenderQueue    = "invitegen.template.render"
	TemplateSavedRouting   = "template.saved"
	templateRenderDLQ      = "invitegen.template.render.dlq"
	deadLetterExchangeName = "invitegen.dlx"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		if !config.Cfg.RabbitMQEnabled {
			logger.Logger.Info("RabbitMQ disabled, skipping connection")
			return
		}

		conn, connErr = amqp.Dial(config.Cfg.GetRabbitMQURL())
		if connErr != nil {
			logger.Logger.Error("Failed to connect to RabbitMQ", zap.Error(connErr))
			return
		}

		if connErr = declareTopology(); connErr != nil {
			logger.Logger.Error("Failed to declare RabbitMQ topology", zap.Error(connErr))
			return
		}

		logger.Logger.Info("RabbitMQ initialized successfully",
			zap.String("exchange", EventsExchange),
			zap.String("queue", TemplateRenderQueue),
		)
	})

	return connErr
}

// Connection 返回全局连接，未启用或未初始化时为 nil
func Connection() *amqp.Connection {
	return conn
}

func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(EventsExchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	if err := ch.ExchangeDeclare(deadLetterExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead letter exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(templateRenderDLQ, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead letter queue: %w", err)
	}
	if err := ch.QueueBind(templateRenderDLQ, "", deadLetterExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead letter queue: %w", err)
	}

	_, err = ch.QueueDeclare(TemplateRenderQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": deadLetterExchangeName,
	})
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(TemplateRenderQueue, TemplateSavedRouting, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	return nil
}

func Close(ctx context.Context) error {
	closePublisherChannel()

	if conn == nil || conn.IsClosed() {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
