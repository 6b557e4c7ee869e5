package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"invitegen/config"
	"invitegen/internal/queue"
	"invitegen/internal/service"
	"invitegen/pkg/logger"
	"invitegen/pkg/metrics"
	"invitegen/pkg/otel"
	"invitegen/storage"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	shutdownOTel, err := otel.Init(ctx, otel.ConfigFromEnv("worker"))
	if err != nil {
		logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
	}
	defer func() {
		_ = shutdownOTel(context.Background())
	}()

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics", zap.Error(err))
	}

	if !config.Cfg.RabbitMQEnabled {
		logger.Logger.Fatal("Worker requires RABBITMQ_ENABLED=true")
	}

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	// 模板服务作为渲染器：收到 template.saved 后把预览文本写入缓存
	if err := queue.StartTemplateRenderConsumer(ctx, service.Template()); err != nil {
		logger.Logger.Error("Template render consumer stopped", zap.Error(err))
	}

	logger.Logger.Info("Worker service shutting down gracefully")
}
