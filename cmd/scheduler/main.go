package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"invitegen/config"
	"invitegen/internal/schedule"
	"invitegen/pkg/hubspot"
	"invitegen/pkg/logger"
	"invitegen/pkg/metrics"
	"invitegen/pkg/otel"
	"invitegen/storage/redis"
)

func main() {
	logger.Init()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Logger.Info("Scheduler received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	shutdownOTel, err := otel.Init(ctx, otel.ConfigFromEnv("scheduler"))
	if err != nil {
		logger.Logger.Fatal("Failed to initialize OpenTelemetry", zap.Error(err))
	}
	defer func() {
		_ = shutdownOTel(context.Background())
	}()

	if err := metrics.InitMetrics(); err != nil {
		logger.Logger.Warn("Failed to initialize metrics", zap.Error(err))
	}

	// 只刷新通讯录缓存，不需要数据库和 MQ
	if err := redis.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize Redis for scheduler", zap.Error(err))
	}
	defer func() {
		_ = redis.Close(context.Background())
	}()

	if err := hubspot.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize HubSpot client", zap.Error(err))
	}

	refresher := schedule.DefaultDirectoryRefresher()

	c := schedule.NewCron()
	if _, err := refresher.Register(ctx, c, config.Cfg.DirectoryRefreshCron); err != nil {
		logger.Logger.Fatal("Invalid DIRECTORY_REFRESH_CRON",
			zap.String("spec", config.Cfg.DirectoryRefreshCron),
			zap.Error(err),
		)
	}

	logger.Logger.Info("Scheduler service starting",
		zap.String("service", config.Cfg.ServiceName+"-scheduler"),
		zap.String("cron", config.Cfg.DirectoryRefreshCron),
		zap.String("environment", config.Cfg.Environment),
	)

	// 启动时先刷新一次，避免等到第一个 cron 周期
	_ = refresher.RunOnce(ctx)

	c.Start()
	<-ctx.Done()

	// 等待正在执行的刷新结束
	<-c.Stop().Done()

	logger.Logger.Info("Scheduler service shutting down gracefully")
}
