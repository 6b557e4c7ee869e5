package middleware

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"invitegen/pkg/logger"
)

// Init 在 otel.Init 之后调用，用真实的 MeterProvider 注册 HTTP 指标
func Init() error {
	if err := InitMetrics(otel.Meter("invitegen/http")); err != nil {
		logger.Logger.Error("Failed to initialize HTTP metrics", zap.Error(err))
		return err
	}

	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}
