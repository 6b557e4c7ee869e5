package middleware

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/config"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"invitegen/pkg/logger"
)

// httpMetrics 网关和模板接口共用的 HTTP 指标
type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
	bodySize metric.Int64Histogram
}

var (
	metricsMu   sync.RWMutex
	instruments *httpMetrics
)

// InitMetrics 用给定 meter 注册 HTTP 指标，重复调用会替换旧的 instruments
func InitMetrics(meter metric.Meter) error {
	m := &httpMetrics{}
	var err error

	if m.requests, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}

	// 搜索请求要等 CRM 返回，桶上限放宽到 10s
	if m.duration, err = meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10),
	); err != nil {
		return err
	}

	if m.inFlight, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}

	if m.bodySize, err = meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("HTTP response body size"),
		metric.WithUnit("By"),
	); err != nil {
		return err
	}

	metricsMu.Lock()
	instruments = m
	metricsMu.Unlock()
	return nil
}

func currentMetrics() *httpMetrics {
	metricsMu.RLock()
	m := instruments
	metricsMu.RUnlock()
	if m != nil {
		return m
	}

	// 未显式初始化时退回全局 MeterProvider
	if err := InitMetrics(otel.Meter("invitegen/http")); err != nil {
		logger.Logger.Warn("Failed to init HTTP metrics", zap.Error(err))
		return nil
	}

	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return instruments
}

// OpenTelemetryMiddleware 每个请求一个 span，指标按路由模板聚合（/v1/templates/:id 而不是具体 id）
func OpenTelemetryMiddleware() app.HandlerFunc {
	tracer := otel.Tracer("invitegen/http")

	return func(ctx context.Context, c *app.RequestContext) {
		m := currentMetrics()
		start := time.Now()

		method := string(c.Method())
		route := c.FullPath()
		if route == "" {
			route = strings.ToValidUTF8(string(c.Path()), "")
		}

		spanCtx, span := tracer.Start(ctx, method+" "+route, trace.WithAttributes(
			semconv.HTTPMethod(method),
			semconv.HTTPRoute(route),
			attribute.String("http.client_ip", c.ClientIP()),
		))
		defer span.End()

		if id := c.GetHeader("X-Request-Id"); len(id) > 0 {
			span.SetAttributes(attribute.String("http.request_id", strings.ToValidUTF8(string(id), "")))
		}

		if m != nil {
			m.inFlight.Add(ctx, 1)
			defer m.inFlight.Add(ctx, -1)
		}

		c.Next(spanCtx)

		status := c.Response.StatusCode()
		span.SetAttributes(semconv.HTTPStatusCode(status))
		switch {
		case status >= 500:
			span.SetStatus(codes.Error, "server error")
			if last := c.Errors.Last(); last != nil {
				span.RecordError(last)
			}
		case status >= 400:
			span.SetStatus(codes.Error, "client error")
		default:
			span.SetStatus(codes.Ok, "")
		}

		if m == nil {
			return
		}
		attrs := metric.WithAttributes(
			semconv.HTTPMethod(method),
			semconv.HTTPRoute(route),
			semconv.HTTPStatusCode(status),
		)
		m.requests.Add(ctx, 1, attrs)
		m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
		if size := int64(len(c.Response.Body())); size > 0 {
			m.bodySize.Record(ctx, size, attrs)
		}
	}
}

// NewServerTracerConfig hertz server 追踪配置，返回 server option 和配套中间件
func NewServerTracerConfig(opts ...hertztracing.Option) (config.Option, app.HandlerFunc) {
	tracer, cfg := hertztracing.NewServerTracer(opts...)
	return tracer, hertztracing.ServerMiddleware(cfg)
}
