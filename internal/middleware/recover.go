package middleware

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"invitegen/config"
	"invitegen/pkg/errors"
	"invitegen/pkg/logger"
	"invitegen/pkg/response"
)

// maxLoggedBody 搜索请求和模板表单都很小，超过这个长度就不记录请求体
const maxLoggedBody = 2048

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	// ExposeDetails 为 true 时把 panic 内容和堆栈放进响应 details，仅用于开发环境
	ExposeDetails bool
	LogBody       bool
}

func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		ExposeDetails: !config.Cfg.IsProduction(),
		LogBody:       true,
	}
}

// RecoverMiddleware 把 handler 中的 panic 转成 500 INTERNAL_ERROR
func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := trimRuntimeFrames(debug.Stack())
				logPanic(ctx, c, rec, stack, cfg)
				writePanicResponse(ctx, c, rec, stack, cfg)
				c.Abort()
			}
		}()

		c.Next(ctx)
	}
}

func logPanic(ctx context.Context, c *app.RequestContext, rec interface{}, stack []byte, cfg RecoverConfig) {
	fields := []zap.Field{
		zap.String("panic", fmt.Sprintf("%v", rec)),
		zap.String("method", string(c.Method())),
		zap.String("path", string(c.Path())),
		zap.String("route", c.FullPath()),
		zap.String("client_ip", c.ClientIP()),
		zap.ByteString("stack", stack),
	}

	if id := c.GetHeader("X-Request-Id"); len(id) > 0 {
		fields = append(fields, zap.ByteString("request_id", id))
	}

	if cfg.LogBody {
		body := c.Request.Body()
		if len(body) > 0 && len(body) <= maxLoggedBody &&
			strings.Contains(string(c.ContentType()), "json") {
			fields = append(fields, zap.ByteString("body", body))
		}
	}

	span := trace.SpanFromContext(ctx)
	span.RecordError(fmt.Errorf("panic: %v", rec))
	span.SetStatus(codes.Error, "panic recovered")

	logger.Logger.Error("Panic recovered", fields...)
}

func writePanicResponse(ctx context.Context, c *app.RequestContext, rec interface{}, stack []byte, cfg RecoverConfig) {
	if !cfg.ExposeDetails {
		response.Error(ctx, c, errors.InternalError.WithMessage("Internal server error"))
		return
	}

	response.ErrorWithDetails(ctx, c, errors.InternalError.WithMessage("Internal error: %v", rec), map[string]interface{}{
		"panic": fmt.Sprintf("%v", rec),
		"stack": string(stack),
	})
}

// trimRuntimeFrames 去掉 runtime 和本中间件自身的栈帧
func trimRuntimeFrames(stack []byte) []byte {
	lines := strings.Split(string(stack), "\n")
	kept := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		// 函数名和文件位置成对出现
		if i+1 < len(lines) && strings.HasPrefix(lines[i+1], "\t") {
			loc := lines[i+1]
			if strings.Contains(loc, "/src/runtime/") || strings.Contains(loc, "middleware/recover.go") {
				i++
				continue
			}
			kept = append(kept, line, loc)
			i++
			continue
		}
		kept = append(kept, line)
	}

	return []byte(strings.Join(kept, "\n"))
}
