package middleware

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// CORSMiddleware 所有响应都允许任意来源；OPTIONS 直接返回 200 空响应
func CORSMiddleware() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if string(c.Method()) == consts.MethodOptions {
			c.AbortWithStatus(consts.StatusOK)
			return
		}

		c.Next(ctx)
	}
}
