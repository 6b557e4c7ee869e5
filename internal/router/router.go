package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/route"

	"invitegen/internal/handler"
	"invitegen/internal/middleware"
)

func Register(h *server.Hertz) {
	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	RegisterRoutes(h.Group("/v1"))
}

// RegisterRoutes 挂载业务路由，测试中直接挂到 ut 用的引擎上
func RegisterRoutes(v1 *route.RouterGroup) {
	// 通讯录网关：不带 data 包装，OPTIONS 显式注册
	directory := v1.Group("/directory")
	{
		directory.GET("/contacts", handler.ListDirectoryContacts)
		directory.OPTIONS("/contacts", handler.Preflight)
		directory.POST("/search", middleware.SearchRateLimitMiddleware(), handler.SearchDirectory)
		directory.OPTIONS("/search", handler.Preflight)
	}

	// 模板
	templates := v1.Group("/templates")
	{
		templates.POST("", handler.SaveTemplate)
		templates.GET("", handler.ListTemplates)
		templates.POST("/preview", handler.PreviewForm)
		templates.GET("/:id", handler.GetTemplate)
		templates.GET("/:id/preview", handler.PreviewTemplate)
		templates.GET("/:id/invite.ics", handler.ExportTemplateICS)
		templates.GET("/:id/occurrences", handler.TemplateOccurrences)
	}
}
