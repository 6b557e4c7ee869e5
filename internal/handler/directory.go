package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"invitegen/internal/model/dto"
	"invitegen/internal/service"
	"invitegen/pkg/errors"
	"invitegen/pkg/logger"
	"invitegen/pkg/response"
)

// ListDirectoryContacts 全量联系人（旧字段命名），不带 data 包装
func ListDirectoryContacts(ctx context.Context, c *app.RequestContext) {
	resp, err := service.Directory().List(ctx)
	if err != nil {
		logger.Logger.Error("Failed to list directory contacts", zap.Error(err))
		response.Error(ctx, c, err)
		return
	}

	c.JSON(consts.StatusOK, resp)
}

// SearchDirectory 按 searchType 搜索联系人
func SearchDirectory(ctx context.Context, c *app.RequestContext) {
	var req dto.SearchRequest
	if len(c.Request.Body()) > 0 {
		if err := c.BindJSON(&req); err != nil {
			response.Error(ctx, c, errors.InvalidRequest.WithMessage("Invalid JSON body: %s", err.Error()))
			return
		}
	}

	resp, err := service.Directory().Search(ctx, req)
	if err != nil {
		logger.Logger.Warn("Directory search failed",
			zap.String("search_type", req.SearchType),
			zap.Error(err),
		)
		response.Error(ctx, c, err)
		return
	}

	c.JSON(consts.StatusOK, resp)
}

// Preflight 显式的 OPTIONS 路由，CORS 头由中间件写入
func Preflight(ctx context.Context, c *app.RequestContext) {
	c.Status(consts.StatusOK)
}
