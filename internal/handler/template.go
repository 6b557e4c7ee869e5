package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"invitegen/internal/formatter"
	"invitegen/internal/model/dto"
	"invitegen/internal/service"
	"invitegen/pkg/errors"
	"invitegen/pkg/logger"
	"invitegen/pkg/response"
)

// SaveTemplate 保存一份模板快照
func SaveTemplate(ctx context.Context, c *app.RequestContext) {
	var req dto.SaveTemplateRequest
	if err := c.BindJSON(&req); err != nil {
		response.Error(ctx, c, errors.InvalidRequest.WithMessage("Invalid JSON body: %s", err.Error()))
		return
	}

	item, err := service.Template().Save(ctx, req)
	if err != nil {
		if _, ok := errors.As(err); !ok {
			logger.Logger.Error("Failed to save template", zap.Error(err))
		}
		response.Error(ctx, c, err)
		return
	}

	response.Created(ctx, c, item)
}

// ListTemplates 全部模板，最新的在前
func ListTemplates(ctx context.Context, c *app.RequestContext) {
	items, err := service.Template().List(ctx)
	if err != nil {
		logger.Logger.Error("Failed to list templates", zap.Error(err))
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, items, map[string]interface{}{"total": len(items)})
}

func GetTemplate(ctx context.Context, c *app.RequestContext) {
	item, err := service.Template().Get(ctx, c.Param("id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, item)
}

// PreviewTemplate 已保存模板的文本预览
func PreviewTemplate(ctx context.Context, c *app.RequestContext) {
	text, err := service.Template().Preview(ctx, c.Param("id"))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, dto.PreviewResponse{Text: text})
}

// PreviewForm 渲染未保存的表单
func PreviewForm(ctx context.Context, c *app.RequestContext) {
	var req dto.SaveTemplateRequest
	if err := c.BindJSON(&req); err != nil {
		response.Error(ctx, c, errors.InvalidRequest.WithMessage("Invalid JSON body: %s", err.Error()))
		return
	}

	response.Success(ctx, c, dto.PreviewResponse{Text: service.Template().RenderForm(ctx, req)})
}

// ExportTemplateICS 导出 iCalendar 文件
func ExportTemplateICS(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	out, err := service.Template().ICS(ctx, id)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="invite-`+id+`.ics"`)
	c.Data(consts.StatusOK, "text/calendar; charset=utf-8", []byte(out))
}

// TemplateOccurrences 展开重复日期，limit 默认且最大为 100
func TemplateOccurrences(ctx context.Context, c *app.RequestContext) {
	limit := formatter.MaxOccurrences
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(ctx, c, errors.InvalidRequest.WithMessage("limit must be a positive integer"))
			return
		}
		if n < limit {
			limit = n
		}
	}

	resp, err := service.Template().Occurrences(ctx, c.Param("id"), limit)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, resp)
}
