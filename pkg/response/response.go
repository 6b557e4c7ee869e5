package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"invitegen/pkg/errors"
)

// ErrorResponse 统一的错误响应格式，error 字段是面向人的描述
type ErrorResponse struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
}

// SuccessResponse 统一的成功响应格式（模板接口使用）
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

// StatusOf 把错误映射成 HTTP 状态码
func StatusOf(err error) int {
	def, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case errors.SearchQueryRequired.Code,
		errors.TemplateInvalid.Code, errors.TemplateIDInvalid.Code,
		errors.InvalidRequest.Code:
		return http.StatusBadRequest // 400
	case errors.TemplateNotFound.Code:
		return http.StatusNotFound // 404
	case errors.TooManyRequests.Code:
		return http.StatusTooManyRequests // 429
	default:
		// UPSTREAM_AUTH_ERROR / UPSTREAM_REQUEST_ERROR 都按 500 处理
		return http.StatusInternalServerError
	}
}

func build(err error, details map[string]interface{}) ErrorResponse {
	if def, ok := errors.As(err); ok {
		return ErrorResponse{Error: def.Message, Code: def.Code, Details: details}
	}
	return ErrorResponse{Error: err.Error(), Code: errors.InternalError.Code, Details: details}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(StatusOf(err), build(err, errors.DetailsOf(err)))
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	c.JSON(StatusOf(err), build(err, details))
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func Created(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}
