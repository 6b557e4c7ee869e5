package errors

import (
	stderrors "errors"
	"fmt"
)

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// WithMessage 复制一份错误码相同、信息不同的 Definition。
func (d Definition) WithMessage(format string, args ...interface{}) Definition {
	return Definition{Code: d.Code, Message: fmt.Sprintf(format, args...)}
}

// Is 仅比较错误码，使 errors.Is 对 WithMessage 后的副本依旧生效。
func (d Definition) Is(target error) bool {
	t, ok := target.(Definition)
	return ok && t.Code == d.Code
}

// DetailedError 附带字段级说明的错误，例如参数校验失败
type DetailedError struct {
	Details map[string]interface{}
	Definition
}

// WithDetails 包装出带 details 的错误。
func (d Definition) WithDetails(details map[string]interface{}) *DetailedError {
	return &DetailedError{Definition: d, Details: details}
}

func (e *DetailedError) Unwrap() error {
	return e.Definition
}

// DetailsOf 取出错误链上的 details，没有时为 nil。
func DetailsOf(err error) map[string]interface{} {
	var de *DetailedError
	if stderrors.As(err, &de) {
		return de.Details
	}
	return nil
}

// 通讯录（网关）错误。
var (
	SearchQueryRequired  = Definition{Code: "SEARCH_QUERY_REQUIRED", Message: "Search query is required"}
	UpstreamAuthError    = Definition{Code: "UPSTREAM_AUTH_ERROR", Message: "HubSpot access token not configured"}
	UpstreamRequestError = Definition{Code: "UPSTREAM_REQUEST_ERROR", Message: "HubSpot API error"}
)

// 模板模块错误。
var (
	TemplateInvalid   = Definition{Code: "TEMPLATE_INVALID", Message: "Template invalid"}
	TemplateNotFound  = Definition{Code: "TEMPLATE_NOT_FOUND", Message: "Template not found"}
	TemplateIDInvalid = Definition{Code: "TEMPLATE_ID_INVALID", Message: "Invalid template ID format"}
)

// 通用错误。
var (
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, please slow down"}
	InternalError   = Definition{Code: "INTERNAL_ERROR", Message: "Internal error"}
)

// 基础设施错误。
var (
	ErrIDGeneratorUninitialized = stderrors.New("snowflake generator is not initialized")
	ErrPublisherUnavailable     = stderrors.New("message publisher unavailable")
)

// As 从错误链中取出 Definition。
func As(err error) (Definition, bool) {
	var def Definition
	if stderrors.As(err, &def) {
		return def, true
	}
	return Definition{}, false
}
