package metrics

import (
	"context"
)

// 以下函数在指标未初始化时（测试、OTEL_ENABLED=false）什么都不做

func RecordSearch(ctx context.Context, searchType, status string, duration float64) {
	if m := GetMetrics(); m != nil {
		m.RecordSearch(ctx, searchType, status, duration)
	}
}

func RecordUpstreamError(ctx context.Context, operation, kind string) {
	if m := GetMetrics(); m != nil {
		m.RecordUpstreamError(ctx, operation, kind)
	}
}

func RecordEnrichmentDegraded(ctx context.Context, operation string) {
	if m := GetMetrics(); m != nil {
		m.RecordEnrichmentDegraded(ctx, operation)
	}
}

func RecordCache(ctx context.Context, result string) {
	if m := GetMetrics(); m != nil {
		m.RecordCache(ctx, result)
	}
}

func RecordTemplateSaved(ctx context.Context, recurring bool) {
	if m := GetMetrics(); m != nil {
		m.RecordTemplateSaved(ctx, recurring)
	}
}

func RecordTemplateRendered(ctx context.Context, format string) {
	if m := GetMetrics(); m != nil {
		m.RecordTemplateRendered(ctx, format)
	}
}
