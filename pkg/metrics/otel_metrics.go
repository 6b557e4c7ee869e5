package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 通讯录相关指标
	DirectorySearchTotal        metric.Int64Counter
	DirectorySearchDuration     metric.Float64Histogram
	DirectoryUpstreamErrorTotal metric.Int64Counter
	EnrichmentDegradedTotal     metric.Int64Counter
	DirectoryCacheTotal         metric.Int64Counter

	// 模板相关指标
	TemplateSavedTotal    metric.Int64Counter
	TemplateRenderedTotal metric.Int64Counter
}

var (
	// 全局指标实例
	metrics *OTelMetrics
	// meter 用于创建指标
	meter = otel.Meter("invitegen")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	var err error

	m := &OTelMetrics{}

	m.DirectorySearchTotal, err = meter.Int64Counter(
		"directory_search_total",
		metric.WithDescription("Total number of directory searches"),
		metric.WithUnit("{search}"),
	)
	if err != nil {
		return err
	}

	m.DirectorySearchDuration, err = meter.Float64Histogram(
		"directory_search_duration_seconds",
		metric.WithDescription("Time spent on a directory search including enrichment"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	m.DirectoryUpstreamErrorTotal, err = meter.Int64Counter(
		"directory_upstream_error_total",
		metric.WithDescription("Total number of fatal CRM upstream errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	m.EnrichmentDegradedTotal, err = meter.Int64Counter(
		"directory_enrichment_degraded_total",
		metric.WithDescription("Total number of failed organization batch lookups"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return err
	}

	m.DirectoryCacheTotal, err = meter.Int64Counter(
		"directory_cache_total",
		metric.WithDescription("Directory list cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return err
	}

	m.TemplateSavedTotal, err = meter.Int64Counter(
		"template_saved_total",
		metric.WithDescription("Total number of saved event templates"),
		metric.WithUnit("{template}"),
	)
	if err != nil {
		return err
	}

	m.TemplateRenderedTotal, err = meter.Int64Counter(
		"template_rendered_total",
		metric.WithDescription("Total number of template renderings by format"),
		metric.WithUnit("{render}"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例，未初始化时为 nil
func GetMetrics() *OTelMetrics {
	return metrics
}

// RecordSearch 记录一次搜索
func (m *OTelMetrics) RecordSearch(ctx context.Context, searchType, status string, duration float64) {
	attrs := metric.WithAttributes(
		attribute.String("search_type", searchType),
		attribute.String("status", status),
	)
	m.DirectorySearchTotal.Add(ctx, 1, attrs)
	m.DirectorySearchDuration.Record(ctx, duration, attrs)
}

// RecordUpstreamError 记录上游致命错误
func (m *OTelMetrics) RecordUpstreamError(ctx context.Context, operation, kind string) {
	m.DirectoryUpstreamErrorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("kind", kind),
	))
}

// RecordEnrichmentDegraded 记录公司信息补全失败
func (m *OTelMetrics) RecordEnrichmentDegraded(ctx context.Context, operation string) {
	m.EnrichmentDegradedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordCache 记录缓存命中情况，result: hit, miss, error
func (m *OTelMetrics) RecordCache(ctx context.Context, result string) {
	m.DirectoryCacheTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
}

func (m *OTelMetrics) RecordTemplateSaved(ctx context.Context, recurring bool) {
	m.TemplateSavedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("recurring", recurring),
	))
}

func (m *OTelMetrics) RecordTemplateRendered(ctx context.Context, format string) {
	m.TemplateRenderedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
	))
}
