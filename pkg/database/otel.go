package database

import (
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	spanKey  = "otel:span"
	startKey = "otel:start"

	// 超过这个长度的 SQL 在 span 上截断
	maxStatementLength = 500
)

// TracingPlugin gorm 插件：每条语句一个 client span，并记录查询次数和耗时
type TracingPlugin struct {
	tracer   trace.Tracer
	queries  metric.Int64Counter
	duration metric.Float64Histogram
	dbName   string
}

func NewTracingPlugin(dbName string) (*TracingPlugin, error) {
	meter := otel.Meter("invitegen/gorm")

	queries, err := meter.Int64Counter(
		"db.queries.total",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return nil, err
	}

	return &TracingPlugin{
		tracer:   otel.Tracer("invitegen/gorm"),
		queries:  queries,
		duration: duration,
		dbName:   dbName,
	}, nil
}

// Name 实现 gorm.Plugin
func (p *TracingPlugin) Name() string {
	return "otel_tracing"
}

// Initialize 模板表只有插入和查询
func (p *TracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("db.insert")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after("db.insert")); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("db.select")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after("db.select")); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("db.raw")); err != nil {
		return err
	}
	return cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after("db.raw"))
}

func (p *TracingPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx, span := p.tracer.Start(db.Statement.Context, operation,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemPostgreSQL,
				semconv.DBName(p.dbName),
			),
		)
		db.Statement.Context = ctx
		db.InstanceSet(spanKey, span)
		db.InstanceSet(startKey, time.Now())
	}
}

func (p *TracingPlugin) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(spanKey)
		if !ok {
			return
		}
		span, ok := v.(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		if table := db.Statement.Table; table != "" {
			span.SetAttributes(attribute.String("db.sql.table", table))
		}
		span.SetAttributes(
			semconv.DBStatement(truncate(db.Statement.SQL.String())),
			attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
		)

		status := "success"
		switch {
		case db.Error == nil:
			span.SetStatus(codes.Ok, "")
		case errors.Is(db.Error, gorm.ErrRecordNotFound):
			status = "not_found"
			span.SetStatus(codes.Ok, "record not found")
		default:
			status = "error"
			span.RecordError(db.Error)
			span.SetStatus(codes.Error, db.Error.Error())
		}

		attrs := metric.WithAttributes(
			attribute.String("db.operation", operation),
			attribute.String("db.status", status),
		)
		ctx := db.Statement.Context
		p.queries.Add(ctx, 1, attrs)
		if v, ok := db.InstanceGet(startKey); ok {
			if start, ok := v.(time.Time); ok {
				p.duration.Record(ctx, time.Since(start).Seconds(), attrs)
			}
		}
	}
}

func truncate(sql string) string {
	if len(sql) > maxStatementLength {
		return sql[:maxStatementLength] + "..."
	}
	return sql
}
