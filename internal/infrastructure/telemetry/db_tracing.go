package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls GORM query tracing. LogFullSQL embeds query
// parameters in span attributes and must stay off outside development.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBSystem        string
}

// DefaultDBTracingConfig is disabled tracing with a 200ms slow threshold
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		Enabled:         false,
		LogFullSQL:      false,
		SlowQueryThresh: 200 * time.Millisecond,
		DBSystem:        "postgresql",
	}
}

// DBTracingPlugin layers slow-query detection and error marking on top of
// the otelgorm spans. The aggregation queries behind report generation are
// the usual offenders, so their spans get a slow_query flag and duration.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin builds the plugin; Register it via RegisterOtelGorm
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{
		config: cfg,
		logger: logger,
	}
}

// RegisterOtelGorm installs otelgorm plus this plugin's timing callbacks
// on db. A disabled config is a no-op.
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	// Timing callbacks first: within the same hook callbacks run in
	// registration order, and annotateSpan must touch the statement span
	// before otelgorm's after-callback ends it.
	if err := p.registerTimingCallbacks(db); err != nil {
		return err
	}

	opts := []otelgorm.Option{
		otelgorm.WithDBName(p.config.DBSystem),
	}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThresh),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

// registerTimingCallbacks hooks every GORM operation: the before callback
// stamps the start time, the after callback annotates the otelgorm span.
func (p *DBTracingPlugin) registerTimingCallbacks(db *gorm.DB) error {
	before := func(db *gorm.DB) {
		if db.Statement.Context != nil {
			db.Statement.Context = context.WithValue(db.Statement.Context, queryStartTimeKey, time.Now())
		}
	}

	registrations := []func() error{
		func() error {
			return db.Callback().Create().Before("gorm:create").Register("otel_timing:before_create", before)
		},
		func() error {
			return db.Callback().Create().After("gorm:create").Register("otel_timing:after_create", p.annotateSpan)
		},
		func() error {
			return db.Callback().Query().Before("gorm:query").Register("otel_timing:before_query", before)
		},
		func() error {
			return db.Callback().Query().After("gorm:query").Register("otel_timing:after_query", p.annotateSpan)
		},
		func() error {
			return db.Callback().Update().Before("gorm:update").Register("otel_timing:before_update", before)
		},
		func() error {
			return db.Callback().Update().After("gorm:update").Register("otel_timing:after_update", p.annotateSpan)
		},
		func() error {
			return db.Callback().Delete().Before("gorm:delete").Register("otel_timing:before_delete", before)
		},
		func() error {
			return db.Callback().Delete().After("gorm:delete").Register("otel_timing:after_delete", p.annotateSpan)
		},
		func() error {
			return db.Callback().Row().Before("gorm:row").Register("otel_timing:before_row", before)
		},
		func() error {
			return db.Callback().Row().After("gorm:row").Register("otel_timing:after_row", p.annotateSpan)
		},
		func() error {
			return db.Callback().Raw().Before("gorm:raw").Register("otel_timing:before_raw", before)
		},
		func() error {
			return db.Callback().Raw().After("gorm:raw").Register("otel_timing:after_raw", p.annotateSpan)
		},
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// annotateSpan runs after each statement. It adds row counts and table
// names, marks real errors, and flags statements over the slow threshold.
func (p *DBTracingPlugin) annotateSpan(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}

	// Record-not-found is an expected outcome, not a span error
	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	if startTime, ok := ctx.Value(queryStartTimeKey).(time.Time); ok {
		elapsed := time.Since(startTime)
		if elapsed > p.config.SlowQueryThresh {
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
			)
			span.AddEvent("slow_query_warning", trace.WithAttributes(
				attribute.Int64("duration_ms", elapsed.Milliseconds()),
				attribute.Int64("threshold_ms", p.config.SlowQueryThresh.Milliseconds()),
			))
		}
	}
}

type timingKey string

const queryStartTimeKey timingKey = "otel_query_start_time"
