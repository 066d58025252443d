package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts zap to GORM's logger interface so SQL output lands in
// the same structured stream as the rest of the service. Record-not-found
// errors are suppressed by default since the repositories translate them
// into domain errors.
type GormLogger struct {
	zl           *zap.Logger
	level        gormlogger.LogLevel
	slowAfter    time.Duration
	skipNotFound bool
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold overrides the 200ms slow-query threshold
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowAfter = threshold
	}
}

// WithIgnoreRecordNotFoundError toggles suppression of ErrRecordNotFound
func WithIgnoreRecordNotFoundError(ignore bool) GormLoggerOption {
	return func(l *GormLogger) {
		l.skipNotFound = ignore
	}
}

// NewGormLogger builds a zap-backed GORM logger at the given level
func NewGormLogger(zl *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		zl:           zl.Named("gorm"),
		level:        level,
		slowAfter:    200 * time.Millisecond,
		skipNotFound: true,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode returns a copy at the requested level
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(_ context.Context, msg string, args ...any) {
	if l.level < gormlogger.Info {
		return
	}
	l.zl.Sugar().Infof(msg, args...)
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(_ context.Context, msg string, args ...any) {
	if l.level < gormlogger.Warn {
		return
	}
	l.zl.Sugar().Warnf(msg, args...)
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(_ context.Context, msg string, args ...any) {
	if l.level < gormlogger.Error {
		return
	}
	l.zl.Sugar().Errorf(msg, args...)
}

// Trace logs each statement with its latency and row count. The request
// id placed in the context by the HTTP layer is carried through so a slow
// aggregation query can be traced back to the request that ran it.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	switch {
	case err != nil && l.level >= gormlogger.Error:
		if l.skipNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		l.zl.Error("sql error", append(fields, zap.Error(err))...)

	case l.slowAfter > 0 && elapsed > l.slowAfter && l.level >= gormlogger.Warn:
		l.zl.Warn(fmt.Sprintf("slow sql >= %v", l.slowAfter), fields...)

	case l.level >= gormlogger.Info:
		l.zl.Debug("sql query", fields...)
	}
}

// MapGormLogLevel maps the service log level onto GORM's
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "warn":
		return gormlogger.Warn
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
