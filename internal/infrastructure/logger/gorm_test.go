package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

const lineItemQuery = `SELECT * FROM "pnl_line_items" WHERE report_id = $1 ORDER BY sort_order`

func newGormRig(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func TestNewGormLogger_Defaults(t *testing.T) {
	gl, _ := newGormRig(gormlogger.Warn)

	assert.Equal(t, gormlogger.Warn, gl.level)
	assert.Equal(t, 200*time.Millisecond, gl.slowAfter)
	assert.True(t, gl.skipNotFound)
}

func TestNewGormLogger_Options(t *testing.T) {
	gl, _ := newGormRig(gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gl.slowAfter)
	assert.False(t, gl.skipNotFound)
}

func TestGormLogger_LogMode(t *testing.T) {
	gl, _ := newGormRig(gormlogger.Info)

	silenced := gl.LogMode(gormlogger.Silent)

	assert.Equal(t, gormlogger.Silent, silenced.(*GormLogger).level)
	// Original is untouched
	assert.Equal(t, gormlogger.Info, gl.level)
}

func TestGormLogger_Trace(t *testing.T) {
	t.Run("fast query logs at debug when level is info", func(t *testing.T) {
		gl, recorded := newGormRig(gormlogger.Info)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return lineItemQuery, 12
		}, nil)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
		assert.Equal(t, lineItemQuery, entries[0].ContextMap()["sql"])
		assert.Equal(t, int64(12), entries[0].ContextMap()["rows"])
	})

	t.Run("slow query logs at warn", func(t *testing.T) {
		gl, recorded := newGormRig(gormlogger.Warn, WithSlowThreshold(time.Millisecond))

		gl.Trace(context.Background(), time.Now().Add(-50*time.Millisecond), func() (string, int64) {
			return lineItemQuery, 12
		}, nil)

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	})

	t.Run("query error logs at error with request id from context", func(t *testing.T) {
		gl, recorded := newGormRig(gormlogger.Error)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-9")

		gl.Trace(ctx, time.Now(), func() (string, int64) {
			return lineItemQuery, 0
		}, errors.New("connection reset"))

		entries := recorded.All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
	})

	t.Run("record not found is suppressed by default", func(t *testing.T) {
		gl, recorded := newGormRig(gormlogger.Error)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return lineItemQuery, 0
		}, gormlogger.ErrRecordNotFound)

		assert.Empty(t, recorded.All())
	})

	t.Run("silent level logs nothing", func(t *testing.T) {
		gl, recorded := newGormRig(gormlogger.Silent)

		gl.Trace(context.Background(), time.Now(), func() (string, int64) {
			return lineItemQuery, 12
		}, errors.New("ignored"))

		assert.Empty(t, recorded.All())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"silent":  gormlogger.Silent,
		"error":   gormlogger.Error,
		"warn":    gormlogger.Warn,
		"info":    gormlogger.Info,
		"debug":   gormlogger.Info,
		"unknown": gormlogger.Warn,
	}
	for input, want := range cases {
		assert.Equal(t, want, MapGormLogLevel(input), "level %q", input)
	}
}
