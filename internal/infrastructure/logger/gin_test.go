package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinMiddleware(t *testing.T) {
	newRig := func(handler gin.HandlerFunc) (*gin.Engine, *observer.ObservedLogs) {
		core, recorded := observer.New(zapcore.InfoLevel)
		router := gin.New()
		// Mimic the RequestID middleware that runs ahead of the logger
		router.Use(func(c *gin.Context) {
			c.Set("request_id", "req-123")
			c.Next()
		})
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/api/v1/pnl/reports", handler)
		return router, recorded
	}

	t.Run("logs one info line per successful request", func(t *testing.T) {
		router, recorded := newRig(func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": []string{}})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/pnl/reports?page=2", nil))

		entries := recorded.All()
		require.Len(t, entries, 1)
		entry := entries[0]
		assert.Equal(t, zapcore.InfoLevel, entry.Level)

		fields := entry.ContextMap()
		assert.Equal(t, "req-123", fields["request_id"])
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/api/v1/pnl/reports", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
		assert.Equal(t, "page=2", fields["query"])
	})

	t.Run("client errors log at warn, server errors at error", func(t *testing.T) {
		for _, tc := range []struct {
			status int
			level  zapcore.Level
		}{
			{http.StatusNotFound, zapcore.WarnLevel},
			{http.StatusInternalServerError, zapcore.ErrorLevel},
		} {
			status := tc.status
			router, recorded := newRig(func(c *gin.Context) {
				c.Status(status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/pnl/reports", nil))

			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0].Level)
		}
	})

	t.Run("request context carries the request id downstream", func(t *testing.T) {
		var seen string
		router, _ := newRig(func(c *gin.Context) {
			seen = GetRequestID(c.Request.Context())
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/pnl/reports", nil))

		assert.Equal(t, "req-123", seen)
	})
}

func TestRecovery(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.POST("/api/v1/pnl/reports/:id/generate", func(c *gin.Context) {
		panic("fact store unavailable")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/v1/pnl/reports/abc/generate", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := recorded.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "panic recovered", entries[0].Message)
	assert.Equal(t, "fact store unavailable", entries[0].ContextMap()["error"])
}
