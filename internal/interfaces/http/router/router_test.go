package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubRegistrar mounts a fixed set of routes the way the report and live
// view handlers do.
type stubRegistrar struct {
	mount func(rg *gin.RouterGroup)
}

func (s *stubRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	s.mount(rg)
}

func TestNewRouter_Defaults(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestWithAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v2"))

	r.Register(&stubRegistrar{mount: func(rg *gin.RouterGroup) {
		rg.GET("/pnl/summary", func(c *gin.Context) {
			c.String(http.StatusOK, "summary")
		})
	}})
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v2/pnl/summary", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// The v1 path must not exist under a v2 router
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/pnl/summary", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SetupMountsAllRegistrars(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	reports := &stubRegistrar{mount: func(rg *gin.RouterGroup) {
		group := rg.Group("/pnl/reports")
		group.GET("", func(c *gin.Context) { c.String(http.StatusOK, "reports") })
		group.POST("", func(c *gin.Context) { c.String(http.StatusCreated, "created") })
	}}
	live := &stubRegistrar{mount: func(rg *gin.RouterGroup) {
		rg.GET("/pnl/live/customers", func(c *gin.Context) {
			c.String(http.StatusOK, "live")
		})
	}}

	r.Register(reports).Register(live)
	r.Setup()

	cases := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/v1/pnl/reports", http.StatusOK},
		{"POST", "/api/v1/pnl/reports", http.StatusCreated},
		{"GET", "/api/v1/pnl/live/customers", http.StatusOK},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouter_RoutesOutsideGroupUntouched(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r := NewRouter(engine)
	r.Register(&stubRegistrar{mount: func(rg *gin.RouterGroup) {
		rg.GET("/pnl/summary", func(c *gin.Context) {
			c.String(http.StatusOK, "summary")
		})
	}})
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", w.Body.String())
}
