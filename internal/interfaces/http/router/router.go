package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by every handler that mounts routes under
// the versioned API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them under /api/{version} in one
// Setup call, so main wires handlers without knowing their paths.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion overrides the default "v1" path segment
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter wraps engine with an empty registrar list
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar; chainable
func (r *Router) Register(reg RouteRegistrar) *Router {
	r.registrars = append(r.registrars, reg)
	return r
}

// Setup mounts every queued registrar under the versioned group
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, reg := range r.registrars {
		reg.RegisterRoutes(api)
	}
}
