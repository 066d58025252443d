package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tpm/backend/internal/infrastructure/logger"
	"github.com/tpm/backend/internal/interfaces/http/dto"
)

// Tenant resolution keys. TenantIDKey is the gin context key the rest of
// the chain reads; TenantHeaderKey is the inbound header.
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantMiddlewareConfig controls tenant resolution.
type TenantMiddlewareConfig struct {
	// DefaultTenantID backs requests without a header. Empty means none.
	DefaultTenantID string
	// SkipPaths bypass tenant resolution entirely (health, metrics).
	SkipPaths []string
	// Required rejects requests that resolve to no tenant at all.
	Required bool
	Logger   *zap.Logger
}

// DefaultTenantConfig requires a tenant everywhere except the operational
// endpoints, with the development tenant as fallback.
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		DefaultTenantID: "00000000-0000-0000-0000-000000000001",
		SkipPaths:       []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Required:        true,
	}
}

// TenantMiddleware is TenantMiddlewareWithConfig with defaults.
func TenantMiddleware() gin.HandlerFunc {
	return TenantMiddlewareWithConfig(DefaultTenantConfig())
}

// TenantMiddlewareWithConfig resolves the tenant from the X-Tenant-ID
// header and stores it in both the gin context and the request context,
// so handlers and the logger see the same tenant.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if skipTenant(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		tenantID := c.GetHeader(TenantHeaderKey)
		if tenantID == "" {
			tenantID = cfg.DefaultTenantID
		}

		switch {
		case tenantID == "":
			if cfg.Required {
				rejectTenant(c, "Tenant identification required")
				return
			}
		default:
			if _, err := uuid.Parse(tenantID); err != nil {
				rejectTenant(c, "Invalid tenant ID format")
				return
			}

			c.Set(TenantIDKey, tenantID)

			ctx := c.Request.Context()
			ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), tenantID)
			c.Request = c.Request.WithContext(ctx)

			if cfg.Logger != nil {
				cfg.Logger.Debug("Tenant identified", zap.String("tenant_id", tenantID))
			}
		}

		c.Next()
	}
}

func skipTenant(skipPaths []string, path string) bool {
	for _, skip := range skipPaths {
		if path == skip || strings.HasPrefix(path, skip+"/") {
			return true
		}
	}
	return false
}

func rejectTenant(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse("UNAUTHORIZED", message))
}

// GetTenantID returns the tenant resolved for this request, or "" when
// the middleware did not run or the path was skipped.
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}
