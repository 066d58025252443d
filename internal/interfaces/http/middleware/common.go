package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CORSConfig holds the cross-origin policy. An empty AllowOrigins list
// rejects every cross-origin request, so deployments must whitelist their
// frontends explicitly.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig allows the standard REST verbs plus the tenant and
// request-id headers the API requires, with no origins whitelisted.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID",
			"Accept", "Origin", "Cache-Control",
		},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORS applies DefaultCORSConfig
func CORS() gin.HandlerFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig returns the CORS middleware for cfg. Preflight OPTIONS
// requests are always answered 204 so an unconfigured origin gets a clean
// rejection instead of a 404.
func CORSWithConfig(cfg CORSConfig) gin.HandlerFunc {
	// The header values never change per request, join them up front.
	allowMethods := strings.Join(cfg.AllowMethods, ", ")
	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposeHeaders, ", ")
	maxAge := strconv.Itoa(int(cfg.MaxAge.Seconds()))

	wildcard := false
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
	}

	writePolicy := func(c *gin.Context, origin string) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		// Browsers reject credentials combined with a wildcard origin,
		// so credentialed deployments must whitelist explicitly.
		if cfg.AllowCredentials && origin != "*" {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		if exposeHeaders != "" {
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
		}
		if cfg.MaxAge > 0 {
			h.Set("Access-Control-Max-Age", maxAge)
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		allowed := corsOrigin(cfg.AllowOrigins, wildcard, origin)

		if c.Request.Method == http.MethodOptions {
			if allowed != "" {
				writePolicy(c, allowed)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		if allowed != "" {
			writePolicy(c, allowed)
		}
		c.Next()
	}
}

// corsOrigin resolves the Access-Control-Allow-Origin value for a request,
// or "" when the origin is not allowed.
func corsOrigin(allowOrigins []string, wildcard bool, origin string) string {
	if len(allowOrigins) == 0 {
		return ""
	}
	if wildcard {
		return "*"
	}
	for _, o := range allowOrigins {
		if o == origin {
			return origin
		}
	}
	return ""
}

// RequestID propagates the caller's X-Request-ID or mints one, storing it
// in the gin context and echoing it on the response so clients can quote
// it when reporting a failed call.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = newRequestID()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is pathological; a timestamp id still
		// keeps requests distinguishable in the logs
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf)
}

// SecurityConfig controls the browser hardening headers. HSTS stays off
// until the deployment terminates TLS.
type SecurityConfig struct {
	HSTSEnabled           bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool

	CSPEnabled   bool
	CSPDirective string

	PermissionsPolicyEnabled   bool
	PermissionsPolicyDirective string
}

// DefaultSecurityConfig locks the API down for a same-origin JSON client:
// no framing, no inline scripts, no powerful browser features.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		HSTSEnabled:           false,
		HSTSMaxAge:            31536000,
		HSTSIncludeSubdomains: true,

		CSPEnabled: true,
		CSPDirective: "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data: https:; font-src 'self' data:; connect-src 'self'; " +
			"frame-ancestors 'none'; base-uri 'self'; form-action 'self'",

		PermissionsPolicyEnabled: true,
		PermissionsPolicyDirective: "accelerometer=(), camera=(), geolocation=(), gyroscope=(), " +
			"magnetometer=(), microphone=(), payment=(), usb=()",
	}
}

// Secure applies DefaultSecurityConfig
func Secure() gin.HandlerFunc {
	return SecureWithConfig(DefaultSecurityConfig())
}

// SecureWithConfig stamps the hardening headers onto every response
func SecureWithConfig(cfg SecurityConfig) gin.HandlerFunc {
	headers := securityHeaders(cfg)

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for name, value := range headers {
			h.Set(name, value)
		}
		c.Next()
	}
}

func securityHeaders(cfg SecurityConfig) map[string]string {
	headers := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "1; mode=block",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}

	if cfg.CSPEnabled && cfg.CSPDirective != "" {
		headers["Content-Security-Policy"] = cfg.CSPDirective
	}
	if cfg.HSTSEnabled {
		hsts := fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
		headers["Strict-Transport-Security"] = hsts
	}
	if cfg.PermissionsPolicyEnabled && cfg.PermissionsPolicyDirective != "" {
		headers["Permissions-Policy"] = cfg.PermissionsPolicyDirective
	}

	return headers
}
