package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tpm/backend/internal/domain/shared"
	"github.com/tpm/backend/internal/interfaces/http/dto"
	"github.com/tpm/backend/internal/interfaces/http/middleware"
)

// defaultTenant backs requests that reach a handler without a tenant
// header, which only happens in development setups.
var defaultTenant = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// BaseHandler carries the response helpers shared by the report, live
// view and system handlers.
type BaseHandler struct{}

// getRequestID reads the ID minted by the RequestID middleware, falling
// back to the inbound header.
func getRequestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// getUserID resolves the acting user for created_by stamping. There is no
// auth layer in front of this service, so the header is trusted as-is.
func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetString("user_id")
	if raw == "" {
		raw = c.GetHeader("X-User-ID")
	}
	if raw == "" {
		return uuid.Nil, errors.New("no user in request")
	}
	return uuid.Parse(raw)
}

// getTenantID reads the tenant resolved by TenantMiddleware.
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetString(middleware.TenantIDKey)
	if raw == "" {
		raw = c.GetHeader(middleware.TenantHeaderKey)
	}
	if raw == "" {
		return defaultTenant, nil
	}
	return uuid.Parse(raw)
}

// Success sends 200 with the standard envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends 200 with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends 201 with the standard envelope
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends 204
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error envelope with an explicit status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends 400 for malformed input
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends 404
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Conflict sends 409
func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

// InternalError sends 500
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError turns a gin binding failure into a 400. Field-level validator
// failures carry per-field details; anything else (malformed JSON, bad
// query types) surfaces as a plain bad request.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, middleware.FormatValidationErrors(err, getRequestID(c)))
}

// HandleError maps a service error onto the wire. Domain errors carry a
// code that decides the status; everything else is a 500 without leaking
// the underlying message.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	h.InternalError(c, "An unexpected error occurred")
}
