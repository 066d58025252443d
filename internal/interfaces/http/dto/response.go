package dto

import "time"

// Response is the envelope every endpoint returns. Exactly one of Data
// and Error is set; Meta accompanies paginated lists.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo carries the wire-format error code plus enough context for a
// client to report the failure.
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
	Help      string             `json:"help,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// ValidationDetail describes a single failed field validation
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta carries pagination counters for list endpoints
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewSuccessResponse wraps data in the success envelope
func NewSuccessResponse(data interface{}) Response {
	return Response{Success: true, Data: data}
}

// NewSuccessResponseWithMeta wraps a page of results with its pagination
// counters. A non-positive pageSize falls back to 20.
func NewSuccessResponseWithMeta(data interface{}, total int64, page, pageSize int) Response {
	if pageSize <= 0 {
		pageSize = 20
	}
	pages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		pages++
	}
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:      total,
			Page:       page,
			PageSize:   pageSize,
			TotalPages: pages,
		},
	}
}

func newErrorInfo(code, message, requestID string) *ErrorInfo {
	return &ErrorInfo{
		Code:      NormalizeErrorCode(code),
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now(),
	}
}

// NewErrorResponse builds the error envelope. Domain error codes are
// normalized to the standardized wire format.
func NewErrorResponse(code, message string) Response {
	return Response{Success: false, Error: newErrorInfo(code, message, "")}
}

// NewErrorResponseWithRequestID builds an error envelope carrying the
// request id so clients can correlate failures with server logs
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{Success: false, Error: newErrorInfo(code, message, requestID)}
}

// NewErrorResponseWithHelp attaches a documentation link to the error
func NewErrorResponseWithHelp(code, message, requestID, help string) Response {
	resp := NewErrorResponseWithRequestID(code, message, requestID)
	resp.Error.Help = help
	return resp
}

// NewValidationErrorResponse builds a 400 envelope with per-field details
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	info := newErrorInfo(ErrCodeValidation, message, requestID)
	info.Details = details
	return Response{Success: false, Error: info}
}
