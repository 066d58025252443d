package dto

import "net/http"

// Wire-format error codes, ERR_<CATEGORY>[_<DETAIL>]. These are the only
// codes clients ever see; domain codes are normalized before they reach
// the envelope.
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation         = "ERR_VALIDATION"
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	ErrCodeValidationFormat   = "ERR_VALIDATION_FORMAT"
	ErrCodeValidationRange    = "ERR_VALIDATION_RANGE"
	ErrCodeValidationLength   = "ERR_VALIDATION_LENGTH"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"

	// Lifecycle and business-rule violations
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"

	// Report generation outcomes
	ErrCodeGenerationFailed   = "ERR_GENERATION_FAILED"
	ErrCodeGenerationInFlight = "ERR_GENERATION_IN_FLIGHT"

	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
)

// ErrorCodeHTTPStatus maps each wire code to its HTTP status
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// State machine violations are semantic, not syntactic, hence 422
	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeGenerationFailed:   http.StatusInternalServerError,
	ErrCodeGenerationInFlight: http.StatusConflict,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
}

// GetHTTPStatus resolves the status for a wire code; unmapped codes
// degrade to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the standardized codes
// used on the wire
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"FORBIDDEN":            ErrCodeForbidden,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"INTERNAL_ERROR":       ErrCodeInternal,

	"GENERATION_FAILED":    ErrCodeGenerationFailed,
	"GENERATION_IN_FLIGHT": ErrCodeGenerationInFlight,

	// Report field validation failures surface as 400s
	"INVALID_REPORT_ID":   ErrCodeValidation,
	"INVALID_REPORT_NAME": ErrCodeValidation,
	"INVALID_REPORT_TYPE": ErrCodeValidation,
	"INVALID_PERIOD_TYPE": ErrCodeValidation,
	"INVALID_DATE_RANGE":  ErrCodeValidation,
	"INVALID_DIMENSION":   ErrCodeValidation,
	"INVALID_SORT_ORDER":  ErrCodeValidation,

	// Lifecycle violations are state errors, not input errors
	"INVALID_STATUS":            ErrCodeInvalidState,
	"INVALID_STATUS_TRANSITION": ErrCodeInvalidState,
}

// NormalizeErrorCode converts a domain error code to the wire format;
// already-normalized and unknown codes pass through unchanged.
func NormalizeErrorCode(code string) string {
	if wire, ok := LegacyErrorCodeMapping[code]; ok {
		return wire
	}
	return code
}
