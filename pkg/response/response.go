package response

import (
	"net/http"
)

// Response represents the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details in the response
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// Meta represents metadata for paginated responses
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PaginationParams represents pagination input parameters
type PaginationParams struct {
	Page    int
	PerPage int
}

// DefaultPagination returns default pagination values
func DefaultPagination() PaginationParams {
	return PaginationParams{
		Page:    1,
		PerPage: 20,
	}
}

// --- Error Code Constants ---

const (
	// Client errors (4xx)
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeValidationFailed = "VALIDATION_FAILED"

	// Server errors (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// Tenant errors
	ErrCodeCountyContextRequired = "COUNTY_CONTEXT_REQUIRED"
	ErrCodeCountyNotFound        = "COUNTY_NOT_FOUND"
	ErrCodeCountyInactive        = "COUNTY_INACTIVE"
	ErrCodeBusinessNotFound      = "BUSINESS_NOT_FOUND"
	ErrCodeBusinessNotActive     = "BUSINESS_NOT_ACTIVE"

	// Deal lifecycle errors
	ErrCodeDealNotFound             = "DEAL_NOT_FOUND"
	ErrCodeInvalidDealTransition    = "INVALID_DEAL_TRANSITION"
	ErrCodeNotDealOwner             = "NOT_DEAL_OWNER"
	ErrCodeDealNotInactive          = "DEAL_NOT_INACTIVE"
	ErrCodeMissingRequiredFields    = "MISSING_REQUIRED_FIELDS"
	ErrCodeInvalidPricing           = "INVALID_PRICING"
	ErrCodeCannotDeleteWithVouchers = "CANNOT_DELETE_WITH_VOUCHERS"

	// Purchase errors
	ErrCodeDealNotActive             = "DEAL_NOT_ACTIVE"
	ErrCodeDealExpired               = "DEAL_EXPIRED"
	ErrCodePurchaseNotFound          = "PURCHASE_NOT_FOUND"
	ErrCodePaymentIntentAlreadyUsed  = "PAYMENT_INTENT_ALREADY_USED"
	ErrCodeNoAvailableVouchers       = "NO_AVAILABLE_VOUCHERS"
	ErrCodeDoubleAssignmentPrevented = "DOUBLE_ASSIGNMENT_PREVENTED"
	ErrCodePurchaseTransactionFailed = "PURCHASE_TRANSACTION_FAILED"

	// Redemption errors
	ErrCodeVoucherNotFound    = "VOUCHER_NOT_FOUND"
	ErrCodeVoucherNotAssigned = "VOUCHER_NOT_ASSIGNED"
	ErrCodeAlreadyRedeemed    = "ALREADY_REDEEMED"
	ErrCodeInvalidForBusiness = "INVALID_FOR_BUSINESS"

	// Inventory errors
	ErrCodeAllowanceExceeded     = "ALLOWANCE_EXCEEDED"
	ErrCodeQuantityLimitExceeded = "QUANTITY_LIMIT_EXCEEDED"

	// Review task errors
	ErrCodeReviewTaskNotFound = "REVIEW_TASK_NOT_FOUND"
)

// --- HTTP Status Code Mapping ---

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes
var ErrorCodeToHTTPStatus = map[string]int{
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeValidationFailed:   http.StatusBadRequest,
	ErrCodeInternalError:      http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeCountyContextRequired: http.StatusBadRequest,
	ErrCodeCountyNotFound:        http.StatusNotFound,
	ErrCodeCountyInactive:        http.StatusForbidden,
	ErrCodeBusinessNotFound:      http.StatusNotFound,
	ErrCodeBusinessNotActive:     http.StatusForbidden,

	ErrCodeDealNotFound:             http.StatusNotFound,
	ErrCodeInvalidDealTransition:    http.StatusConflict,
	ErrCodeNotDealOwner:             http.StatusForbidden,
	ErrCodeDealNotInactive:          http.StatusConflict,
	ErrCodeMissingRequiredFields:    http.StatusBadRequest,
	ErrCodeInvalidPricing:           http.StatusBadRequest,
	ErrCodeCannotDeleteWithVouchers: http.StatusConflict,

	ErrCodeDealNotActive:             http.StatusConflict,
	ErrCodeDealExpired:               http.StatusConflict,
	ErrCodePurchaseNotFound:          http.StatusNotFound,
	ErrCodePaymentIntentAlreadyUsed:  http.StatusConflict,
	ErrCodeNoAvailableVouchers:       http.StatusConflict,
	ErrCodeDoubleAssignmentPrevented: http.StatusConflict,
	ErrCodePurchaseTransactionFailed: http.StatusInternalServerError,

	ErrCodeVoucherNotFound:    http.StatusNotFound,
	ErrCodeVoucherNotAssigned: http.StatusConflict,
	ErrCodeAlreadyRedeemed:    http.StatusConflict,
	ErrCodeInvalidForBusiness: http.StatusForbidden,

	ErrCodeAllowanceExceeded:     http.StatusConflict,
	ErrCodeQuantityLimitExceeded: http.StatusConflict,

	ErrCodeReviewTaskNotFound: http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// --- Response Builders ---

// Success creates a success response with data
func Success(data interface{}) *Response {
	return &Response{
		Success: true,
		Data:    data,
	}
}

// SuccessWithMeta creates a success response with data and metadata
func SuccessWithMeta(data interface{}, meta *Meta) *Response {
	return &Response{
		Success: true,
		Data:    data,
		Meta:    meta,
	}
}

// Error creates an error response
func Error(code string, message string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// ErrorWithDetails creates an error response with additional details
func ErrorWithDetails(code string, message string, details map[string]string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// Paginated creates a paginated success response
func Paginated(data interface{}, page, perPage int, total int64) *Response {
	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	return &Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Page:       page,
			PerPage:    perPage,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// --- Common Error Responses ---

// BadRequest creates a bad request error response
func BadRequest(message string) *Response {
	return Error(ErrCodeBadRequest, message)
}

// Unauthorized creates an unauthorized error response
func Unauthorized(message string) *Response {
	if message == "" {
		message = "Authentication required"
	}
	return Error(ErrCodeUnauthorized, message)
}

// Forbidden creates a forbidden error response
func Forbidden(message string) *Response {
	if message == "" {
		message = "Access denied"
	}
	return Error(ErrCodeForbidden, message)
}

// NotFound creates a not found error response
func NotFound(message string) *Response {
	if message == "" {
		message = "Resource not found"
	}
	return Error(ErrCodeNotFound, message)
}

// InternalError creates an internal server error response
func InternalError(message string) *Response {
	if message == "" {
		message = "An internal error occurred"
	}
	return Error(ErrCodeInternalError, message)
}

// ValidationFailed creates a validation error response with field details
func ValidationFailed(details map[string]string) *Response {
	return ErrorWithDetails(ErrCodeValidationFailed, "Validation failed", details)
}

// ServiceUnavailable creates a service unavailable error response
func ServiceUnavailable(message string) *Response {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return Error(ErrCodeServiceUnavailable, message)
}
