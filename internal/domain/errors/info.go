package errors

import "github.com/pkg/errors"

// ErrorInfo contains detailed error information
type ErrorInfo struct {
	Code    string `json:"code"`              // Business error code, e.g., "USER_NOT_FOUND"
	Message string `json:"message"`           // User-friendly error message
	Details string `json:"details,omitempty"` // Wrapped context, outermost first
}

// NewErrorInfo describes err for an outer surface. Errors outside the AppError taxonomy are INTERNAL.
func NewErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}

	var appErr AppError
	if !errors.As(err, &appErr) {
		return &ErrorInfo{Code: "INTERNAL", Message: "internal error", Details: err.Error()}
	}

	info := &ErrorInfo{
		Code:    appErr.ErrorCode(),
		Message: appErr.Message(),
		Details: appErr.Details(),
	}
	if full := err.Error(); full != appErr.Message() {
		info.Details = full
	}

	return info
}

// String renders the info as "[CODE] message: details".
func (i *ErrorInfo) String() string {
	if i.Details == "" || i.Details == i.Message {
		return "[" + i.Code + "] " + i.Message
	}

	return "[" + i.Code + "] " + i.Message + ": " + i.Details
}
