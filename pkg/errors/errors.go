package errors

import "errors"

// Codes shared by the domain services and the transport layer.
const (
	CodeInvalidInput = "invalid_input"
	CodeHistory      = "history_error"
	CodeNotFound     = "not_found"
	CodeStorage      = "storage_error"
	CodeInternal     = "internal_error"
)

// AppError carries a machine readable code alongside the message shown to callers.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New returns an AppError with no underlying cause.
func New(code, message string) error {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches code and message to err. A nil err behaves like New.
func Wrap(code, message string, err error) error {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode reports whether the outermost AppError in err's chain has code.
func IsCode(err error, code string) bool {
	return code != "" && CodeOf(err) == code
}

// CodeOf returns the code of the outermost AppError in the chain, or "" when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
