package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes are aligned with the HTTP status the error surfaces as.
const (
	CodeValidation = http.StatusBadRequest
	CodeNotFound   = http.StatusNotFound
	CodeConflict   = http.StatusConflict
	CodeInternal   = http.StatusInternalServerError
)

// Error carries an HTTP-aligned code alongside the message
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements the errors.Wrapper interface
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code, so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code != 0 && t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "not found"}
)

// WithCode creates a new error with code
func WithCode(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithCodef creates a new error with code and formatted message
func WithCodef(code int, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Validation reports missing or malformed client input.
func Validation(format string, args ...interface{}) *Error {
	return WithCodef(CodeValidation, format, args...)
}

// NotFound reports a referenced record that does not exist (or has expired).
func NotFound(format string, args ...interface{}) *Error {
	return WithCodef(CodeNotFound, format, args...)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return stderrors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// StatusCode maps err to the HTTP status it should surface as.
func StatusCode(err error) int {
	if code := GetCode(err); code >= 400 && code < 600 {
		return code
	}
	return CodeInternal
}

// GetCode returns the first non-zero code found in the error chain
func GetCode(err error) int {
	var e *Error
	for err != nil {
		if !stderrors.As(err, &e) {
			return 0
		}
		if e.Code != 0 {
			return e.Code
		}
		err = e.Err
	}
	return 0
}

// GetMessage returns the error message
func GetMessage(err error) string {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Error()
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
