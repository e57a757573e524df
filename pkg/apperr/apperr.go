package apperr

import (
	"errors"
	"fmt"
)

// AppError carries a stable code alongside the message so callers can
// branch on the kind of failure without string matching.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// New creates an AppError with the given code and message.
func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError keeping the underlying cause.
func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code from an error chain, CodeUnknown if none.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Is reports whether the error chain carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// Unauthorized role policy denial
func Unauthorized(msg string) error {
	return New(CodeUnauthorized, msg)
}

// UnknownRole role value outside the enumeration
func UnknownRole(msg string) error {
	return New(CodeUnknownRole, msg)
}

// RoleMismatch parties do not form a youth/worker pair
func RoleMismatch(msg string) error {
	return New(CodeRoleMismatch, msg)
}

// InvalidSender sender is not a conversation party
func InvalidSender(msg string) error {
	return New(CodeInvalidSender, msg)
}

// NotFound referenced record missing
func NotFound(msg string) error {
	return New(CodeNotFound, msg)
}

// StorageUnavailable transient storage failure
func StorageUnavailable(msg string, cause error) error {
	return Wrap(CodeStorageUnavailable, msg, cause)
}

// SyncChannelDown push channel failure
func SyncChannelDown(msg string, cause error) error {
	return Wrap(CodeSyncChannelDown, msg, cause)
}
