package models

import (
	"errors"
	"fmt"
)

// Error codes for the domain error taxonomy. Handlers map codes to HTTP
// statuses exhaustively instead of string-matching messages.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeActiveSession      = "ACTIVE_SESSION"
	CodeConflict           = "CONFLICT"
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternal           = "INTERNAL_ERROR"
)

// AppError carries a machine-readable code alongside a human-readable message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

func NewInvalidCredentialsError(message string) *AppError {
	return &AppError{Code: CodeInvalidCredentials, Message: message}
}

func NewAccountLockedError(message string) *AppError {
	return &AppError{Code: CodeAccountLocked, Message: message}
}

func NewActiveSessionError(message string) *AppError {
	return &AppError{Code: CodeActiveSession, Message: message}
}

func NewConflictError(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: CodeValidation, Message: message}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "Internal server error", Err: err}
}

// IsCode reports whether err is an AppError with the given code.
func IsCode(err error, code string) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}
