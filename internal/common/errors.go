package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes surfaced in logs and exit messages.
const (
	CodeConfig       = "CONFIG_ERROR"
	CodeDocumentRead = "DOCUMENT_READ_ERROR"
	CodeOutputWrite  = "OUTPUT_WRITE_ERROR"
	CodeLedger       = "LEDGER_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
)

// Common application errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrConfiguration = errors.New("configuration error")
	ErrDocumentRead  = errors.New("document read error")
	ErrOutputWrite   = errors.New("output write error")
	ErrLedger        = errors.New("ledger error")
	ErrValidation    = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ConfigError marks err as fatal configuration failure. errors.Is(err, ErrConfiguration) holds.
func ConfigError(message string, cause error) error {
	return NewAppError(CodeConfig, message, joinCause(ErrConfiguration, cause))
}

// DocumentReadError marks a per-document text acquisition failure.
func DocumentReadError(path string, cause error) error {
	return NewAppError(CodeDocumentRead, path, joinCause(ErrDocumentRead, cause))
}

// OutputWriteError marks a failure to persist the result table.
func OutputWriteError(dest string, cause error) error {
	return NewAppError(CodeOutputWrite, dest, joinCause(ErrOutputWrite, cause))
}

// LedgerError marks a failure of the optional run ledger.
func LedgerError(message string, cause error) error {
	return NewAppError(CodeLedger, message, joinCause(ErrLedger, cause))
}

// joinCause keeps both the sentinel and the underlying error reachable through errors.Is/As
// while printing only the underlying cause.
func joinCause(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &causeError{sentinel: sentinel, cause: cause}
}

type causeError struct {
	sentinel error
	cause    error
}

func (e *causeError) Error() string   { return e.cause.Error() }
func (e *causeError) Unwrap() []error { return []error{e.sentinel, e.cause} }

// CodeOf returns the AppError code carried by err, or "" when err is not an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
