// Package apperror defines the application's error taxonomy.
//
// Every error that crosses a layer boundary is classified here so the HTTP
// edge can map it to a status code without inspecting storage or validation
// internals. The categories mirror how the API responds:
//
//	ErrValidation   → 400 with the full list of violated constraints
//	ErrConflict     → 400 with a fixed human-readable message
//	ErrNotFound     → 404, no body
//	ErrUnauthorized → 401, no body (cause is never disclosed to the caller)
//
// Anything outside these categories is treated as unexpected: the top-level
// handler logs it and responds 500. An error additionally marked Fatal tells
// that handler the process must not keep running — a last-resort crash policy
// reserved for failures the raising code judged unrecoverable. Routine
// storage and validation errors are never fatal.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// AppError carries the classification sentinel plus whatever the edge needs
// to build the response. Use errors.Is to classify and errors.As to extract.
type AppError struct {
	Err     error    // classification sentinel (ErrNotFound, ErrConflict, ...)
	Message string   // human-readable message (conflicts, not-found detail)
	Errors  []string // per-constraint messages for validation failures
	Fatal   bool     // whether the process must terminate after responding
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound returns a typed not-found error. Handlers map this to 404.
func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// ValidationFailed collects one or more constraint violations.
// The caller is expected to gather EVERY violation before constructing this —
// the API contract returns the complete list, not just the first failure.
func ValidationFailed(errs ...string) *AppError {
	msg := "validation failed"
	if len(errs) > 0 {
		msg = errs[0]
	}
	return &AppError{
		Err:     ErrValidation,
		Message: msg,
		Errors:  errs,
	}
}

// Conflict returns a typed conflict error with a fixed client-visible message.
// Used when a storage uniqueness violation is translated into a client error.
func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

// Unauthorized returns a typed authentication/authorization error.
// The message is for logs only — the response carries the status alone.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Fatalf wraps a formatted error as fatal. The top-level handler responds
// 500, logs it, and terminates the process.
func Fatalf(format string, args ...any) *AppError {
	return &AppError{
		Err:     fmt.Errorf(format, args...),
		Message: fmt.Sprintf(format, args...),
		Fatal:   true,
	}
}

// IsFatal reports whether err (anywhere in its chain) is marked fatal.
func IsFatal(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Fatal
}
