package errors

import (
	"errors"
	"fmt"
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func New(code, message string) *AppError {
	return NewAppError(code, message, nil)
}

// Wrap keeps an existing AppError untouched so the innermost code wins.
func Wrap(err error, code, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return NewAppError(code, message, err)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func Internal(err error, message string) *AppError {
	return NewAppError(CodeInternal, message, err)
}

// CodeOf returns CodeInternal for errors that are not AppErrors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr == nil {
			return ""
		}
		return appErr.Code
	}
	return CodeInternal
}

func Is(err error, code string) bool {
	return CodeOf(err) == code && code != ""
}
