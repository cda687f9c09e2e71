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

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// NewAppError builds an AppError with a stable code.
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// DependencyError signals that an optional collaborator (OCR engine,
// rasterizer, enrichment stack) could not be constructed. Fatal for the job,
// never retried.
type DependencyError struct {
	Component string
	Cause     error
}

func (e *DependencyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s dependencies are not available: %v", e.Component, e.Cause)
	}
	return fmt.Sprintf("%s dependencies are not available", e.Component)
}

func (e *DependencyError) Unwrap() error {
	return e.Cause
}

func NewDependencyError(component string, cause error) *DependencyError {
	return &DependencyError{Component: component, Cause: cause}
}
