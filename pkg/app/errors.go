package app

import (
	"fmt"
	"time"
)

// ErrorType classifies application errors by the component that failed
type ErrorType int

const (
	ErrorConfig ErrorType = iota
	ErrorSession
	ErrorScreen
	ErrorTranscript
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	types := []string{"config", "session", "screen", "transcript"}

	if int(e) >= 0 && int(e) < len(types) {
		return types[e]
	}
	return "unknown"
}

// AppError represents an application-specific error
type AppError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Timestamp time.Time
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new application error
func NewAppError(errorType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errorType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}
