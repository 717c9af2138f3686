package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents a unique error code for categorizing errors
type ErrorCode string

const (
	// Connection errors (1xxx)
	ErrCodeConnectionFailed     ErrorCode = "SDL1001"
	ErrCodeAuthenticationFailed ErrorCode = "SDL1002"
	ErrCodeClientNotFound       ErrorCode = "SDL1003"

	// Configuration errors (2xxx)
	ErrCodeConfigNotFound ErrorCode = "SDL2001"
	ErrCodeConfigInvalid  ErrorCode = "SDL2002"
	ErrCodeConfigMissing  ErrorCode = "SDL2003"

	// DDL pipeline errors (3xxx)
	ErrCodeSchemaMismatch ErrorCode = "SDL3001"
	ErrCodeEmptyBatch     ErrorCode = "SDL3002"
	ErrCodeBatchExecution ErrorCode = "SDL3003"

	// Subprocess errors (4xxx)
	ErrCodeClientError       ErrorCode = "SDL4001"
	ErrCodeProtocolAmbiguous ErrorCode = "SDL4002"
	ErrCodeResultParsing     ErrorCode = "SDL4003"

	// File system errors (5xxx)
	ErrCodeFileNotFound   ErrorCode = "SDL5001"
	ErrCodeFilePermission ErrorCode = "SDL5002"
	ErrCodeInvalidPath    ErrorCode = "SDL5003"

	// User input errors (6xxx)
	ErrCodeUserInput ErrorCode = "SDL6001"
	ErrCodeCancelled ErrorCode = "SDL6002"

	// System errors (9xxx)
	ErrCodeInternal ErrorCode = "SDL9001"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityCritical ErrorSeverity = "CRITICAL" // System failure, requires immediate attention
	SeverityError    ErrorSeverity = "ERROR"    // Operation failed, but system continues
	SeverityWarning  ErrorSeverity = "WARNING"  // Operation succeeded with issues
	SeverityInfo     ErrorSeverity = "INFO"     // Informational, not an error
)

// AppError represents a structured application error with context
type AppError struct {
	Code        ErrorCode
	Message     string
	Severity    ErrorSeverity
	Context     map[string]interface{}
	Cause       error
	Stack       string
	Timestamp   time.Time
	Recoverable bool
	Suggestions []string
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[%s] %s: %s", e.Code, e.Severity, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\nCaused by: %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return b.String()
}

// Unwrap returns the cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:        code,
		Message:     message,
		Severity:    SeverityError,
		Context:     make(map[string]interface{}),
		Stack:       captureStack(),
		Timestamp:   time.Now(),
		Recoverable: false,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	appErr := New(code, message)
	appErr.Cause = err

	// If wrapping another AppError, inherit its context
	if ae, ok := err.(*AppError); ok {
		for k, v := range ae.Context {
			appErr.Context[k] = v
		}
	}

	return appErr
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity sets the error severity
func (e *AppError) WithSeverity(severity ErrorSeverity) *AppError {
	e.Severity = severity
	return e
}

// WithSuggestions adds recovery suggestions
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// AsRecoverable marks the error as recoverable
func (e *AppError) AsRecoverable() *AppError {
	e.Recoverable = true
	return e
}

// captureStack captures the current stack trace
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			b.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return b.String()
}

// Common error constructors

// ConnectionError creates a connection-related error
func ConnectionError(message string, cause error) *AppError {
	err := New(ErrCodeConnectionFailed, message)
	err.Cause = cause
	return err.
		WithSeverity(SeverityError).
		WithSuggestions(
			"Check your network connection",
			"Verify the Snowflake account identifier",
			"Confirm the snowsql client path in config.ini",
		)
}

// ConfigMissingError creates an error for an absent required section/key
func ConfigMissingError(section, key string) *AppError {
	return New(ErrCodeConfigMissing, fmt.Sprintf("missing required config value [%s] %s", section, key)).
		WithContext("section", section).
		WithContext("key", key).
		WithSuggestions(
			fmt.Sprintf("Add '%s' to the [%s] section of config.ini", key, section),
			"Run 'snowddl setup' to regenerate the configuration",
		)
}

// SchemaMismatchError creates an error for a file whose SQL targets the wrong schema
func SchemaMismatchError(file, prefix, detected string) *AppError {
	return New(ErrCodeSchemaMismatch,
		fmt.Sprintf("file %s is prefixed '%s' but creates objects in schema '%s'", file, prefix, detected)).
		WithContext("file", file).
		WithContext("prefix", prefix).
		WithContext("detected_schema", detected).
		WithSuggestions(
			"Rename the file so its prefix matches the schema in its CREATE statements",
			"Or fix the schema qualifier inside the SQL",
		)
}

// BatchError creates an error for a failed batch execution
func BatchError(stage string, cause error) *AppError {
	return Wrap(cause, ErrCodeBatchExecution, fmt.Sprintf("batch execution failed for stage %s", stage)).
		WithContext("stage", stage).
		WithSuggestions(
			"Check individual files in the stage for syntax errors",
			"Verify the target schema exists in the warehouse",
		)
}

// IsRecoverable checks if an error is recoverable
func IsRecoverable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Recoverable
	}
	return false
}

// GetErrorCode extracts the error code from an error
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}
