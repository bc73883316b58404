package source

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// SourceError wraps errors with the URL being fetched
type SourceError struct {
	Source    string // URL or path
	Operation string // Operation that failed (e.g., "request", "decode")
	Err       error  // Underlying error
	Retryable bool   // Whether this error is retryable
}

func (e *SourceError) Error() string {
	if e.Operation != "" {
		return fmt.Sprintf("fetch %q %s failed: %v", e.Source, e.Operation, e.Err)
	}
	return fmt.Sprintf("fetch %q: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *SourceError) IsRetryable() bool {
	return e.Retryable
}

// TimeoutError represents a timeout
type TimeoutError struct {
	Source   string
	Duration string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch %q: timed out after %s", e.Source, e.Duration)
}

// ValidationError represents an invalid URL or an unreadable response
type ValidationError struct {
	Source string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("fetch %q: invalid %s: %s", e.Source, e.Field, e.Reason)
	}
	return fmt.Sprintf("fetch %q: validation failed: %s", e.Source, e.Reason)
}

// HTTPError represents a non-2xx response
type HTTPError struct {
	Source     string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("fetch %q: HTTP %d %s: %s", e.Source, e.StatusCode, e.Status, e.Body)
	}
	return fmt.Sprintf("fetch %q: HTTP %d %s", e.Source, e.StatusCode, e.Status)
}

// IsRetryable returns true for 5xx errors and 429 (rate limit)
func (e *HTTPError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// CircuitOpenError indicates the circuit breaker for a host is open
type CircuitOpenError struct {
	Source string
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("fetch %q: circuit breaker open, service temporarily unavailable", e.Source)
}

// NewSourceError creates a SourceError with retryable detection
func NewSourceError(source, operation string, err error) *SourceError {
	return &SourceError{
		Source:    source,
		Operation: operation,
		Err:       err,
		Retryable: isRetryableError(err),
	}
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == 404
}

// isRetryableError checks if an error is retryable
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.IsRetryable()
	}

	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"no such host",
		"timeout",
		"temporary failure",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}
