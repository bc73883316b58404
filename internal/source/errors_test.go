package source

import (
	"errors"
	"fmt"
	"testing"
)

func TestSourceErrorError(t *testing.T) {
	err := &SourceError{
		Source:    "https://example.com/query-index.json",
		Operation: "request",
		Err:       errors.New("connection refused"),
		Retryable: true,
	}

	msg := err.Error()
	expected := `fetch "https://example.com/query-index.json" request failed: connection refused`
	if msg != expected {
		t.Errorf("expected %q, got %q", expected, msg)
	}
}

func TestSourceErrorUnwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &SourceError{
		Source:    "test",
		Operation: "op",
		Err:       underlying,
	}

	if !errors.Is(err, underlying) {
		t.Error("SourceError should unwrap to underlying error")
	}
}

func TestValidationErrorError(t *testing.T) {
	tests := []struct {
		name     string
		err      *ValidationError
		expected string
	}{
		{
			name:     "with field",
			err:      &ValidationError{Source: "ftp://x", Field: "url", Reason: "bad scheme"},
			expected: `fetch "ftp://x": invalid url: bad scheme`,
		},
		{
			name:     "without field",
			err:      &ValidationError{Source: "/index.json", Reason: "not JSON"},
			expected: `fetch "/index.json": validation failed: not JSON`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestHTTPErrorIsRetryable(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}

	for _, tt := range tests {
		err := &HTTPError{StatusCode: tt.status}
		if got := err.IsRetryable(); got != tt.retryable {
			t.Errorf("status %d: expected retryable=%v, got %v", tt.status, tt.retryable, got)
		}
	}
}

func TestIsNotFound(t *testing.T) {
	wrapped := fmt.Errorf("load fragment: %w", &HTTPError{StatusCode: 404, Status: "Not Found"})
	if !IsNotFound(wrapped) {
		t.Error("expected wrapped 404 to be not found")
	}
	if IsNotFound(&HTTPError{StatusCode: 500}) {
		t.Error("500 is not a not-found error")
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"timeout error", &TimeoutError{Source: "x", Duration: "1s"}, true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"bad gateway", errors.New("502 Bad Gateway"), true},
		{"plain", errors.New("invalid json"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.retryable {
				t.Errorf("expected %v, got %v", tt.retryable, got)
			}
		})
	}
}
