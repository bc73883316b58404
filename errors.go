package blockkit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ParseError reports a problem in an authored page with enough context to
// find it in the source file.
type ParseError struct {
	File    string // Source file path, empty for in-memory documents
	Line    int    // Line number (1-indexed)
	Column  int    // Column number (1-indexed, optional)
	Message string
	Hint    string
	// Source overrides reading File when printing the code context.
	Source []byte
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Format()
}

// Format returns the error with the surrounding source lines.
func (e *ParseError) Format() string {
	var b strings.Builder

	name := e.File
	if name == "" {
		name = "<input>"
	}
	fmt.Fprintf(&b, "❌ Error in %s\n\n", name)
	fmt.Fprintf(&b, "Line %d: %s\n", e.Line, e.Message)
	b.WriteString(e.codeContext())

	if e.Hint != "" {
		fmt.Fprintf(&b, "\n💡 Tip: %s\n", e.Hint)
	}
	return b.String()
}

// codeContext renders two lines either side of the error line.
func (e *ParseError) codeContext() string {
	src := e.Source
	if src == nil && e.File != "" {
		data, err := os.ReadFile(e.File)
		if err != nil {
			return ""
		}
		src = data
	}
	if src == nil {
		return ""
	}

	lines := strings.Split(string(bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))), "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	for i := max(1, e.Line-2); i <= min(len(lines), e.Line+2); i++ {
		prefix := fmt.Sprintf("  %2d | ", i)
		b.WriteString(prefix + lines[i-1] + "\n")
		if i == e.Line && e.Column > 0 {
			b.WriteString(strings.Repeat(" ", len(prefix)+e.Column-1) + "^\n")
		}
	}
	return b.String()
}

// NewParseError creates a new ParseError.
func NewParseError(file string, line int, message string) *ParseError {
	return &ParseError{
		File:    file,
		Line:    line,
		Message: message,
	}
}

// WithColumn adds column information to the error.
func (e *ParseError) WithColumn(col int) *ParseError {
	e.Column = col
	return e
}

// WithHint adds a helpful hint to the error.
func (e *ParseError) WithHint(hint string) *ParseError {
	e.Hint = hint
	return e
}

// withSource attaches file context to a ParseError returned by the parser.
// Other errors are wrapped into one.
func withSource(err error, file string, src []byte) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.File = file
		pe.Source = src
		return pe
	}
	return &ParseError{File: file, Line: 1, Message: err.Error(), Source: src}
}
