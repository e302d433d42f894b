package rules

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfiguration is matched by every error that makes a rule set unusable:
// a missing, unparseable or structurally invalid document. Callers test for it
// with errors.Is and must not touch any container when it is returned.
var ErrConfiguration = errors.New("rule configuration error")

// LoadError represents a document that could not be read.
// This includes "file not found", "permission denied", size limits and encoding checks.
type LoadError struct {
	// Source names the document (usually a file path)
	Source string

	// Message describes the error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load rule document %q: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load rule document %q: %s", e.Source, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports ErrConfiguration.
func (e *LoadError) Is(target error) bool {
	return target == ErrConfiguration
}

// ParseError represents a document that is not valid JSON or YAML.
type ParseError struct {
	// Source names the document
	Source string

	// Line is the line number where the error occurred (1-indexed, 0 if unknown)
	Line int

	// Message describes the parsing error
	Message string

	// Cause is the underlying decoder error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %q at line %d: %s", e.Source, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %q: %s", e.Source, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports ErrConfiguration.
func (e *ParseError) Is(target error) bool {
	return target == ErrConfiguration
}

// ValidationError represents a document that parsed but has the wrong shape,
// for example a match-key bound to something other than a list of rules.
type ValidationError struct {
	// Source names the document
	Source string

	// Key is the match-key involved (if applicable)
	Key string

	// FieldPath is the path to the offending field (e.g., "Keywords.leather[1].matRatio")
	FieldPath string

	// Line is the line number of the offending node (0 if unknown)
	Line int

	// Message describes the validation error
	Message string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	parts := []string{"validation error"}

	if e.Source != "" {
		parts = append(parts, fmt.Sprintf("in %q", e.Source))
	}

	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("for key %q", e.Key))
	}

	if e.FieldPath != "" {
		parts = append(parts, fmt.Sprintf("at %s", e.FieldPath))
	}

	if e.Line > 0 {
		parts = append(parts, fmt.Sprintf("(line %d)", e.Line))
	}

	msg := strings.Join(parts, " ") + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is reports ErrConfiguration.
func (e *ValidationError) Is(target error) bool {
	return target == ErrConfiguration
}

// ErrorList contains multiple errors found while reading a document set.
type ErrorList struct {
	Errors []error
}

// Error implements the error interface.
func (e *ErrorList) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors occurred:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %v\n", i+1, err))
	}
	return sb.String()
}

// Unwrap exposes the contained errors to errors.Is and errors.As.
func (e *ErrorList) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the list.
func (e *ErrorList) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (e *ErrorList) HasErrors() bool {
	return len(e.Errors) > 0
}

// ToError returns nil if there are no errors, the single error if there is one,
// or the ErrorList itself if there are multiple errors.
func (e *ErrorList) ToError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return e
}
