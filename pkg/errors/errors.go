// Package errors provides structured error types for the pakk application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the install engine
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Each code corresponds to one failure class of a package install attempt:
//   - MALFORMED_SPEC: a version constraint failed to parse
//   - PACKAGE_NOT_FOUND: the registry has no versions for the package
//   - NO_MATCHING_VERSION: versions exist, none satisfies the constraint
//   - REGISTRY_UNAVAILABLE: every configured backend failed
//   - DOWNLOAD_FAILED: archive transfer failed
//   - EXTRACT_FAILED: archive could not be unpacked
//   - NOT_A_DEPENDENCY: operation on a package the project doesn't declare
//   - INSTALL_FAILED: a package install aborted (wraps the step that failed)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedSpec, "invalid spec: %s", text)
//	if errors.Is(err, errors.ErrCodeMalformedSpec) {
//	    // Handle parse failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDownloadFailed, origErr, "fetching %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure classes of the install engine.
const (
	ErrCodeMalformedSpec       Code = "MALFORMED_SPEC"
	ErrCodePackageNotFound     Code = "PACKAGE_NOT_FOUND"
	ErrCodeNoMatchingVersion   Code = "NO_MATCHING_VERSION"
	ErrCodeRegistryUnavailable Code = "REGISTRY_UNAVAILABLE"
	ErrCodeDownloadFailed      Code = "DOWNLOAD_FAILED"
	ErrCodeExtractFailed       Code = "EXTRACT_FAILED"
	ErrCodeNotADependency      Code = "NOT_A_DEPENDENCY"
	ErrCodeInstallFailed       Code = "INSTALL_FAILED"

	// Input validation and internal errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInternal       Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err carries the given error code anywhere in its
// unwrap tree, including branches produced by errors.Join.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*Error); ok && se.Code == code {
		return true
	}
	switch x := err.(type) {
	case interface{ Unwrap() error }:
		return Is(x.Unwrap(), code)
	case interface{ Unwrap() []error }:
		for _, e := range x.Unwrap() {
			if Is(e, code) {
				return true
			}
		}
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
