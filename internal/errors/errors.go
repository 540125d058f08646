// Package errors defines stable error codes for every failure mode in
// ownership resolution. Codes are the contract: callers branch on the
// code, never on message text.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// PatternInvalid indicates a manifest or store pattern failed to compile
	PatternInvalid ErrorCode = "PATTERN_INVALID"
	// StoreUnavailable indicates the backing rule store is unreachable
	StoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	// NoCandidates indicates resolution produced no candidate above threshold.
	// Not a failure: signals the caller to apply the configured default owner.
	NoCandidates ErrorCode = "NO_CANDIDATES"
	// ArtifactInvalid indicates an artifact token contains traversal
	// sequences or disallowed characters
	ArtifactInvalid ErrorCode = "ARTIFACT_INVALID"
	// ManifestUnreadable indicates the ownership manifest file cannot be read
	ManifestUnreadable ErrorCode = "MANIFEST_UNREADABLE"
	// GitUnavailable indicates git history queries cannot be served
	GitUnavailable ErrorCode = "GIT_UNAVAILABLE"
	// ConfigInvalid indicates a configuration-time fatal error
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// VerifyFailed indicates an identity-verification call failed
	VerifyFailed ErrorCode = "VERIFY_FAILED"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ResolveError represents a whoowns error with a stable code, message, and
// optional structured details
type ResolveError struct {
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	cause   error       // Underlying error (not exported to JSON)
}

// New creates a new ResolveError without an underlying cause
func New(code ErrorCode, message string) *ResolveError {
	return &ResolveError{Code: code, Message: message}
}

// Wrap creates a new ResolveError wrapping an underlying cause
func Wrap(code ErrorCode, message string, cause error) *ResolveError {
	return &ResolveError{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *ResolveError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ResolveError) Unwrap() error {
	return e.cause
}

// WithDetails adds structured details to the error
func (e *ResolveError) WithDetails(details interface{}) *ResolveError {
	e.Details = details
	return e
}

// CodeOf extracts the error code from an error chain.
// Returns InternalError for non-ResolveError errors, and empty for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var re *ResolveError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return InternalError
}

// HasCode reports whether any error in the chain carries the given code
func HasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}
