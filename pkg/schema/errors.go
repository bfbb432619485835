package schema

import (
	"errors"
	"fmt"
)

// ErrorKind classifies schema contract violations. Structural kinds are
// detected locally and fail fast at the offending call or at Check;
// KindEngine is an opaque passthrough from the storage engine and is
// never reinterpreted by this layer.
type ErrorKind string

const (
	KindDomainAlreadySet       ErrorKind = "DOMAIN_ALREADY_SET"
	KindMissingDomain          ErrorKind = "MISSING_DOMAIN"
	KindMissingTileExtent      ErrorKind = "MISSING_TILE_EXTENT"
	KindDuplicateDimensionName ErrorKind = "DUPLICATE_DIMENSION_NAME"
	KindDuplicateAttributeName ErrorKind = "DUPLICATE_ATTRIBUTE_NAME"
	KindInvalidAttributeName   ErrorKind = "INVALID_ATTRIBUTE_NAME"
	KindInvalidCellValNum      ErrorKind = "INVALID_CELL_VAL_NUM"
	KindInvalidDimension       ErrorKind = "INVALID_DIMENSION"
	KindInvalidCapacity        ErrorKind = "INVALID_CAPACITY"
	KindInvalidLayout          ErrorKind = "INVALID_LAYOUT"
	KindKVConflict             ErrorKind = "KV_CONFLICT"
	KindEngine                 ErrorKind = "ENGINE"
)

// Error is the structured error type for schema contract violations.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error returns a formatted error string.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema [%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("schema [%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the target is a schema error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// newError creates a schema error with a formatted message.
func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapEngineError wraps an engine-reported failure without reinterpreting it.
func wrapEngineError(message string, cause error) *Error {
	return &Error{Kind: KindEngine, Message: message, Cause: cause}
}

// KindOf extracts the error kind from an error chain.
// Returns empty string if the error is not a schema error.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether the error chain contains a schema error of the
// given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
