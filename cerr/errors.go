// Package cerr holds the compiler's error taxonomy (spec §7): SchemaError,
// ValidationError, UnsupportedFeatureError, and InternalError. It is a leaf
// package with no dependency on schema/ir/frontend/etc. so that every later
// stage, including the root package's public API, can import it without
// creating an import cycle.
package cerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the error taxonomy of §7: every compilation failure
// wraps exactly one of these, so callers can branch with errors.Is without
// caring about the concrete type.
var (
	// ErrSchema is wrapped by every SchemaError.
	ErrSchema = errors.New("graphcompiler: schema error")
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("graphcompiler: validation error")
	// ErrUnsupportedFeature is wrapped by every UnsupportedFeatureError.
	ErrUnsupportedFeature = errors.New("graphcompiler: unsupported feature")
	// ErrInternal is wrapped by every InternalError. A well-formed input
	// must never trigger this; if it does, treat it as a compiler bug.
	ErrInternal = errors.New("graphcompiler: internal error")
)

// SchemaError reports a malformed schema: an unknown supertype, a union of
// nothing, a reserved name used where it is not allowed, and similar
// structural problems caught while constructing a Schema.
type SchemaError struct {
	// Kind is a short machine-readable tag, e.g. "unknown_supertype".
	Kind string
	// TypeName names the offending type, if any.
	TypeName string
	Message  string
}

func (e *SchemaError) Error() string {
	if e.TypeName != "" {
		return fmt.Sprintf("graphcompiler: schema error (%s) on %s: %s", e.Kind, e.TypeName, e.Message)
	}
	return fmt.Sprintf("graphcompiler: schema error (%s): %s", e.Kind, e.Message)
}

// Is reports whether target is ErrSchema, so errors.Is(err, ErrSchema) works.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// NewSchemaError returns a new *SchemaError.
func NewSchemaError(kind, typeName, message string) *SchemaError {
	return &SchemaError{Kind: kind, TypeName: typeName, Message: message}
}

// ValidationErrorKind enumerates the §7 sub-kinds of ValidationError.
type ValidationErrorKind string

// The exhaustive set of validation sub-kinds named in spec §7.
const (
	PlacementViolation  ValidationErrorKind = "PlacementViolation"
	NameViolation       ValidationErrorKind = "NameViolation"
	TypeMismatch        ValidationErrorKind = "TypeMismatch"
	MissingOutputInFold ValidationErrorKind = "MissingOutputInFold"
	DuplicateName       ValidationErrorKind = "DuplicateName"
	UnknownFieldKind    ValidationErrorKind = "UnknownField"
	BadLiteralValue     ValidationErrorKind = "BadLiteralValue"
	TagOrdering         ValidationErrorKind = "TagOrdering"
)

// ValidationError reports that a surface query violates one of the
// directive-placement, naming, or typing rules of §4.4. SurfacePath names
// the offending location by its location key, usually followed by "." and
// the offending field name; it is empty for query-level violations and
// does not carry a directive name.
type ValidationError struct {
	Kind        ValidationErrorKind
	SurfacePath string
	Message     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("graphcompiler: validation error (%s) at %s: %s", e.Kind, e.SurfacePath, e.Message)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError returns a new *ValidationError.
func NewValidationError(kind ValidationErrorKind, surfacePath, message string) *ValidationError {
	return &ValidationError{Kind: kind, SurfacePath: surfacePath, Message: message}
}

// UnsupportedFeatureError reports that the requested dialect cannot express
// a construct that validated successfully against the schema (§4.7).
type UnsupportedFeatureError struct {
	Feature     string
	Dialect     string
	SurfacePath string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("graphcompiler: dialect %q does not support %q (at %s)", e.Dialect, e.Feature, e.SurfacePath)
}

// Is reports whether target is ErrUnsupportedFeature.
func (e *UnsupportedFeatureError) Is(target error) bool { return target == ErrUnsupportedFeature }

// NewUnsupportedFeatureError returns a new *UnsupportedFeatureError.
func NewUnsupportedFeatureError(feature, dialect, surfacePath string) *UnsupportedFeatureError {
	return &UnsupportedFeatureError{Feature: feature, Dialect: dialect, SurfacePath: surfacePath}
}

// InternalError reports a compiler bug: an invariant the front-end should
// have guaranteed was violated by the time a later pass observed it. A
// well-formed input never produces one; if it is caught, callers should
// treat it as a crash rather than a recoverable condition.
type InternalError struct {
	Message string
	Wrapped error
}

func (e *InternalError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("graphcompiler: internal error: %s: %v", e.Message, e.Wrapped)
	}
	return fmt.Sprintf("graphcompiler: internal error: %s", e.Message)
}

// Unwrap returns the wrapped error, if any.
func (e *InternalError) Unwrap() error { return e.Wrapped }

// Is reports whether target is ErrInternal.
func (e *InternalError) Is(target error) bool { return target == ErrInternal }

// NewInternalError returns a new *InternalError.
func NewInternalError(message string, wrapped error) *InternalError {
	return &InternalError{Message: message, Wrapped: wrapped}
}

// IsSchemaError reports whether err is (or wraps) a *SchemaError.
func IsSchemaError(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

// IsValidationError reports whether err is (or wraps) a *ValidationError.
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsUnsupportedFeature reports whether err is (or wraps) an *UnsupportedFeatureError.
func IsUnsupportedFeature(err error) bool {
	var e *UnsupportedFeatureError
	return errors.As(err, &e)
}

// IsInternalError reports whether err is (or wraps) an *InternalError.
func IsInternalError(err error) bool {
	var e *InternalError
	return errors.As(err, &e)
}

// joinPath renders a vertex-type chain like "Animal.out_Animal_ParentOf.Animal"
// for use as a ValidationError/UnsupportedFeatureError SurfacePath.
func joinPath(segments ...string) string {
	return strings.Join(segments, ".")
}
