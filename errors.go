// Package graphcompiler compiles read-only graph queries written in a
// GraphQL-based surface language into a target database dialect: a
// graph-traversal (MATCH-style) query or a SQL query, together with an
// ordered parameter list and output row-shape metadata.
//
// See [Compile] for the public entry point.
package graphcompiler

import "github.com/syssam/graphcompiler/cerr"

// The public error taxonomy of §7 is implemented in the internal cerr
// package (so schema/frontend/optimizer/emitter can all raise it without
// importing this package and creating a cycle) and re-exported here under
// the names the rest of this document uses.
type (
	SchemaError             = cerr.SchemaError
	ValidationError         = cerr.ValidationError
	ValidationErrorKind     = cerr.ValidationErrorKind
	UnsupportedFeatureError = cerr.UnsupportedFeatureError
	InternalError           = cerr.InternalError
)

// Validation sub-kinds, re-exported from cerr.
const (
	PlacementViolation  = cerr.PlacementViolation
	NameViolation       = cerr.NameViolation
	TypeMismatch        = cerr.TypeMismatch
	MissingOutputInFold = cerr.MissingOutputInFold
	DuplicateName       = cerr.DuplicateName
	UnknownFieldKind    = cerr.UnknownFieldKind
	BadLiteralValue     = cerr.BadLiteralValue
	TagOrdering         = cerr.TagOrdering
)

var (
	ErrSchema             = cerr.ErrSchema
	ErrValidation         = cerr.ErrValidation
	ErrUnsupportedFeature = cerr.ErrUnsupportedFeature
	ErrInternal           = cerr.ErrInternal

	NewSchemaError             = cerr.NewSchemaError
	NewValidationError         = cerr.NewValidationError
	NewUnsupportedFeatureError = cerr.NewUnsupportedFeatureError
	NewInternalError           = cerr.NewInternalError

	IsSchemaError        = cerr.IsSchemaError
	IsValidationError    = cerr.IsValidationError
	IsUnsupportedFeature = cerr.IsUnsupportedFeature
	IsInternalError      = cerr.IsInternalError
)
