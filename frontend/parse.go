package frontend

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/syssam/graphcompiler/cerr"
)

// ParseQuery is a convenience wrapper around
// github.com/vektah/gqlparser/v2/parser.ParseQuery for callers that hold raw
// surface query text rather than an already-parsed document. Compile's
// public surface (spec §4.8) takes the parsed AST directly, since the
// parser itself is the external, opaque surface-language consumer §1
// describes.
func ParseQuery(name, source string) (*ast.QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, cerr.NewValidationError(cerr.BadLiteralValue, "", err.Error())
	}
	return doc, nil
}
