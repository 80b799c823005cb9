// Package frontend implements the single-pass validator of spec §4.4: it
// walks a surface GraphQL query AST (an already-parsed
// github.com/vektah/gqlparser/v2 *ast.QueryDocument) against a
// github.com/syssam/graphcompiler/schema.Schema and produces an IR tree,
// enforcing every placement, naming, and type rule spec §3.4/§4.4 names.
package frontend

import (
	"regexp"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/graphcompiler/cerr"
	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/schema"
)

var nameRe = regexp.MustCompile(`^[A-Za-z_]+$`)

// Validate walks doc's first operation against sch, returning a validated,
// location-annotated, but not yet optimized IR query. paramsSchema, if
// non-nil, cross-checks the scalar kind the driver's caller declared for
// each runtime parameter against the kind inferred here from the filtered
// field; a mismatch is reported as TypeMismatch.
func Validate(sch *schema.Schema, doc *ast.QueryDocument, paramsSchema map[string]schema.ScalarKind) (*ir.Query, error) {
	if len(doc.Operations) == 0 {
		return nil, cerr.NewValidationError(cerr.BadLiteralValue, "", "query document has no operations")
	}
	op := doc.Operations[0]
	if len(op.SelectionSet) != 1 {
		return nil, cerr.NewValidationError(cerr.PlacementViolation, "", "query must have exactly one root selection")
	}
	rootField, ok := op.SelectionSet[0].(*ast.Field)
	if !ok {
		return nil, cerr.NewValidationError(cerr.PlacementViolation, "", "root selection must be a field")
	}

	v := &validator{
		schema:       sch,
		ordinals:     location.NewOrdinalTable(),
		tags:         map[string]ir.TagDef{},
		outputs:      map[string]bool{},
		paramsSchema: paramsSchema,
	}

	rootType := rootField.Name
	if _, err := sch.LookupType(rootType); err != nil {
		return nil, err
	}
	rootLoc := location.Root(rootType)
	root := ir.NewScope(rootLoc, rootType)

	ctx := scopeCtx{loc: rootLoc, typeName: rootType}
	if err := v.walkFields(root, rootField.SelectionSet, ctx); err != nil {
		return nil, err
	}
	if len(v.result.Outputs) == 0 {
		return nil, cerr.NewValidationError(cerr.MissingOutputInFold, "", "query declares no @output")
	}
	if v.sawOutputSource && v.outputSourceLoc.String() != v.lastVertexLoc.String() {
		return nil, cerr.NewValidationError(cerr.PlacementViolation, v.outputSourceLoc.String(),
			"@output_source may only appear on the last vertex field of the query")
	}

	return &ir.Query{Root: root, Tags: v.tags, Result: v.result}, nil
}

// scopeCtx carries the ambient state of the scope currently being walked:
// its location and type, and whether it is nested inside a Fold,
// OptionalRegion, or Recurse (spec §3.4's placement invariants all key off
// these three flags).
type scopeCtx struct {
	loc      location.Location
	typeName string

	inFold     bool
	inOptional bool
	inRecurse  bool

	foldVertexSeen bool // at most one vertex expansion per scope inside a fold
}

type validator struct {
	schema       *schema.Schema
	ordinals     *location.OrdinalTable
	tags         map[string]ir.TagDef
	outputs      map[string]bool
	paramsSchema map[string]schema.ScalarKind
	result       ir.ConstructResult

	sawOutputSource bool
	outputSourceLoc location.Location

	// lastVertexLoc tracks the chronologically most recent vertex field
	// entered. Since walkVertexField always recurses into its own
	// selection set before returning to a sibling, its final value after
	// the whole walk is the last vertex field in the query's preorder.
	lastVertexLoc location.Location
}

// walkFields processes one scope's selection set: spec §4.4 requires
// property fields (including meta fields) before vertex fields at the same
// scope.
func (v *validator) walkFields(scope *ir.Scope, sel ast.SelectionSet, ctx scopeCtx) error {
	seenVertex := false
	outputsBefore := len(v.result.Outputs)
	for _, s := range sel {
		f, ok := s.(*ast.Field)
		if !ok {
			continue
		}
		kind, err := v.classify(ctx.typeName, f.Name)
		if err != nil {
			return err
		}
		if kind == schema.VertexField {
			if ctx.inFold && !seenVertex && len(v.result.Outputs) > outputsBefore {
				return cerr.NewValidationError(cerr.PlacementViolation, ctx.loc.String()+"."+f.Name, "@output inside a fold must be at the fold's innermost scope")
			}
			seenVertex = true
			if err := v.walkVertexField(scope, f, ctx); err != nil {
				return err
			}
			ctx.foldVertexSeen = ctx.inFold
			continue
		}
		if seenVertex {
			return cerr.NewValidationError(cerr.PlacementViolation, ctx.loc.String()+"."+f.Name,
				"property fields must appear before vertex fields at a scope")
		}
		if err := v.walkPropertyOrMetaField(scope, f, ctx, kind); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) classify(typeName, fieldName string) (schema.FieldKind, error) {
	if fieldName == schema.TypenameMeta || fieldName == schema.CountMeta {
		return schema.MetaField, nil
	}
	fd, err := v.schema.Field(typeName, fieldName)
	if err != nil {
		return 0, err
	}
	return fd.Kind, nil
}

func (v *validator) walkPropertyOrMetaField(scope *ir.Scope, f *ast.Field, ctx scopeCtx, kind schema.FieldKind) error {
	var scalar schema.ScalarKind
	if kind == schema.PropertyField {
		fd, err := v.schema.Field(ctx.typeName, f.Name)
		if err != nil {
			return err
		}
		scalar = fd.Scalar
	}

	for _, d := range f.Directives {
		switch d.Name {
		case directiveFilter:
			if err := v.applyFilter(scope, f.Name, scalar, d, ctx); err != nil {
				return err
			}
		case directiveOutput:
			if err := v.applyOutput(f.Name, scalar, kind, d, ctx); err != nil {
				return err
			}
		case directiveTag:
			if err := v.applyTag(scope, f.Name, scalar, d, ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) applyFilter(scope *ir.Scope, fieldName string, scalar schema.ScalarKind, d *ast.Directive, ctx scopeCtx) error {
	opName, ok := stringArg(d, "op_name")
	if !ok {
		return cerr.NewValidationError(cerr.BadLiteralValue, ctx.loc.String()+"."+fieldName, "@filter missing op_name")
	}
	values := filterValues(d)
	ref := ir.FieldRef{Loc: ctx.loc, Field: fieldName}
	expr, err := v.buildPredicate(ir.Op(opName), ref, scalar, values, ctx)
	if err != nil {
		return err
	}
	scope.Filters = append(scope.Filters, expr)
	return nil
}

// buildPredicate builds the Expr for a @filter's operator against its
// value list, inferring each value's runtime/tagged-parameter type from
// scalar and validating the operator's arity per spec §4.4's signature
// table.
func (v *validator) buildPredicate(op ir.Op, ref ir.Expr, scalar schema.ScalarKind, values []string, ctx scopeCtx) (ir.Expr, error) {
	operand := func(raw string) (ir.Expr, error) { return v.resolveValue(raw, scalar, ctx) }

	switch op {
	case ir.OpEq, ir.OpNeq, ir.OpLt, ir.OpLte, ir.OpGt, ir.OpGte,
		ir.OpHasSubstring, ir.OpStartsWith, ir.OpEndsWith, ir.OpContains, ir.OpNotContains, ir.OpIntersects:
		if len(values) != 1 {
			return nil, cerr.NewValidationError(cerr.TypeMismatch, ctx.loc.String(), string(op)+" requires exactly one value")
		}
		rhs, err := operand(values[0])
		if err != nil {
			return nil, err
		}
		return ir.Binary{Op: op, Left: ref, Right: rhs}, nil
	case ir.OpIn, ir.OpNotIn:
		if len(values) != 1 {
			return nil, cerr.NewValidationError(cerr.TypeMismatch, ctx.loc.String(), string(op)+" requires exactly one value")
		}
		rhs, err := operand(values[0])
		if err != nil {
			return nil, err
		}
		return ir.SetExpr{Op: op, Field: ref, Values: []ir.Expr{rhs}}, nil
	case ir.OpBetween:
		if len(values) != 2 {
			return nil, cerr.NewValidationError(cerr.TypeMismatch, ctx.loc.String(), "between requires exactly two values")
		}
		lower, err := operand(values[0])
		if err != nil {
			return nil, err
		}
		upper, err := operand(values[1])
		if err != nil {
			return nil, err
		}
		return ir.Between{Value: ref, Lower: lower, Upper: upper}, nil
	case ir.OpIsNull, ir.OpIsNotNull:
		if len(values) != 0 {
			return nil, cerr.NewValidationError(cerr.TypeMismatch, ctx.loc.String(), string(op)+" takes no values")
		}
		return ir.Unary{Op: op, Operand: ref}, nil
	case ir.OpNameOrAlias:
		if len(values) != 1 {
			return nil, cerr.NewValidationError(cerr.TypeMismatch, ctx.loc.String(), "name_or_alias requires exactly one value")
		}
		rhs, err := operand(values[0])
		if err != nil {
			return nil, err
		}
		return ir.NameOrAlias{Loc: ctx.loc, Value: rhs}, nil
	default:
		return nil, cerr.NewValidationError(cerr.BadLiteralValue, ctx.loc.String(), "unknown filter operator "+string(op))
	}
}

// resolveValue parses a @filter value as a runtime ($name) or tagged
// (%name) reference; literal values are rejected per spec §4.4.
func (v *validator) resolveValue(raw string, scalar schema.ScalarKind, ctx scopeCtx) (ir.Expr, error) {
	switch {
	case strings.HasPrefix(raw, "$"):
		name := raw[1:]
		if v.paramsSchema != nil {
			if declared, ok := v.paramsSchema[name]; ok && declared != scalar {
				return nil, cerr.NewValidationError(cerr.TypeMismatch, ctx.loc.String(), "parameter "+name+" declared kind does not match filtered field")
			}
		}
		return ir.Param{Name: name, Scalar: scalar}, nil
	case strings.HasPrefix(raw, "%"):
		name := raw[1:]
		tag, ok := v.tags[name]
		if !ok {
			return nil, cerr.NewValidationError(cerr.TagOrdering, ctx.loc.String(), "tag %"+name+" referenced before it is defined")
		}
		if tag.Scalar != scalar {
			return nil, cerr.NewValidationError(cerr.TypeMismatch, ctx.loc.String(), "tag %"+name+" scalar kind does not match the filtered field")
		}
		return ir.TagParam{Name: name, Scalar: scalar, Source: tag.Loc}, nil
	default:
		return nil, cerr.NewValidationError(cerr.BadLiteralValue, ctx.loc.String(), "@filter value must be a $param or %tag reference, got a literal")
	}
}

func (v *validator) applyOutput(fieldName string, scalar schema.ScalarKind, kind schema.FieldKind, d *ast.Directive, ctx scopeCtx) error {
	outName, ok := stringArg(d, "out_name")
	if !ok || !nameRe.MatchString(outName) {
		return cerr.NewValidationError(cerr.NameViolation, ctx.loc.String()+"."+fieldName, "@output name must match [A-Za-z_]+")
	}
	if schema.IsReservedName(outName) {
		return cerr.NewValidationError(cerr.NameViolation, ctx.loc.String()+"."+fieldName, "@output name may not be reserved")
	}
	if v.outputs[outName] {
		return cerr.NewValidationError(cerr.DuplicateName, ctx.loc.String()+"."+fieldName, "duplicate @output name "+outName)
	}
	if ctx.inFold && ctx.foldVertexSeen {
		return cerr.NewValidationError(cerr.PlacementViolation, ctx.loc.String()+"."+fieldName, "@output inside a fold must be at the fold's innermost scope")
	}
	v.outputs[outName] = true

	var ref ir.Expr
	hint := ir.ScalarHint{Scalar: scalar}
	switch {
	case fieldName == schema.TypenameMeta:
		ref = ir.MetaFieldRef{Loc: ctx.loc, Meta: schema.TypenameMeta}
		hint = ir.ScalarHint{IsTypename: true}
	case fieldName == schema.CountMeta:
		ref = ir.MetaFieldRef{Loc: ctx.loc, Meta: schema.CountMeta}
		hint = ir.ScalarHint{IsCount: true}
	default:
		ref = ir.FieldRef{Loc: ctx.loc, Field: fieldName}
	}
	// A _x_count output is one scalar per fold group, not one per element,
	// so it is never list-valued even though it is declared inside a fold.
	list := ctx.inFold && !hint.IsCount
	v.result.Outputs = append(v.result.Outputs, ir.OutputSpec{
		Name: outName, Value: ref, List: list, Nullable: ctx.inOptional, Scalar: hint,
	})
	return nil
}

func (v *validator) applyTag(scope *ir.Scope, fieldName string, scalar schema.ScalarKind, d *ast.Directive, ctx scopeCtx) error {
	tagName, ok := stringArg(d, "tag_name")
	if !ok || !nameRe.MatchString(tagName) {
		return cerr.NewValidationError(cerr.NameViolation, ctx.loc.String()+"."+fieldName, "@tag name must match [A-Za-z_]+")
	}
	if schema.IsReservedName(tagName) {
		return cerr.NewValidationError(cerr.NameViolation, ctx.loc.String()+"."+fieldName, "@tag name may not be reserved")
	}
	if ctx.inFold {
		return cerr.NewValidationError(cerr.PlacementViolation, ctx.loc.String()+"."+fieldName, "@tag may not be applied inside a fold")
	}
	if _, dup := v.tags[tagName]; dup {
		return cerr.NewValidationError(cerr.DuplicateName, ctx.loc.String()+"."+fieldName, "duplicate @tag name "+tagName)
	}
	v.tags[tagName] = ir.TagDef{Name: tagName, Loc: ctx.loc, Field: fieldName, Scalar: scalar}
	scope.Marks = append(scope.Marks, tagName)
	return nil
}

func (v *validator) walkVertexField(scope *ir.Scope, f *ast.Field, ctx scopeCtx) error {
	dir, edgeName, ok := schema.SplitEdgeField(f.Name)
	if !ok {
		return cerr.NewValidationError(cerr.NameViolation, ctx.loc.String()+"."+f.Name, "vertex field must be named out_<Edge> or in_<Edge>")
	}

	optional := findDirective(f.Directives, directiveOptional) != nil
	recurse := findDirective(f.Directives, directiveRecurse)
	fold := findDirective(f.Directives, directiveFold) != nil
	outputSource := findDirective(f.Directives, directiveOutputSource) != nil

	if err := v.checkCoexistence(optional, recurse != nil, fold, outputSource, ctx, f.Name); err != nil {
		return err
	}

	childType, _, err := v.schema.ResolveEdge(ctx.typeName, dir, edgeName)
	if err != nil {
		return err
	}

	if ctx.inFold {
		if ctx.foldVertexSeen {
			return cerr.NewValidationError(cerr.PlacementViolation, ctx.loc.String()+"."+f.Name, "a fold may contain at most one vertex expansion per scope")
		}
		ctx.foldVertexSeen = true
	}

	ordinal := v.ordinals.Next(ctx.loc, dir, edgeName)
	childLoc := ctx.loc.Child(dir, edgeName, ordinal)
	v.lastVertexLoc = childLoc
	child := scope.AddChild(dir, edgeName, childLoc, childType, optional, ctx.inFold || fold, ctx.inOptional || optional)

	childCtx := scopeCtx{
		loc: childLoc, typeName: childType,
		inFold: ctx.inFold || fold, inOptional: ctx.inOptional || optional, inRecurse: ctx.inRecurse || recurse != nil,
	}

	if recurse != nil {
		depth, ok := intArg(recurse, "depth")
		if !ok || depth < 1 {
			return cerr.NewValidationError(cerr.BadLiteralValue, ctx.loc.String()+"."+f.Name, "@recurse depth must be >= 1")
		}
		if !v.recurseTypesMatch(ctx.typeName, childType) {
			return cerr.NewValidationError(cerr.TypeMismatch, ctx.loc.String()+"."+f.Name, "@recurse endpoint types do not satisfy the schema relation")
		}
		child.Recurse = &ir.RecurseInfo{Direction: dir, EdgeName: edgeName, Depth: depth}
	}

	if outputSource {
		if v.sawOutputSource {
			return cerr.NewValidationError(cerr.PlacementViolation, ctx.loc.String()+"."+f.Name, "@output_source may appear at most once")
		}
		v.sawOutputSource = true
		v.outputSourceLoc = childLoc
		child.OutputSource = true
	}

	if fold {
		child.Fold = &ir.FoldInfo{BeginLoc: ctx.loc, EndLoc: childLoc}
	}

	return v.walkFields(child, f.SelectionSet, childCtx)
}

func (v *validator) checkCoexistence(optional, recurse, fold, outputSource bool, ctx scopeCtx, fieldName string) error {
	path := ctx.loc.String() + "." + fieldName
	if optional && (recurse || fold || outputSource) {
		return cerr.NewValidationError(cerr.PlacementViolation, path, "@optional may not coexist with @recurse, @fold, or @output_source at the same vertex")
	}
	if ctx.inOptional && (fold || outputSource) {
		return cerr.NewValidationError(cerr.PlacementViolation, path, "@fold and @output_source may not appear inside an @optional scope")
	}
	if ctx.inOptional && recurse {
		return cerr.NewValidationError(cerr.PlacementViolation, path, "@recurse may not appear inside an @optional scope")
	}
	if ctx.inFold && recurse {
		return cerr.NewValidationError(cerr.PlacementViolation, path, "@recurse may not appear inside a @fold")
	}
	if ctx.inFold && (optional || fold || outputSource) {
		return cerr.NewValidationError(cerr.PlacementViolation, path, "@recurse, @optional, @fold, and @output_source may not appear inside a @fold")
	}
	return nil
}

// recurseTypesMatch implements spec §4.4's "types must work out" rule for
// @recurse: the enclosing type A and the recursed edge's child type B
// satisfy A is a union containing B, B is an interface A implements, or
// A == B.
func (v *validator) recurseTypesMatch(a, b string) bool {
	if a == b {
		return true
	}
	at, errA := v.schema.LookupType(a)
	bt, errB := v.schema.LookupType(b)
	if errA != nil || errB != nil {
		return false
	}
	return (at.Kind == schema.UnionType && v.schema.IsSubtype(b, a)) ||
		(bt.Kind == schema.InterfaceType && v.schema.IsSubtype(a, b))
}
