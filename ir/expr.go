// Package ir defines the intermediate representation of spec §3.3: a typed
// tree of blocks rooted at the query's Start scope, plus the small
// algebraic expression tree blocks carry as filter and output bodies.
package ir

import (
	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/schema"
)

// Op enumerates the comparison, set, string, and structural operators of
// spec §3.3.
type Op string

// The operators named in spec §3.3/§4.4.
const (
	OpEq            Op = "="
	OpNeq           Op = "!="
	OpLt            Op = "<"
	OpLte           Op = "<="
	OpGt            Op = ">"
	OpGte           Op = ">="
	OpIn            Op = "in"
	OpNotIn         Op = "not_in"
	OpBetween       Op = "between"
	OpHasSubstring  Op = "has_substring"
	OpStartsWith    Op = "starts_with"
	OpEndsWith      Op = "ends_with"
	OpContains      Op = "contains"
	OpNotContains   Op = "not_contains"
	OpIntersects    Op = "intersects"
	OpNameOrAlias   Op = "name_or_alias"
	OpHasEdgeDegree Op = "has_edge_degree"
	OpIsNull        Op = "is_null"
	OpIsNotNull     Op = "is_not_null"
)

// Conn enumerates the boolean connectives, including the Implies connective
// the optimizer's tagged-filter-under-optional pass (spec §4.5.3) introduces
// to express "source_present ⇒ predicate".
type Conn string

const (
	ConnAnd     Conn = "and"
	ConnOr      Conn = "or"
	ConnNot     Conn = "not"
	ConnImplies Conn = "implies"
)

// Expr is the sealed expression-tree node type. Every concrete expression
// type in this file implements it.
type Expr interface {
	exprNode()
}

// Literal is a typed constant value. Surface literal filter values are
// rejected by the front-end (spec §4.4), so the front-end never produces
// Literal nodes; the optimizer's redundant-filter pass only drops boolean
// Literal filters and does not create them.
type Literal struct {
	Scalar schema.ScalarKind
	Value  any
}

func (Literal) exprNode() {}

// Param is a runtime parameter reference ($name), typed by inference from
// the filtered field's scalar kind (spec §4.4).
type Param struct {
	Name   string
	Scalar schema.ScalarKind
}

func (Param) exprNode() {}

// TagParam is a tagged-parameter reference (%name), typed by inference from
// its @tag source field, and carrying the location the tag was marked at so
// the optimizer's guarding pass (spec §4.5.3) can test source presence.
type TagParam struct {
	Name   string
	Scalar schema.ScalarKind
	Source location.Location
}

func (TagParam) exprNode() {}

// FieldRef accesses a property field at a location.
type FieldRef struct {
	Loc   location.Location
	Field string
}

func (FieldRef) exprNode() {}

// MetaFieldRef accesses a meta field (__typename, _x_count) at a location.
type MetaFieldRef struct {
	Loc  location.Location
	Meta string
}

func (MetaFieldRef) exprNode() {}

// Unary is a one-operand predicate: is_null or is_not_null.
type Unary struct {
	Op      Op
	Operand Expr
}

func (Unary) exprNode() {}

// Binary is a two-operand comparison or string/list predicate: =, !=, <,
// <=, >, >=, has_substring, starts_with, ends_with, contains, not_contains,
// intersects.
type Binary struct {
	Op          Op
	Left, Right Expr
}

func (Binary) exprNode() {}

// Between is the three-operand between(lower, value, upper) predicate.
type Between struct {
	Value, Lower, Upper Expr
}

func (Between) exprNode() {}

// SetExpr is the in/not_in predicate: field's value tested against an
// ordered list of candidate expressions.
type SetExpr struct {
	Op     Op // OpIn or OpNotIn
	Field  Expr
	Values []Expr
}

func (SetExpr) exprNode() {}

// HasEdgeDegree tests the number of edges of the given direction/name at
// loc against degree (spec §4.4: "has_edge_degree on an edge vertex
// field").
type HasEdgeDegree struct {
	Loc       location.Location
	Direction schema.Direction
	EdgeName  string
	Degree    Expr
}

func (HasEdgeDegree) exprNode() {}

// NameOrAlias tests whether value equals either the "name" or "alias"
// property field of the vertex at loc (spec §4.4: "name_or_alias on vertex
// with name and alias").
type NameOrAlias struct {
	Loc   location.Location
	Value Expr
}

func (NameOrAlias) exprNode() {}

// Presence tests whether the OptionalRegion ending at Loc matched any data
// ("source_present" in spec §4.5.3's guard rule). It is introduced only by
// the optimizer's tagged-filter-under-optional pass, never by the
// front-end.
type Presence struct {
	Loc location.Location
}

func (Presence) exprNode() {}

// PostCollection wraps a fold's _x_count filter to mark it for application
// after the fold's element set is materialized (spec §4.5.4), rather than
// per-element during traversal.
type PostCollection struct {
	Inner Expr
}

func (PostCollection) exprNode() {}

// Bool is a boolean connective over one or more operands: And/Or take two
// or more, Not takes exactly one, Implies takes exactly two (antecedent,
// consequent).
type Bool struct {
	Conn     Conn
	Operands []Expr
}

func (Bool) exprNode() {}

// And builds a conjunction node over operands as given, without flattening
// nested And/Or operands.
func And(operands ...Expr) Expr { return Bool{Conn: ConnAnd, Operands: operands} }

// Or builds a disjunction.
func Or(operands ...Expr) Expr { return Bool{Conn: ConnOr, Operands: operands} }

// Not negates operand.
func Not(operand Expr) Expr { return Bool{Conn: ConnNot, Operands: []Expr{operand}} }

// Implies builds the "antecedent ⇒ consequent" guard the optimizer's
// tagged-filter-under-optional pass introduces (spec §4.5.3).
func Implies(antecedent, consequent Expr) Expr {
	return Bool{Conn: ConnImplies, Operands: []Expr{antecedent, consequent}}
}

// Field is a fluent, type-safe expression builder bound to one property
// field, mirroring the teacher's generic StringField[P]/IntField[P]
// predicate-builder pattern. Since this compiler has a single universal
// Expr type (not one predicate type per generated entity package), Field
// only needs to be generic over the literal value's Go type, not over a
// predicate function type.
type Field[T any] struct {
	loc   location.Location
	field string
}

// On binds a fluent predicate builder to the property field named name at
// loc.
func On[T any](loc location.Location, name string) Field[T] {
	return Field[T]{loc: loc, field: name}
}

func (f Field[T]) ref() Expr { return FieldRef{Loc: f.loc, Field: f.field} }

// Eq builds a "=" comparison against a runtime parameter.
func (f Field[T]) Eq(param string, scalar schema.ScalarKind) Expr {
	return Binary{Op: OpEq, Left: f.ref(), Right: Param{Name: param, Scalar: scalar}}
}

// Neq builds a "!=" comparison.
func (f Field[T]) Neq(param string, scalar schema.ScalarKind) Expr {
	return Binary{Op: OpNeq, Left: f.ref(), Right: Param{Name: param, Scalar: scalar}}
}

// Lt builds a "<" comparison.
func (f Field[T]) Lt(param string, scalar schema.ScalarKind) Expr {
	return Binary{Op: OpLt, Left: f.ref(), Right: Param{Name: param, Scalar: scalar}}
}

// Lte builds a "<=" comparison.
func (f Field[T]) Lte(param string, scalar schema.ScalarKind) Expr {
	return Binary{Op: OpLte, Left: f.ref(), Right: Param{Name: param, Scalar: scalar}}
}

// Gt builds a ">" comparison.
func (f Field[T]) Gt(param string, scalar schema.ScalarKind) Expr {
	return Binary{Op: OpGt, Left: f.ref(), Right: Param{Name: param, Scalar: scalar}}
}

// Gte builds a ">=" comparison.
func (f Field[T]) Gte(param string, scalar schema.ScalarKind) Expr {
	return Binary{Op: OpGte, Left: f.ref(), Right: Param{Name: param, Scalar: scalar}}
}

// HasSubstring builds a has_substring predicate.
func (f Field[T]) HasSubstring(param string) Expr {
	return Binary{Op: OpHasSubstring, Left: f.ref(), Right: Param{Name: param, Scalar: schema.String}}
}

// Between builds a between predicate over two runtime parameters.
func (f Field[T]) Between(lowerParam, upperParam string, scalar schema.ScalarKind) Expr {
	return Between{
		Value: f.ref(),
		Lower: Param{Name: lowerParam, Scalar: scalar},
		Upper: Param{Name: upperParam, Scalar: scalar},
	}
}

// IsNull builds an is_null predicate.
func (f Field[T]) IsNull() Expr { return Unary{Op: OpIsNull, Operand: f.ref()} }

// IsNotNull builds an is_not_null predicate.
func (f Field[T]) IsNotNull() Expr { return Unary{Op: OpIsNotNull, Operand: f.ref()} }

// In builds an in predicate against a runtime parameter bound to a list.
func (f Field[T]) In(param string, scalar schema.ScalarKind) Expr {
	return SetExpr{Op: OpIn, Field: f.ref(), Values: []Expr{Param{Name: param, Scalar: scalar}}}
}

// NotIn builds a not_in predicate.
func (f Field[T]) NotIn(param string, scalar schema.ScalarKind) Expr {
	return SetExpr{Op: OpNotIn, Field: f.ref(), Values: []Expr{Param{Name: param, Scalar: scalar}}}
}
