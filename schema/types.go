// Package schema provides the typed graph schema consumed by the compiler:
// vertex/interface/union type definitions, scalar kinds, the implements and
// type-equivalence relations, and read-only index descriptors (spec §3.1).
//
// A Schema is built once per compiler session, either programmatically via
// [New] plus the fluent field/edge/index builders, or by loading a GraphQL
// SDL document together with a YAML [Config] extension (see config.go). Once
// built it is deeply immutable and safe to share across concurrent
// compilations (spec §5).
package schema

import "fmt"

// ScalarKind enumerates the scalar property kinds of spec §3.1.
type ScalarKind int

// The scalar kinds named in spec §3.1.
const (
	Id ScalarKind = iota
	Int
	Float
	Bool
	String
	Date
	DateTime
	Decimal
)

func (k ScalarKind) String() string {
	switch k {
	case Id:
		return "Id"
	case Int:
		return "Int"
	case Float:
		return "Float"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case Date:
		return "Date"
	case DateTime:
		return "DateTime"
	case Decimal:
		return "Decimal"
	default:
		return fmt.Sprintf("ScalarKind(%d)", int(k))
	}
}

// Direction is the direction an edge is traversed in, relative to the
// owning type: Out follows an edge the owner declares, In follows an edge
// declared (as Out) by the target type back to the owner.
type Direction int

// The two edge directions of spec §3.1.
const (
	Out Direction = iota
	In
)

func (d Direction) String() string {
	if d == In {
		return "in"
	}
	return "out"
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	if d == In {
		return Out
	}
	return In
}

// FieldKind distinguishes the three field-descriptor shapes of spec §3.1.
type FieldKind int

// The field kinds of spec §3.1.
const (
	PropertyField FieldKind = iota
	VertexField
	MetaField
)

// Meta field names, always visible on every type (spec §4.1 list_meta_fields).
const (
	TypenameMeta = "__typename"
	CountMeta    = "_x_count"
)

// FieldDescriptor describes one field of an object or interface type: a
// scalar (or list-of-scalar) property, an edge to another vertex type, or a
// meta field (__typename, _x_count).
type FieldDescriptor struct {
	Name string
	Kind FieldKind

	// Property fields.
	Scalar   ScalarKind
	ListKind bool // true for list-of-scalar properties

	// Vertex fields.
	Direction  Direction
	EdgeName   string // schema edge name, without the in_/out_ surface prefix
	TargetType string

	// Meta fields: Name is TypenameMeta or CountMeta.
}

// TypeKind distinguishes object, interface, and union type definitions.
type TypeKind int

// The three type kinds of spec §3.1.
const (
	ObjectType TypeKind = iota
	InterfaceType
	UnionType
)

// TypeDef is one type definition in the schema: an object, an interface, or
// a union. Object and interface types carry a field-name → FieldDescriptor
// map; unions carry an ordered list of member object-type names.
type TypeDef struct {
	Name       string
	Kind       TypeKind
	Fields     map[string]*FieldDescriptor // object/interface only
	Implements []string                    // object only: interface parent names
	Members    []string                    // union only: ordered concrete member names
}

func newTypeDef(name string, kind TypeKind) *TypeDef {
	return &TypeDef{Name: name, Kind: kind, Fields: map[string]*FieldDescriptor{}}
}
