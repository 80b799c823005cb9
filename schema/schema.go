package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syssam/graphcompiler/cerr"
)

// IndexDescriptor is a read-only description of a database index, consumed
// by the validator and emitters but never mutated by them (spec §3.1).
type IndexDescriptor struct {
	Name         string
	BaseType     string
	Fields       []string
	Unique       bool
	Ordered      bool
	IgnoresNulls bool
}

// Schema is the typed, immutable graph schema described in spec §3.1. Build
// one with [New] or [Load]; once built, every method is side-effect free
// and safe for concurrent use (spec §5).
type Schema struct {
	types       map[string]*TypeDef
	order       []string // deterministic type iteration order
	equivalence map[string]string
	indexes     []*IndexDescriptor
	root        []string
}

// Option configures a Schema built with New.
type Option func(*Schema)

// WithEquivalence records that objectType is semantically identical to the
// union of its concrete subtypes named by unionType (the type-equivalence
// hint of spec §3.1).
func WithEquivalence(objectType, unionType string) Option {
	return func(s *Schema) { s.equivalence[objectType] = unionType }
}

// WithIndexes attaches read-only index descriptors to the schema.
func WithIndexes(idx ...*IndexDescriptor) Option {
	return func(s *Schema) { s.indexes = append(s.indexes, idx...) }
}

// WithRoot declares the starting vertex types listed by the schema's root
// type (spec §3.1).
func WithRoot(types ...string) Option {
	return func(s *Schema) { s.root = append(s.root, types...) }
}

// New constructs a Schema from a set of type definitions, validating every
// invariant of spec §3.1/§3.4 that is checkable without a query: unique
// field names per type, objects may not implement a non-interface, unions
// may not repeat a member, and reserved (triple-underscore) names may not
// be used as user field names.
func New(types []*TypeDef, opts ...Option) (*Schema, error) {
	s := &Schema{
		types:       make(map[string]*TypeDef, len(types)),
		equivalence: make(map[string]string),
	}
	for _, t := range types {
		if _, dup := s.types[t.Name]; dup {
			return nil, cerr.NewSchemaError(KindDuplicateField, t.Name, "duplicate type definition")
		}
		s.types[t.Name] = t
		s.order = append(s.order, t.Name)
	}
	sort.Strings(s.order)
	for _, opt := range opts {
		opt(s)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Schema) validate() error {
	for _, name := range s.order {
		t := s.types[name]
		switch t.Kind {
		case ObjectType:
			for _, iface := range t.Implements {
				parent, ok := s.types[iface]
				if !ok {
					return cerr.NewSchemaError(KindUnknownSupertype, t.Name, fmt.Sprintf("implements unknown interface %q", iface))
				}
				if parent.Kind != InterfaceType {
					return cerr.NewSchemaError(KindBadImplements, t.Name, fmt.Sprintf("%q is not an interface", iface))
				}
			}
			fallthrough
		case InterfaceType:
			seen := map[string]bool{}
			for fname := range t.Fields {
				if seen[fname] {
					return cerr.NewSchemaError(KindDuplicateField, t.Name, fmt.Sprintf("duplicate field %q", fname))
				}
				seen[fname] = true
				if isReserved(fname) {
					return cerr.NewSchemaError(KindReservedName, t.Name, fmt.Sprintf("field %q is a reserved name", fname))
				}
			}
		case UnionType:
			if len(t.Members) == 0 {
				return cerr.NewSchemaError(KindEmptyUnion, t.Name, "union has no members")
			}
			members := map[string]bool{}
			for _, m := range t.Members {
				if members[m] {
					return cerr.NewSchemaError(KindDuplicateMember, t.Name, fmt.Sprintf("duplicate union member %q", m))
				}
				members[m] = true
				if _, ok := s.types[m]; !ok {
					return cerr.NewSchemaError(KindUnknownType, t.Name, fmt.Sprintf("unknown union member %q", m))
				}
			}
		}
	}
	return nil
}

// isReserved reports whether name is prefixed with three underscores, the
// reservation spec §3.1/§3.4 apply to user field, output, and tag names.
func isReserved(name string) bool {
	return strings.HasPrefix(name, "___")
}

// IsReservedName exposes isReserved to other compiler packages (frontend
// uses it to enforce §4.4's output/tag naming rules).
func IsReservedName(name string) bool { return isReserved(name) }

// LookupType returns the type definition named name.
func (s *Schema) LookupType(name string) (*TypeDef, error) {
	t, ok := s.types[name]
	if !ok {
		return nil, cerr.NewSchemaError(KindUnknownType, name, "unknown type")
	}
	return t, nil
}

// IsSubtype reports whether a is b, a implements interface b, or a is a
// member of union b (spec §4.1).
func (s *Schema) IsSubtype(a, b string) bool {
	if a == b {
		return true
	}
	at, ok := s.types[a]
	if !ok {
		return false
	}
	bt, ok := s.types[b]
	if !ok {
		return false
	}
	switch bt.Kind {
	case InterfaceType:
		if at.Kind != ObjectType {
			return false
		}
		for _, iface := range at.Implements {
			if iface == b {
				return true
			}
		}
		return false
	case UnionType:
		for _, m := range bt.Members {
			if m == a {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// EdgeKind distinguishes how resolve_edge located the field: declared
// directly on the owner, or inherited through an implemented interface.
type EdgeKind int

// Edge resolution kinds.
const (
	EdgeDirect EdgeKind = iota
	EdgeInherited
)

// ResolveEdge walks owner (and, transitively, the interfaces it
// implements) for a vertex field with the given direction and edge name,
// returning the child type it leads to (spec §4.1).
func (s *Schema) ResolveEdge(owner string, dir Direction, edgeName string) (childType string, kind EdgeKind, err error) {
	fd, err := s.fieldLookup(owner, func(f *FieldDescriptor) bool {
		return f.Kind == VertexField && f.Direction == dir && f.EdgeName == edgeName
	})
	if err != nil {
		return "", 0, cerr.NewSchemaError(KindUnknownEdge, owner, fmt.Sprintf("unknown edge %s_%s", dir, edgeName))
	}
	k := EdgeDirect
	if _, ok := s.types[owner].Fields[fd.Name]; !ok {
		k = EdgeInherited
	}
	return fd.TargetType, k, nil
}

// EquivalentUnionOf resolves the type-equivalence hint for objectType, if
// one was registered with WithEquivalence (spec §3.1, §4.1).
func (s *Schema) EquivalentUnionOf(objectType string) (string, bool) {
	u, ok := s.equivalence[objectType]
	return u, ok
}

// Field looks up a field descriptor on owner, following the implements
// relation when owner does not declare it directly. Interfaces do not
// inherit from interfaces (spec §3.1), so the walk is exactly one level
// deep: owner's own fields, then each implemented interface's fields.
func (s *Schema) Field(owner, name string) (*FieldDescriptor, error) {
	return s.fieldLookup(owner, func(f *FieldDescriptor) bool { return f.Name == name })
}

func (s *Schema) fieldLookup(owner string, match func(*FieldDescriptor) bool) (*FieldDescriptor, error) {
	t, ok := s.types[owner]
	if !ok {
		return nil, cerr.NewSchemaError(KindUnknownType, owner, "unknown type")
	}
	for _, f := range t.Fields {
		if match(f) {
			return f, nil
		}
	}
	var found []*FieldDescriptor
	for _, iface := range t.Implements {
		it, ok := s.types[iface]
		if !ok {
			continue
		}
		for _, f := range it.Fields {
			if match(f) {
				found = append(found, f)
			}
		}
	}
	switch len(found) {
	case 0:
		return nil, cerr.NewSchemaError(KindUnknownField, owner, "unknown field")
	case 1:
		return found[0], nil
	default:
		for _, f := range found[1:] {
			if f.Kind != found[0].Kind || f.Scalar != found[0].Scalar || f.ListKind != found[0].ListKind {
				return nil, cerr.NewSchemaError(KindAmbiguousField, owner, "field inherited from multiple interfaces with conflicting scalar kind")
			}
		}
		return found[0], nil
	}
}

// ListMetaFields returns the __typename and _x_count meta-field
// descriptors, which every type exposes regardless of its own field map
// (spec §4.1).
func (s *Schema) ListMetaFields(owner string) []*FieldDescriptor {
	return []*FieldDescriptor{
		{Name: TypenameMeta, Kind: MetaField},
		{Name: CountMeta, Kind: MetaField, Scalar: Int},
	}
}

// Indexes returns the schema's read-only index descriptors.
func (s *Schema) Indexes() []*IndexDescriptor { return s.indexes }

// Root returns the starting vertex types listed by the schema's root type.
func (s *Schema) Root() []string { return s.root }

// TypeNames returns every declared type name, in deterministic sorted order.
func (s *Schema) TypeNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// WithMeta is a pure helper that documents the no-mutation rule of spec §9
// ("Global state"): meta fields are always visible via ListMetaFields, so
// registering them never needs to mutate a caller's schema value. It
// returns s unchanged; callers that expect an explicit registration step
// can still call it.
func (s *Schema) WithMeta() *Schema { return s }
