package ir

import (
	"fmt"
	"sort"

	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/schema"
)

// Scope is one node of the IR tree: the scope opened by the query's root
// selection, or by traversing into it via an Edge. Locations are naturally
// prefix-structured (spec §3.2), so the IR is modeled here as a tree rather
// than a flat block sequence; Blocks() below derives the flat,
// preorder-linearized view spec §4.3 asks every block to expose ("stable
// serialization key").
type Scope struct {
	Location location.Location
	TypeName string // the scope's type after any Coercions have been applied

	Coercions []string // ToType names, in application order (spec §3.3 Coerce)
	Filters   []Expr
	Marks     []string // names of the @tag directives applied at this scope

	Fold         *FoldInfo    // non-nil if this scope is the one a @fold traversal enters
	Recurse      *RecurseInfo // non-nil if this scope is produced by a Recurse block
	OutputSource bool         // spec §3.3 OutputSource

	// WithinOptional is true if this scope, or any ancestor scope, was
	// reached via an optional traversal. The optimizer's tagged-filter
	// guarding pass (spec §4.5.3) keys off this to decide which %tag
	// references need a source_present guard.
	WithinOptional bool

	Children []*Edge
}

// FoldInfo records a Fold region's span (spec §3.3 Fold(begin_loc, end_loc)).
type FoldInfo struct {
	BeginLoc location.Location
	EndLoc   location.Location
}

// RecurseInfo records a Recurse block's parameters (spec §3.3).
type RecurseInfo struct {
	Direction schema.Direction
	EdgeName  string
	Depth     int
}

// Edge connects a parent Scope to a child Scope via a traversed edge (spec
// §3.3 Traverse).
type Edge struct {
	Direction schema.Direction
	EdgeName  string
	ChildType string

	Optional       bool
	WithinFold     bool
	WithinOptional bool

	Child *Scope
}

// NewScope creates a detached scope at loc with the given current type.
func NewScope(loc location.Location, typeName string) *Scope {
	return &Scope{Location: loc, TypeName: typeName}
}

// AddChild appends edge as a child traversal of s and returns the new
// child scope for further building.
func (s *Scope) AddChild(dir schema.Direction, edgeName string, childLoc location.Location, childType string, optional, withinFold, withinOptional bool) *Scope {
	child := NewScope(childLoc, childType)
	child.WithinOptional = withinOptional
	s.Children = append(s.Children, &Edge{
		Direction: dir, EdgeName: edgeName, ChildType: childType,
		Optional: optional, WithinFold: withinFold, WithinOptional: withinOptional,
		Child: child,
	})
	return child
}

// Block is the sealed type of one linearized IR instruction (spec §3.3).
// Every Block exposes its input locations, its output location (if any),
// the property fields it reads (for pushdown), and a stable serialization
// key (spec §4.3).
type Block interface {
	InputLocations() []location.Location
	OutputLocation() (location.Location, bool)
	ReadFields() []string
	Key() string
}

type startBlock struct{ loc location.Location; typeName string }

func (b startBlock) InputLocations() []location.Location        { return nil }
func (b startBlock) OutputLocation() (location.Location, bool)  { return b.loc, true }
func (b startBlock) ReadFields() []string                       { return nil }
func (b startBlock) Key() string                                { return "start:" + b.loc.String() + ":" + b.typeName }

type traverseBlock struct {
	parent, child location.Location
	edge          Edge
}

func (b traverseBlock) InputLocations() []location.Location       { return []location.Location{b.parent} }
func (b traverseBlock) OutputLocation() (location.Location, bool) { return b.child, true }
func (b traverseBlock) ReadFields() []string                      { return nil }
func (b traverseBlock) Key() string {
	return fmt.Sprintf("traverse:%s:%s:%s:%s:opt=%v", b.parent, b.edge.Direction, b.edge.EdgeName, b.child, b.edge.Optional)
}

type coerceBlock struct {
	loc    location.Location
	toType string
}

func (b coerceBlock) InputLocations() []location.Location       { return []location.Location{b.loc} }
func (b coerceBlock) OutputLocation() (location.Location, bool) { return b.loc, true }
func (b coerceBlock) ReadFields() []string                      { return nil }
func (b coerceBlock) Key() string                                { return "coerce:" + b.loc.String() + ":" + b.toType }

type filterBlock struct {
	loc  location.Location
	expr Expr
}

func (b filterBlock) InputLocations() []location.Location       { return []location.Location{b.loc} }
func (b filterBlock) OutputLocation() (location.Location, bool) { return location.Location{}, false }
func (b filterBlock) ReadFields() []string                      { return readFields(b.expr) }
func (b filterBlock) Key() string                                { return "filter:" + b.loc.String() }

type markBlock struct {
	loc  location.Location
	name string
}

func (b markBlock) InputLocations() []location.Location       { return []location.Location{b.loc} }
func (b markBlock) OutputLocation() (location.Location, bool) { return b.loc, true }
func (b markBlock) ReadFields() []string                      { return nil }
func (b markBlock) Key() string                                { return "mark:" + b.loc.String() + ":" + b.name }

type foldBlock struct{ info FoldInfo }

func (b foldBlock) InputLocations() []location.Location       { return []location.Location{b.info.BeginLoc} }
func (b foldBlock) OutputLocation() (location.Location, bool) { return b.info.EndLoc, true }
func (b foldBlock) ReadFields() []string                      { return nil }
func (b foldBlock) Key() string {
	return "fold:" + b.info.BeginLoc.String() + ".." + b.info.EndLoc.String()
}

type recurseBlock struct {
	loc  location.Location
	info RecurseInfo
}

func (b recurseBlock) InputLocations() []location.Location       { return []location.Location{b.loc} }
func (b recurseBlock) OutputLocation() (location.Location, bool) { return b.loc, true }
func (b recurseBlock) ReadFields() []string                      { return nil }
func (b recurseBlock) Key() string {
	return fmt.Sprintf("recurse:%s:%s:%s:%d", b.loc, b.info.Direction, b.info.EdgeName, b.info.Depth)
}

type optionalRegionBlock struct{ begin, end location.Location }

func (b optionalRegionBlock) InputLocations() []location.Location       { return []location.Location{b.begin} }
func (b optionalRegionBlock) OutputLocation() (location.Location, bool) { return b.end, true }
func (b optionalRegionBlock) ReadFields() []string                      { return nil }
func (b optionalRegionBlock) Key() string {
	return "optional:" + b.begin.String() + ".." + b.end.String()
}

type outputSourceBlock struct{ loc location.Location }

func (b outputSourceBlock) InputLocations() []location.Location       { return []location.Location{b.loc} }
func (b outputSourceBlock) OutputLocation() (location.Location, bool) { return location.Location{}, false }
func (b outputSourceBlock) ReadFields() []string                      { return nil }
func (b outputSourceBlock) Key() string                                { return "output_source:" + b.loc.String() }

// constructResultBlock is defined in query.go alongside ConstructResult/OutputSpec.

func readFields(e Expr) []string {
	var out []string
	var walk func(Expr)
	walk = func(e Expr) {
		switch v := e.(type) {
		case FieldRef:
			out = append(out, v.Field)
		case Unary:
			walk(v.Operand)
		case Binary:
			walk(v.Left)
			walk(v.Right)
		case Between:
			walk(v.Value)
			walk(v.Lower)
			walk(v.Upper)
		case SetExpr:
			walk(v.Field)
			for _, val := range v.Values {
				walk(val)
			}
		case Bool:
			for _, op := range v.Operands {
				walk(op)
			}
		case NameOrAlias:
			walk(v.Value)
		case HasEdgeDegree:
			walk(v.Degree)
		case PostCollection:
			walk(v.Inner)
		}
	}
	walk(e)
	sort.Strings(out)
	return out
}

// Blocks linearizes the scope tree rooted at s into the flat, preorder
// block sequence spec §4.3 describes blocks as participating in: Start,
// then at each scope its Coercions (in order), its Filters, its Marks, then
// each child Traverse (recursing into the child before moving to the next
// sibling), with Fold/Recurse/OptionalRegion/OutputSource wrapper blocks
// emitted around the scopes they annotate.
func (s *Scope) Blocks() []Block {
	var out []Block
	s.appendBlocks(&out, true)
	return out
}

func (s *Scope) appendBlocks(out *[]Block, isRoot bool) {
	if isRoot {
		*out = append(*out, startBlock{loc: s.Location, typeName: s.TypeName})
	}
	if s.Recurse != nil {
		*out = append(*out, recurseBlock{loc: s.Location, info: *s.Recurse})
	}
	for _, toType := range s.Coercions {
		*out = append(*out, coerceBlock{loc: s.Location, toType: toType})
	}
	for _, f := range s.Filters {
		*out = append(*out, filterBlock{loc: s.Location, expr: f})
	}
	for _, name := range s.Marks {
		*out = append(*out, markBlock{loc: s.Location, name: name})
	}
	if s.Fold != nil {
		*out = append(*out, foldBlock{info: *s.Fold})
	}
	if s.OutputSource {
		*out = append(*out, outputSourceBlock{loc: s.Location})
	}
	for _, edge := range s.Children {
		*out = append(*out, traverseBlock{parent: s.Location, child: edge.Child.Location, edge: *edge})
		var wrapOptional *optionalRegionBlock
		if edge.Optional {
			wrapOptional = &optionalRegionBlock{begin: s.Location, end: edge.Child.Location}
		}
		edge.Child.appendBlocks(out, false)
		if wrapOptional != nil {
			*out = append(*out, *wrapOptional)
		}
	}
}
