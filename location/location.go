// Package location implements the location algebra of spec §3.2/§4.2: the
// identifiers that pin every IR block to the scope it belongs to.
//
// A Location is a non-empty sequence of steps: a single Root step followed by
// zero or more Edge steps, one per traversal taken to reach the scope. Two
// locations compare equal exactly when they describe the same path from the
// query root; the package also defines the prefix relation, parent
// operation, and the deterministic total order spec §4.2 requires for
// reproducible query text across runs.
package location

import (
	"fmt"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/syssam/graphcompiler/schema"
)

// collator provides locale-aware, deterministic string ordering for the
// step encoding below, rather than relying on raw byte comparison, so
// location ordering is stable across more than just ASCII identifiers.
var collator = collate.New(language.Und)

// StepKind distinguishes the two step shapes of spec §3.2.
type StepKind int

// The step kinds.
const (
	RootStep StepKind = iota
	EdgeStep
)

// Step is one element of a Location: either the Root step that opens the
// query's outermost scope, or an Edge step that enters a child scope by
// traversing an edge.
type Step struct {
	Kind StepKind

	// RootStep fields.
	TypeName string

	// EdgeStep fields.
	Direction schema.Direction
	EdgeName  string
	Ordinal   int // disambiguates repeated traversals of the same edge in the same parent
}

// key renders a step into the stable string encoding used for comparison
// and serialization. The encoding is injective: no two distinct steps
// produce the same key.
func (s Step) key() string {
	if s.Kind == RootStep {
		return "R:" + s.TypeName
	}
	return fmt.Sprintf("E:%s:%s:%d", s.Direction, s.EdgeName, s.Ordinal)
}

func (s Step) String() string { return s.key() }

// Location identifies a scope inside an IR query (spec §3.2): a non-empty
// ordered sequence of steps. Location values are immutable and hashable —
// compare them with Equal or use String() as a map key.
type Location struct {
	steps []Step
}

// Root constructs the location of the query's outermost scope.
func Root(typeName string) Location {
	return Location{steps: []Step{{Kind: RootStep, TypeName: typeName}}}
}

// Child extends loc with an Edge step, entering the scope reached by
// traversing edgeName in the given direction. ordinal is the value an
// OrdinalTable assigns for this (parent, direction, edge_name) triple.
func (loc Location) Child(dir schema.Direction, edgeName string, ordinal int) Location {
	steps := make([]Step, len(loc.steps)+1)
	copy(steps, loc.steps)
	steps[len(loc.steps)] = Step{Kind: EdgeStep, Direction: dir, EdgeName: edgeName, Ordinal: ordinal}
	return Location{steps: steps}
}

// Steps returns the location's step sequence. The returned slice must not
// be mutated by the caller.
func (loc Location) Steps() []Step { return loc.steps }

// Depth returns the number of steps (always ≥ 1 for a valid location).
func (loc Location) Depth() int { return len(loc.steps) }

// Parent returns the location with its last step dropped, and false if loc
// is a root location (no parent).
func (loc Location) Parent() (Location, bool) {
	if len(loc.steps) <= 1 {
		return Location{}, false
	}
	return Location{steps: loc.steps[:len(loc.steps)-1]}, true
}

// IsPrefixOf reports whether loc is a prefix of other (loc ⊑ other),
// including the case loc == other.
func (loc Location) IsPrefixOf(other Location) bool {
	if len(loc.steps) > len(other.steps) {
		return false
	}
	for i, s := range loc.steps {
		if s.key() != other.steps[i].key() {
			return false
		}
	}
	return true
}

// Equal reports whether loc and other describe the same path.
func (loc Location) Equal(other Location) bool {
	return len(loc.steps) == len(other.steps) && loc.IsPrefixOf(other)
}

// String renders loc as a stable, human-readable, and collision-free key
// (used for map keys, the IR's stable serialization key, and error paths).
func (loc Location) String() string {
	parts := make([]string, len(loc.steps))
	for i, s := range loc.steps {
		parts[i] = s.key()
	}
	return strings.Join(parts, "/")
}

// Compare returns a negative number if a sorts before b, zero if equal, and
// a positive number otherwise, per the lexicographic total order of spec
// §4.2. Comparison walks step by step; within an edge step, direction is
// compared first, then the edge name with locale-aware collation, then the
// ordinal (root steps compare their type names), so the order is
// deterministic across the full step encoding.
func Compare(a, b Location) int {
	for i := 0; i < len(a.steps) && i < len(b.steps); i++ {
		if c := compareStep(a.steps[i], b.steps[i]); c != 0 {
			return c
		}
	}
	return len(a.steps) - len(b.steps)
}

func compareStep(a, b Step) int {
	if a.Kind != b.Kind {
		return int(a.Kind) - int(b.Kind)
	}
	if a.Kind == RootStep {
		return collator.CompareString(a.TypeName, b.TypeName)
	}
	if a.Direction != b.Direction {
		return int(a.Direction) - int(b.Direction)
	}
	if c := collator.CompareString(a.EdgeName, b.EdgeName); c != 0 {
		return c
	}
	return a.Ordinal - b.Ordinal
}

// Less reports whether a sorts strictly before b.
func Less(a, b Location) bool { return Compare(a, b) < 0 }

// OrdinalTable assigns the ordinals of spec §4.2: a single-pass numbering
// over the surface AST where each parent scope keeps a counter per
// (direction, edge_name) pair, incremented at first use. One OrdinalTable
// is shared across an entire front-end validation pass so ordinals are
// assigned in AST-preorder, guaranteeing reproducible numbering across runs
// on the same query text.
type OrdinalTable struct {
	counts map[string]map[string]int // parent location key -> "dir:edge" -> next ordinal
}

// NewOrdinalTable returns an empty ordinal table.
func NewOrdinalTable() *OrdinalTable {
	return &OrdinalTable{counts: make(map[string]map[string]int)}
}

// Next returns the next ordinal for a traversal of edgeName in direction
// dir from parent, allocating and incrementing the counter as a side
// effect. Calls for the same (parent, dir, edgeName) in AST order yield
// 0, 1, 2, ...
func (t *OrdinalTable) Next(parent Location, dir schema.Direction, edgeName string) int {
	pk := parent.String()
	byEdge, ok := t.counts[pk]
	if !ok {
		byEdge = make(map[string]int)
		t.counts[pk] = byEdge
	}
	ek := dir.String() + ":" + edgeName
	n := byEdge[ek]
	byEdge[ek] = n + 1
	return n
}
