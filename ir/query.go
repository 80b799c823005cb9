package ir

import (
	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/schema"
)

// OutputSpec describes one declared @output: its name, the expression that
// produces its value, whether it is list-valued (inside a Fold), and
// whether its value can be absent (its field sits within an
// OptionalRegion, spec §6.3/§8.1.4).
type OutputSpec struct {
	Name     string
	Value    Expr
	List     bool
	Nullable bool
	Scalar   ScalarHint
}

// ScalarHint is the inferred scalar-or-meta kind of an output or tag: either
// a schema scalar kind, or one of the two meta fields (__typename,
// _x_count), which have no ScalarKind of their own.
type ScalarHint struct {
	IsTypename bool
	IsCount    bool
	Scalar     schema.ScalarKind
}

// Resolved returns the scalar kind an emitter should report for this hint:
// _x_count is always schema.Int (spec §8.2 scenario 4), independent of the
// counted field's own scalar kind.
func (h ScalarHint) Resolved() schema.ScalarKind {
	if h.IsCount {
		return schema.Int
	}
	return h.Scalar
}

// TagDef records a @tag declaration: its name and the location/field pair
// it was marked at (used by the front-end to resolve %name references and
// by the optimizer's guarding pass to test source presence).
type TagDef struct {
	Name   string
	Loc    location.Location
	Field  string
	Scalar schema.ScalarKind
}

// ConstructResult is the terminal block of every IR query (spec §3.3): the
// row shape assembled from one or more OutputSpecs.
type ConstructResult struct {
	Outputs []OutputSpec
}

type constructResultBlock struct{ result ConstructResult }

func (b constructResultBlock) InputLocations() []location.Location { return nil }
func (b constructResultBlock) OutputLocation() (location.Location, bool) {
	return location.Location{}, false
}
func (b constructResultBlock) ReadFields() []string {
	var out []string
	for _, o := range b.result.Outputs {
		out = append(out, readFields(o.Value)...)
	}
	return out
}
func (b constructResultBlock) Key() string { return "construct_result" }

// Query is a fully validated and (after C5) optimized IR tree: the root
// scope, the query-wide tag declarations, and the terminal ConstructResult.
type Query struct {
	Root   *Scope
	Tags   map[string]TagDef
	Result ConstructResult

	// Empty is set by the optimizer's redundant-filter pass (spec
	// §4.5.2) when a conjunction short-circuits to false: the query is
	// known at compile time to match no rows.
	Empty bool
}

// Blocks linearizes the entire query, appending the terminal
// ConstructResult block after the root scope's own linearization.
func (q *Query) Blocks() []Block {
	blocks := q.Root.Blocks()
	blocks = append(blocks, constructResultBlock{result: q.Result})
	return blocks
}
