package graph_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphcompiler/emitter/graph"
	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/schema"
)

func TestEmitSimpleTraversalWithFilter(t *testing.T) {
	t.Parallel()
	root := ir.NewScope(location.Root("Animal"), "Animal")
	root.Filters = []ir.Expr{ir.Binary{
		Op: ir.OpEq, Left: ir.FieldRef{Loc: root.Location, Field: "name"},
		Right: ir.Param{Name: "animal_name", Scalar: schema.String},
	}}

	childLoc := root.Location.Child(schema.Out, "Animal_ParentOf", 0)
	child := root.AddChild(schema.Out, "Animal_ParentOf", childLoc, "Animal", false, false, false)
	child.Filters = []ir.Expr{ir.Binary{
		Op: ir.OpGt, Left: ir.FieldRef{Loc: childLoc, Field: "age"},
		Right: ir.Param{Name: "min_age", Scalar: schema.Int},
	}}

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
		{Name: "child_name", Value: ir.FieldRef{Loc: childLoc, Field: "name"}},
	}}}

	res, err := graph.Emit(q)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "MATCH")
	assert.Contains(t, res.Text, ".out('Animal_ParentOf')")
	assert.Contains(t, res.Text, "where: ((Animal___1.name = :animal_name))")
	assert.Contains(t, res.Text, "where: ((Animal___2.age > :min_age))")
	require.Len(t, res.Parameters, 2)
	assert.Equal(t, "animal_name", res.Parameters[0].Name)
	assert.Equal(t, "min_age", res.Parameters[1].Name)
	require.Len(t, res.Outputs, 2)
}

func TestEmitSimpleOptionalAddsModifier(t *testing.T) {
	t.Parallel()
	root := ir.NewScope(location.Root("Animal"), "Animal")
	childLoc := root.Location.Child(schema.Out, "Animal_ParentOf", 0)
	root.AddChild(schema.Out, "Animal_ParentOf", childLoc, "Animal", true, false, true)

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	res, err := graph.Emit(q)
	require.NoError(t, err)
	assert.Contains(t, res.Text, ".optional()")
}

func TestEmitCompoundOptionalUsesUnionRewrite(t *testing.T) {
	t.Parallel()
	root := ir.NewScope(location.Root("Animal"), "Animal")
	childLoc := root.Location.Child(schema.Out, "Animal_ParentOf", 0)
	child := root.AddChild(schema.Out, "Animal_ParentOf", childLoc, "Animal", true, false, true)
	grandchildLoc := childLoc.Child(schema.Out, "Animal_ParentOf", 0)
	child.AddChild(schema.Out, "Animal_ParentOf", grandchildLoc, "Animal", false, false, true)

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	res, err := graph.Emit(q)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "UNIONALL")
	assert.Contains(t, res.Text, "$optional__0")
	assert.Contains(t, res.Text, "$optional__1")
}

// TestEmitNestedOptionalCountsBothLevels reproduces spec §8.2 scenario 3:
// an @optional with no further vertex expansion of its own, nested beneath
// another @optional, still contributes to n — 2^2 = 4 alternatives, not 2.
func TestEmitNestedOptionalCountsBothLevels(t *testing.T) {
	t.Parallel()
	root := ir.NewScope(location.Root("Animal"), "Animal")
	outerLoc := root.Location.Child(schema.Out, "Animal_ParentOf", 0)
	outer := root.AddChild(schema.Out, "Animal_ParentOf", outerLoc, "Animal", true, false, true)
	innerLoc := outerLoc.Child(schema.In, "Animal_ParentOf", 0)
	outer.AddChild(schema.In, "Animal_ParentOf", innerLoc, "Animal", true, false, true)

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "a", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	res, err := graph.Emit(q)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "UNIONALL")
	for i := 0; i < 4; i++ {
		assert.Contains(t, res.Text, fmt.Sprintf("$optional__%d", i))
	}
	assert.NotContains(t, res.Text, "$optional__4")
}

func TestEmitRecurseBoundedDepth(t *testing.T) {
	t.Parallel()
	root := ir.NewScope(location.Root("Animal"), "Animal")
	root.Recurse = &ir.RecurseInfo{Direction: schema.Out, EdgeName: "Animal_ParentOf", Depth: 3}

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	res, err := graph.Emit(q)
	require.NoError(t, err)
	assert.Contains(t, res.Text, ".out('Animal_ParentOf'){0,3}")
}

func TestEmitFoldCountFilterStaysPostCollection(t *testing.T) {
	t.Parallel()
	root := ir.NewScope(location.Root("Animal"), "Animal")
	childLoc := root.Location.Child(schema.Out, "Animal_ParentOf", 0)
	child := root.AddChild(schema.Out, "Animal_ParentOf", childLoc, "Animal", false, true, false)
	child.Fold = &ir.FoldInfo{BeginLoc: root.Location, EndLoc: childLoc}
	child.Filters = []ir.Expr{ir.PostCollection{Inner: ir.Binary{
		Op: ir.OpGt, Left: ir.MetaFieldRef{Loc: childLoc, Meta: schema.CountMeta},
		Right: ir.Param{Name: "min_children", Scalar: schema.Int},
	}}}

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	res, err := graph.Emit(q)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Animal___2.size() > :min_children")
}
