package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/schema"
)

func TestFieldBuilderEq(t *testing.T) {
	t.Parallel()
	root := location.Root("Animal")
	expr := ir.On[string](root, "name").Eq("name_value", schema.String)

	bin, ok := expr.(ir.Binary)
	require.True(t, ok)
	assert.Equal(t, ir.OpEq, bin.Op)

	ref, ok := bin.Left.(ir.FieldRef)
	require.True(t, ok)
	assert.Equal(t, "name", ref.Field)

	param, ok := bin.Right.(ir.Param)
	require.True(t, ok)
	assert.Equal(t, "name_value", param.Name)
}

func TestBetweenExpandsThreeOperands(t *testing.T) {
	t.Parallel()
	root := location.Root("Animal")
	expr := ir.On[int](root, "age").Between("lower", "upper", schema.Int)

	between, ok := expr.(ir.Between)
	require.True(t, ok)
	assert.IsType(t, ir.FieldRef{}, between.Value)
	assert.IsType(t, ir.Param{}, between.Lower)
	assert.IsType(t, ir.Param{}, between.Upper)
}

func TestScopeBlocksLinearizesPreorder(t *testing.T) {
	t.Parallel()
	root := ir.NewScope(location.Root("Animal"), "Animal")
	root.Filters = append(root.Filters, ir.On[string](root.Location, "name").Eq("p0", schema.String))

	childLoc := root.Location.Child(schema.Out, "Animal_ParentOf", 0)
	child := root.AddChild(schema.Out, "Animal_ParentOf", childLoc, "Animal", false, false, false)
	child.Filters = append(child.Filters, ir.On[string](child.Location, "name").Eq("p1", schema.String))

	q := &ir.Query{
		Root: root,
		Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
			{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
		}},
	}

	blocks := q.Blocks()
	require.NotEmpty(t, blocks)
	assert.Equal(t, "start:"+root.Location.String()+":Animal", blocks[0].Key())
	assert.Equal(t, "construct_result", blocks[len(blocks)-1].Key())

	var sawTraverse, sawChildFilter bool
	for _, b := range blocks {
		if b.Key() == "filter:"+child.Location.String() {
			sawChildFilter = true
		}
		if in := b.InputLocations(); len(in) == 1 && in[0].Equal(root.Location) {
			out, ok := b.OutputLocation()
			if ok && out.Equal(child.Location) {
				sawTraverse = true
			}
		}
	}
	assert.True(t, sawTraverse, "expected a traverse block from root to child")
	assert.True(t, sawChildFilter, "expected the child's filter block to appear")
}

func TestOptionalRegionWrapsChildSubtree(t *testing.T) {
	t.Parallel()
	root := ir.NewScope(location.Root("Animal"), "Animal")
	childLoc := root.Location.Child(schema.Out, "Animal_ParentOf", 0)
	root.AddChild(schema.Out, "Animal_ParentOf", childLoc, "Animal", true, false, true)

	q := &ir.Query{Root: root, Result: ir.ConstructResult{}}
	blocks := q.Blocks()

	var sawOptionalRegion bool
	for _, b := range blocks {
		if b.Key() == "optional:"+root.Location.String()+".."+childLoc.String() {
			sawOptionalRegion = true
		}
	}
	assert.True(t, sawOptionalRegion)
}

func TestReadFieldsCollectsFromNestedExpr(t *testing.T) {
	t.Parallel()
	loc := location.Root("Animal")
	expr := ir.And(
		ir.On[string](loc, "name").Eq("p0", schema.String),
		ir.On[int](loc, "age").Gt("p1", schema.Int),
	)
	filter := ir.NewScope(loc, "Animal")
	filter.Filters = append(filter.Filters, expr)

	blocks := filter.Blocks()
	var found []string
	for _, b := range blocks {
		found = append(found, b.ReadFields()...)
	}
	assert.Contains(t, found, "name")
	assert.Contains(t, found, "age")
}
