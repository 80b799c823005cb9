package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/optimizer"
	"github.com/syssam/graphcompiler/schema"
)

func buildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	entity := &schema.TypeDef{
		Name: "Entity", Kind: schema.InterfaceType,
		Fields: map[string]*schema.FieldDescriptor{"name": schema.StringField("name").Descriptor()},
	}
	animal := &schema.TypeDef{
		Name: "Animal", Kind: schema.ObjectType, Implements: []string{"Entity"},
		Fields: map[string]*schema.FieldDescriptor{
			"name": schema.StringField("name").Descriptor(),
			"age":  schema.IntField("age").Descriptor(),
			"out_Animal_ParentOf": schema.EdgeTo("out_Animal_ParentOf", "Animal_ParentOf", "Animal"),
		},
	}
	s, err := schema.New([]*schema.TypeDef{entity, animal})
	require.NoError(t, err)
	return s
}

func TestEliminateRedundantCoercion(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	root.Coercions = []string{"Entity", "Animal"}

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	out := optimizer.Optimize(sch, q)
	assert.Empty(t, out.Root.Coercions, "Animal is already a subtype of Entity and of itself")
}

func TestRedundantFilterRemoval(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	root.Filters = []ir.Expr{ir.Literal{Scalar: schema.Bool, Value: true}}

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	out := optimizer.Optimize(sch, q)
	assert.Empty(t, out.Root.Filters)
	assert.False(t, out.Empty)
}

func TestFalseFilterMarksQueryEmpty(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	root.Filters = []ir.Expr{ir.Literal{Scalar: schema.Bool, Value: false}}

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	out := optimizer.Optimize(sch, q)
	assert.True(t, out.Empty)
}

func TestTaggedFilterUnderOptionalIsGuarded(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")

	childLoc := root.Location.Child(schema.Out, "Animal_ParentOf", 0)
	child := root.AddChild(schema.Out, "Animal_ParentOf", childLoc, "Animal", true, false, true)
	child.Marks = append(child.Marks, "parent_name")

	parentNameTag := ir.TagDef{Name: "parent_name", Loc: childLoc, Field: "name", Scalar: schema.String}
	root.Filters = append(root.Filters, ir.Binary{
		Op: ir.OpEq, Left: ir.FieldRef{Loc: root.Location, Field: "name"},
		Right: ir.TagParam{Name: "parent_name", Scalar: schema.String, Source: childLoc},
	})

	q := &ir.Query{
		Root: root,
		Tags: map[string]ir.TagDef{"parent_name": parentNameTag},
		Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
			{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
		}},
	}

	out := optimizer.Optimize(sch, q)
	require.Len(t, out.Root.Filters, 1)
	b, ok := out.Root.Filters[0].(ir.Bool)
	require.True(t, ok)
	assert.Equal(t, ir.ConnImplies, b.Conn)
	require.Len(t, b.Operands, 2)
	_, ok = b.Operands[0].(ir.Presence)
	assert.True(t, ok)
}

func TestFoldCountFilterMarkedPostCollection(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	childLoc := root.Location.Child(schema.Out, "Animal_ParentOf", 0)
	child := root.AddChild(schema.Out, "Animal_ParentOf", childLoc, "Animal", false, true, false)
	child.Fold = &ir.FoldInfo{BeginLoc: root.Location, EndLoc: childLoc}
	child.Filters = append(child.Filters, ir.Binary{
		Op: ir.OpGt, Left: ir.MetaFieldRef{Loc: childLoc, Meta: schema.CountMeta},
		Right: ir.Param{Name: "min_children", Scalar: schema.Int},
	})

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	out := optimizer.Optimize(sch, q)
	var found *ir.Scope
	for _, e := range out.Root.Children {
		found = e.Child
	}
	require.NotNil(t, found)
	_, ok := found.Filters[0].(ir.PostCollection)
	assert.True(t, ok)
}

func TestCanonicalizeOutputOrder(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "zeta", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
		{Name: "alpha", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	out := optimizer.Optimize(sch, q)
	require.Len(t, out.Result.Outputs, 2)
	assert.Equal(t, "alpha", out.Result.Outputs[0].Name)
	assert.Equal(t, "zeta", out.Result.Outputs[1].Name)
}
