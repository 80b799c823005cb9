package sql_test

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphcompiler/cerr"
	esql "github.com/syssam/graphcompiler/emitter/sql"
	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/schema"
)

func buildSchema(t *testing.T) *schema.Schema {
	t.Helper()
	animal := &schema.TypeDef{
		Name: "Animal", Kind: schema.ObjectType,
		Fields: map[string]*schema.FieldDescriptor{
			"name": schema.StringField("name").Descriptor(),
			"age":  schema.IntField("age").Descriptor(),
			"out_Animal_ParentOf": schema.EdgeTo("out_Animal_ParentOf", "Animal_ParentOf", "Animal"),
			"in_Animal_ParentOf":  schema.EdgeFrom("in_Animal_ParentOf", "Animal_ParentOf", "Animal"),
		},
	}
	s, err := schema.New([]*schema.TypeDef{animal})
	require.NoError(t, err)
	return s
}

func TestEmitJoinsOnForeignKeyColumn(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	root.Filters = []ir.Expr{ir.Binary{
		Op: ir.OpEq, Left: ir.FieldRef{Loc: root.Location, Field: "name"},
		Right: ir.Param{Name: "animal_name", Scalar: schema.String},
	}}
	childLoc := root.Location.Child(schema.Out, "Animal_ParentOf", 0)
	root.AddChild(schema.Out, "Animal_ParentOf", childLoc, "Animal", false, false, false)

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	res, err := esql.Emit(sch, q, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "LEFT JOIN animals t1 ON t0.Animal_ParentOf_id = t1.id")
	assert.Contains(t, res.Text, "t0.name = :animal_name")
	require.Len(t, res.Parameters, 1)
}

func TestEmitJoinsOnEdgeTableForInDirection(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	childLoc := root.Location.Child(schema.In, "Animal_ParentOf", 0)
	root.AddChild(schema.In, "Animal_ParentOf", childLoc, "Animal", false, false, false)

	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	res, err := esql.Emit(sch, q, nil)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "_edges")
	assert.Contains(t, res.Text, "dst_id = t0.id")
}

// TestEmitTextIsQueryableThroughDriver exercises the emitted SQL the way a
// caller's database/sql driver would: registering it as an expected query
// and reading back rows. sqlmock matches by regexp, not a SQL parser, so
// this only confirms the text round-trips through the driver layer, not
// full grammar validity.
func TestEmitTextIsQueryableThroughDriver(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	q := &ir.Query{Root: root, Result: ir.ConstructResult{Outputs: []ir.OutputSpec{
		{Name: "name", Value: ir.FieldRef{Loc: root.Location, Field: "name"}},
	}}}

	res, err := esql.Emit(sch, q, nil)
	require.NoError(t, err)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(res.Text)).WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("rex"))
	rows, err := db.Query(res.Text)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var name string
	require.NoError(t, rows.Scan(&name))
	assert.Equal(t, "rex", name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmitRejectsRecurse(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	root.Recurse = &ir.RecurseInfo{Direction: schema.Out, EdgeName: "Animal_ParentOf", Depth: 3}
	q := &ir.Query{Root: root, Result: ir.ConstructResult{}}

	_, err := esql.Emit(sch, q, nil)
	require.Error(t, err)
	assert.True(t, cerr.IsUnsupportedFeature(err))
}

func TestEmitRejectsOutputSource(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	root.OutputSource = true
	q := &ir.Query{Root: root, Result: ir.ConstructResult{}}

	_, err := esql.Emit(sch, q, nil)
	require.Error(t, err)
	assert.True(t, cerr.IsUnsupportedFeature(err))
}

func TestEmitRejectsNameOrAlias(t *testing.T) {
	t.Parallel()
	sch := buildSchema(t)
	root := ir.NewScope(location.Root("Animal"), "Animal")
	root.Filters = []ir.Expr{ir.NameOrAlias{Loc: root.Location, Value: ir.Param{Name: "q", Scalar: schema.String}}}
	q := &ir.Query{Root: root, Result: ir.ConstructResult{}}

	_, err := esql.Emit(sch, q, nil)
	require.Error(t, err)
	assert.True(t, cerr.IsUnsupportedFeature(err))
}
