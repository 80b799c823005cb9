package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/graphcompiler/cerr"
	"github.com/syssam/graphcompiler/schema"
)

func animalSchema(t *testing.T) *schema.Schema {
	t.Helper()

	entity := &schema.TypeDef{
		Name: "Entity",
		Kind: schema.InterfaceType,
		Fields: map[string]*schema.FieldDescriptor{
			"name": schema.StringField("name").Descriptor(),
		},
	}
	animal := &schema.TypeDef{
		Name:       "Animal",
		Kind:       schema.ObjectType,
		Implements: []string{"Entity"},
		Fields: map[string]*schema.FieldDescriptor{
			"name": schema.StringField("name").Descriptor(),
			"age":  schema.IntField("age").Descriptor(),
			"out_Animal_ParentOf": schema.EdgeTo("out_Animal_ParentOf", "Animal_ParentOf", "Animal"),
			"in_Animal_ParentOf":  schema.EdgeFrom("in_Animal_ParentOf", "Animal_ParentOf", "Animal"),
		},
	}
	person := &schema.TypeDef{
		Name:       "Person",
		Kind:       schema.ObjectType,
		Implements: []string{"Entity"},
		Fields: map[string]*schema.FieldDescriptor{
			"name": schema.StringField("name").Descriptor(),
		},
	}
	named := &schema.TypeDef{
		Name:    "Named",
		Kind:    schema.UnionType,
		Members: []string{"Animal", "Person"},
	}

	s, err := schema.New(
		[]*schema.TypeDef{entity, animal, person, named},
		schema.WithEquivalence("Animal", "Named"),
		schema.WithRoot("Animal", "Person"),
		schema.WithIndexes(schema.NewIndex("Animal", "name").Unique().Descriptor()),
	)
	require.NoError(t, err)
	return s
}

func TestNewRejectsDuplicateType(t *testing.T) {
	t.Parallel()
	dup := &schema.TypeDef{Name: "Animal", Kind: schema.ObjectType, Fields: map[string]*schema.FieldDescriptor{}}
	_, err := schema.New([]*schema.TypeDef{dup, dup})
	require.Error(t, err)
}

func TestNewRejectsReservedFieldName(t *testing.T) {
	t.Parallel()
	bad := &schema.TypeDef{
		Name: "Animal",
		Kind: schema.ObjectType,
		Fields: map[string]*schema.FieldDescriptor{
			"___hidden": schema.StringField("___hidden").Descriptor(),
		},
	}
	_, err := schema.New([]*schema.TypeDef{bad})
	require.Error(t, err)
	assert.True(t, cerr.IsSchemaError(err))
}

func TestNewRejectsUnknownUnionMember(t *testing.T) {
	t.Parallel()
	u := &schema.TypeDef{Name: "Named", Kind: schema.UnionType, Members: []string{"Ghost"}}
	_, err := schema.New([]*schema.TypeDef{u})
	require.Error(t, err)
}

func TestIsSubtype(t *testing.T) {
	t.Parallel()
	s := animalSchema(t)

	assert.True(t, s.IsSubtype("Animal", "Entity"))
	assert.True(t, s.IsSubtype("Animal", "Named"))
	assert.True(t, s.IsSubtype("Animal", "Animal"))
	assert.True(t, s.IsSubtype("Person", "Named"))
	assert.False(t, s.IsSubtype("Entity", "Named"))
}

func TestFieldInheritedFromInterface(t *testing.T) {
	t.Parallel()
	s := animalSchema(t)

	fd, err := s.Field("Person", "name")
	require.NoError(t, err)
	assert.Equal(t, schema.PropertyField, fd.Kind)
	assert.Equal(t, schema.String, fd.Scalar)
}

func TestFieldUnknown(t *testing.T) {
	t.Parallel()
	s := animalSchema(t)

	_, err := s.Field("Animal", "nope")
	require.Error(t, err)
	assert.True(t, cerr.IsSchemaError(err))
}

func TestResolveEdge(t *testing.T) {
	t.Parallel()
	s := animalSchema(t)

	child, kind, err := s.ResolveEdge("Animal", schema.Out, "Animal_ParentOf")
	require.NoError(t, err)
	assert.Equal(t, "Animal", child)
	assert.Equal(t, schema.EdgeDirect, kind)

	_, _, err = s.ResolveEdge("Animal", schema.Out, "NoSuchEdge")
	require.Error(t, err)
}

func TestEquivalentUnionOf(t *testing.T) {
	t.Parallel()
	s := animalSchema(t)

	union, ok := s.EquivalentUnionOf("Animal")
	require.True(t, ok)
	assert.Equal(t, "Named", union)

	_, ok = s.EquivalentUnionOf("Person")
	assert.False(t, ok)
}

func TestListMetaFieldsAlwaysPresent(t *testing.T) {
	t.Parallel()
	s := animalSchema(t)

	metas := s.ListMetaFields("Animal")
	require.Len(t, metas, 2)
	assert.Equal(t, schema.TypenameMeta, metas[0].Name)
	assert.Equal(t, schema.CountMeta, metas[1].Name)
}

func TestIndexesAndRootAndTypeNames(t *testing.T) {
	t.Parallel()
	s := animalSchema(t)

	require.Len(t, s.Indexes(), 1)
	assert.Equal(t, "Animal_name", s.Indexes()[0].Name)
	assert.ElementsMatch(t, []string{"Animal", "Person"}, s.Root())
	assert.Equal(t, []string{"Animal", "Entity", "Named", "Person"}, s.TypeNames())
}

func TestTableProjection(t *testing.T) {
	t.Parallel()
	s := animalSchema(t)

	tbl, err := s.Table("Animal", func(n string) string { return n })
	require.NoError(t, err)
	assert.Equal(t, "Animal", tbl.Name)

	names := make([]string, len(tbl.Columns))
	for i, c := range tbl.Columns {
		names[i] = c.Name
	}
	assert.Contains(t, names, "id")
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "age")
	assert.Contains(t, names, "Animal_ParentOf_id")
	assert.NotContains(t, names, "in_Animal_ParentOf_id")
}

func TestLoadFromSDL(t *testing.T) {
	t.Parallel()
	doc, err := schema.ParseSDL("test.graphql", `
		interface Entity {
			name: String
		}
		type Animal implements Entity {
			name: String
			age: Int
			out_Animal_ParentOf: Animal
			in_Animal_ParentOf: Animal
		}
		type Person implements Entity {
			name: String
		}
		union Named = Animal | Person
	`)
	require.NoError(t, err)

	s, err := schema.Load(doc, &schema.Config{
		Equivalence: map[string]string{"Animal": "Named"},
		Root:        []string{"Animal", "Person"},
	})
	require.NoError(t, err)

	fd, err := s.Field("Animal", "out_Animal_ParentOf")
	require.NoError(t, err)
	assert.Equal(t, schema.VertexField, fd.Kind)
	assert.Equal(t, schema.Out, fd.Direction)
	assert.Equal(t, "Animal_ParentOf", fd.EdgeName)
}

func TestLoadConfigFromYAML(t *testing.T) {
	t.Parallel()
	cfg, err := schema.LoadConfig([]byte(`
equivalence:
  Animal: Named
root:
  - Animal
  - Person
indexes:
  - base_type: Animal
    fields: ["name"]
    unique: true
`))
	require.NoError(t, err)
	assert.Equal(t, "Named", cfg.Equivalence["Animal"])
	assert.ElementsMatch(t, []string{"Animal", "Person"}, cfg.Root)
	require.Len(t, cfg.Indexes, 1)
	assert.True(t, cfg.Indexes[0].Unique)
}
