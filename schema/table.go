package schema

import (
	"sort"

	atlas "ariga.io/atlas/sql/schema"
)

// scalarColumnType maps a ScalarKind to the atlas column type used for the
// relational projection (spec §4.7's "table model"). The types are
// dialect-agnostic: atlas only carries the shape, and no DDL is rendered
// from them here.
func scalarColumnType(k ScalarKind, list bool) atlas.Type {
	if list {
		return &atlas.JSONType{T: "json"}
	}
	switch k {
	case Id:
		return &atlas.IntegerType{T: "bigint"}
	case Int:
		return &atlas.IntegerType{T: "int"}
	case Float, Decimal:
		return &atlas.DecimalType{T: "decimal", Precision: 18, Scale: 4}
	case Bool:
		return &atlas.BoolType{T: "boolean"}
	case Date:
		return &atlas.TimeType{T: "date"}
	case DateTime:
		return &atlas.TimeType{T: "timestamp"}
	default:
		return &atlas.StringType{T: "varchar", Size: 255}
	}
}

// Table projects one object or interface TypeDef into an atlas table model:
// an "id" primary key, one column per property field, and one
// nullable "<edge>_id" column per Out vertex field, named after the schema
// edge name (the same column the SQL emitter's join planner joins on). No
// atlas foreign-key constraint is attached. In-direction edges have no
// column of their own and are resolved by the join planner instead.
func (s *Schema) Table(typeName string, named func(typeName string) string) (*atlas.Table, error) {
	t, err := s.LookupType(typeName)
	if err != nil {
		return nil, err
	}
	tbl := atlas.NewTable(named(typeName))
	idCol := atlas.NewColumn("id").SetType(&atlas.IntegerType{T: "bigint"})
	tbl.AddColumns(idCol)
	tbl.SetPrimaryKey(atlas.NewPrimaryKey(idCol))

	names := make([]string, 0, len(t.Fields))
	for n := range t.Fields {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		f := t.Fields[n]
		switch f.Kind {
		case PropertyField:
			col := atlas.NewColumn(n).
				SetType(scalarColumnType(f.Scalar, f.ListKind)).
				SetNull(true)
			tbl.AddColumns(col)
		case VertexField:
			if f.Direction != Out {
				continue // in-edges have no column; the join planner resolves them
			}
			col := atlas.NewColumn(f.EdgeName + "_id").
				SetType(&atlas.IntegerType{T: "bigint"}).
				SetNull(true)
			tbl.AddColumns(col)
		}
	}
	return tbl, nil
}
