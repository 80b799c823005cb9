package schema

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/syssam/graphcompiler/cerr"
)

// builtinScalars maps GraphQL SDL named types to ScalarKind, covering both
// the built-in GraphQL scalars and the custom scalars spec §6.2(b) adds:
// Date, DateTime, Decimal.
var builtinScalars = map[string]ScalarKind{
	"ID":       Id,
	"Int":      Int,
	"Float":    Float,
	"Boolean":  Bool,
	"String":   String,
	"Date":     Date,
	"DateTime": DateTime,
	"Decimal":  Decimal,
}

// Load builds a Schema from a parsed GraphQL SDL document plus its YAML
// Config extension (spec §6.2). sdl is typically produced by parsing SDL
// text with github.com/vektah/gqlparser/v2/parser.ParseSchema — that
// parser is the external, opaque SDL consumer spec §1 describes; Load only
// walks its already-validated *ast.SchemaDocument.
func Load(sdl *ast.SchemaDocument, cfg *Config) (*Schema, error) {
	var types []*TypeDef
	for _, def := range sdl.Definitions {
		switch def.Kind {
		case ast.Object, ast.Interface:
			kind := ObjectType
			if def.Kind == ast.Interface {
				kind = InterfaceType
			}
			t := newTypeDef(def.Name, kind)
			for _, iface := range def.Interfaces {
				t.Implements = append(t.Implements, iface)
			}
			for _, f := range def.Fields {
				if f.Name == TypenameMeta || f.Name == CountMeta {
					continue // always injected by ListMetaFields, never user-declared
				}
				fd, err := fieldFromAST(f)
				if err != nil {
					return nil, err
				}
				t.Fields[fd.Name] = fd
			}
			types = append(types, t)
		case ast.Union:
			t := newTypeDef(def.Name, UnionType)
			t.Members = append(t.Members, def.Types...)
			types = append(types, t)
		case ast.Scalar, ast.Enum, ast.InputObject:
			// Not part of the vertex/property/edge model; ignored.
		}
	}
	if cfg == nil {
		cfg = &Config{}
	}
	return New(types, cfg.Options()...)
}

// ParseSDL is a convenience wrapper around
// github.com/vektah/gqlparser/v2/parser.ParseSchema for callers that hold
// raw SDL text rather than an already-parsed document.
func ParseSDL(name, source string) (*ast.SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, cerr.NewSchemaError(KindBadSDL, "", err.Error())
	}
	return doc, nil
}

func fieldFromAST(f *ast.FieldDefinition) (*FieldDescriptor, error) {
	typ := f.Type
	list := false
	if typ.Elem != nil {
		list = true
		typ = typ.Elem
	}
	if kind, ok := builtinScalars[typ.NamedType]; ok {
		return &FieldDescriptor{Name: f.Name, Kind: PropertyField, Scalar: kind, ListKind: list}, nil
	}
	dir, edgeName, ok := SplitEdgeField(f.Name)
	if !ok {
		return nil, cerr.NewSchemaError(KindBadSDL, "", "field "+f.Name+" is neither a known scalar nor an out_/in_ edge field")
	}
	return &FieldDescriptor{
		Name: f.Name, Kind: VertexField,
		Direction: dir, EdgeName: edgeName, TargetType: typ.NamedType,
	}, nil
}
