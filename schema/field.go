package schema

// Field builders construct the property FieldDescriptors used in a
// programmatically-built schema (§3.5: "constructed programmatically by
// calls into the schema-model constructor"). They mirror the teacher's
// fluent field.String()/field.Int()-style DSL, but build FieldDescriptor
// values directly instead of codegen metadata, since this compiler never
// generates Go source.
//
//	schema.NewField("name", schema.String)
//	schema.NewField("alias", schema.String).AsList()

// FieldBuilder fluently builds a property FieldDescriptor.
type FieldBuilder struct {
	desc *FieldDescriptor
}

// NewField starts building a property field named name with the given
// scalar kind.
func NewField(name string, kind ScalarKind) *FieldBuilder {
	return &FieldBuilder{desc: &FieldDescriptor{Name: name, Kind: PropertyField, Scalar: kind}}
}

// AsList marks the field as list-of-scalar (spec §3.1).
func (b *FieldBuilder) AsList() *FieldBuilder {
	b.desc.ListKind = true
	return b
}

// Descriptor returns the built FieldDescriptor.
func (b *FieldBuilder) Descriptor() *FieldDescriptor { return b.desc }

// Convenience constructors for each scalar kind, named after the kind the
// way the teacher's field package names constructors after Go/DB types.

func IDField(name string) *FieldBuilder       { return NewField(name, Id) }
func IntField(name string) *FieldBuilder      { return NewField(name, Int) }
func FloatField(name string) *FieldBuilder    { return NewField(name, Float) }
func BoolField(name string) *FieldBuilder     { return NewField(name, Bool) }
func StringField(name string) *FieldBuilder   { return NewField(name, String) }
func DateField(name string) *FieldBuilder     { return NewField(name, Date) }
func DateTimeField(name string) *FieldBuilder { return NewField(name, DateTime) }
func DecimalField(name string) *FieldBuilder  { return NewField(name, Decimal) }
