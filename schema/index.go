package schema

// IndexBuilder fluently builds an IndexDescriptor, mirroring the teacher's
// index.Fields(...).Unique() DSL.
type IndexBuilder struct {
	desc *IndexDescriptor
}

// NewIndex starts building an index over baseType covering fields, named
// after its base type and columns by default.
func NewIndex(baseType string, fields ...string) *IndexBuilder {
	d := &IndexDescriptor{BaseType: baseType, Fields: fields}
	return &IndexBuilder{desc: d}
}

// Named overrides the default (field-derived) index name.
func (b *IndexBuilder) Named(name string) *IndexBuilder {
	b.desc.Name = name
	return b
}

// Unique marks the index as enforcing uniqueness.
func (b *IndexBuilder) Unique() *IndexBuilder {
	b.desc.Unique = true
	return b
}

// Ordered marks the index as ordered (supports range scans, not just
// equality lookups).
func (b *IndexBuilder) Ordered() *IndexBuilder {
	b.desc.Ordered = true
	return b
}

// IgnoresNulls marks the index as excluding rows where an indexed field is
// null (common for partial unique indexes).
func (b *IndexBuilder) IgnoresNulls() *IndexBuilder {
	b.desc.IgnoresNulls = true
	return b
}

// Descriptor returns the built IndexDescriptor, defaulting Name to the base
// type and field list joined with underscores when none was given via Named.
func (b *IndexBuilder) Descriptor() *IndexDescriptor {
	if b.desc.Name == "" {
		name := b.desc.BaseType
		for _, f := range b.desc.Fields {
			name += "_" + f
		}
		b.desc.Name = name
	}
	return b.desc
}
