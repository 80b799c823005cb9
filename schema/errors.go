package schema

// Error kinds used as the Kind of cerr.SchemaError values raised while
// constructing or querying a Schema. Kept as plain strings (rather than an
// imported type) so this package has no dependency on the root
// graphcompiler package — schema is a leaf package consumed by every later
// stage (spec §2).
const (
	KindUnknownType      = "unknown_type"
	KindUnknownField     = "unknown_field"
	KindUnknownEdge      = "unknown_edge"
	KindAmbiguousField   = "ambiguous_field"
	KindReservedName     = "reserved_name"
	KindDuplicateField   = "duplicate_field"
	KindBadImplements    = "bad_implements"
	KindDuplicateMember  = "duplicate_union_member"
	KindEmptyUnion       = "empty_union"
	KindUnknownSupertype = "unknown_supertype"
	KindBadConfig        = "bad_config"
	KindBadSDL           = "bad_sdl"
)
