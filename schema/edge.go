package schema

// Edge builders construct vertex FieldDescriptors, mirroring the teacher's
// edge.To/edge.From DSL. A surface query names a vertex field as
// "out_<Edge>" or "in_<Edge>" (spec §8.2's out_Animal_ParentOf); the field
// name here follows the same convention so the front-end can resolve a
// traversed field straight back to (direction, edge name) without any
// extra table.
//
//	schema.EdgeTo("out_Animal_ParentOf", "Animal_ParentOf", "Animal")
//	schema.EdgeFrom("in_Animal_ParentOf", "Animal_ParentOf", "Animal")

// EdgeTo declares a field for the Out direction of edgeName, leading to
// targetType.
func EdgeTo(fieldName, edgeName, targetType string) *FieldDescriptor {
	return &FieldDescriptor{
		Name: fieldName, Kind: VertexField,
		Direction: Out, EdgeName: edgeName, TargetType: targetType,
	}
}

// EdgeFrom declares a field for the In direction of edgeName, leading to
// targetType.
func EdgeFrom(fieldName, edgeName, targetType string) *FieldDescriptor {
	return &FieldDescriptor{
		Name: fieldName, Kind: VertexField,
		Direction: In, EdgeName: edgeName, TargetType: targetType,
	}
}

// SplitEdgeField splits a surface vertex-field name like
// "out_Animal_ParentOf" into its direction and schema edge name. It
// returns ok=false if fieldName does not carry a recognized prefix.
func SplitEdgeField(fieldName string) (dir Direction, edgeName string, ok bool) {
	const outPrefix, inPrefix = "out_", "in_"
	switch {
	case len(fieldName) > len(outPrefix) && fieldName[:len(outPrefix)] == outPrefix:
		return Out, fieldName[len(outPrefix):], true
	case len(fieldName) > len(inPrefix) && fieldName[:len(inPrefix)] == inPrefix:
		return In, fieldName[len(inPrefix):], true
	default:
		return 0, "", false
	}
}
