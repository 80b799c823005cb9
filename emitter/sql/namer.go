package sql

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// DefaultTableName derives a relational table name from a schema type name,
// the way the teacher's codegen names generated tables: snake_case and
// pluralized (User -> users, ParentOf -> parent_ofs).
func DefaultTableName(typeName string) string {
	return inflect.Pluralize(underscore(typeName))
}

// edgeTableName names the generic adjacency table backing an in-direction
// edge, which has no dedicated foreign-key column: one row per
// (src_id, dst_id) pair.
func edgeTableName(edgeName string) string {
	return underscore(edgeName) + "_edges"
}

func underscore(s string) string {
	return strings.ToLower(inflect.Underscore(s))
}
