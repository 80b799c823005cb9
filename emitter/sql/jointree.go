package sql

import (
	"fmt"

	"github.com/syssam/graphcompiler/cerr"
	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/schema"
)

// joinPlan is the flattened relational counterpart of an ir.Scope tree: one
// tableRef per scope, joined to its parent by the edge that reached it.
type joinPlan struct {
	byLoc map[string]tableRef
}

type tableRef struct {
	alias string
	table string
	loc   location.Location
}

// joinStep describes one JOIN clause needed to reach a scope from its
// parent, in terms of real column names on real tables.
type joinStep struct {
	kind                 string // "fk" or "edge_table"
	parentAlias          string
	childAlias           string
	childTable           string
	fkColumn                    string // parentAlias.fkColumn = childAlias.id, when kind == "fk"
	edgeTable, edgeSrc, edgeDst string
}

// buildJoinPlan walks sch and q.Root, assigning one table alias per scope
// and recording how each non-root scope joins to its parent.
func buildJoinPlan(sch *schema.Schema, q *ir.Query, tableName func(string) string) (*joinPlan, []joinStep, error) {
	plan := &joinPlan{byLoc: map[string]tableRef{}}
	var steps []joinStep
	n := 0
	next := func(typeName string, loc location.Location) tableRef {
		ref := tableRef{alias: fmt.Sprintf("t%d", n), table: tableName(typeName), loc: loc}
		n++
		plan.byLoc[loc.String()] = ref
		return ref
	}

	root := next(q.Root.TypeName, q.Root.Location)

	var walk func(parent tableRef, s *ir.Scope) error
	walk = func(parent tableRef, s *ir.Scope) error {
		for _, edge := range s.Children {
			if _, _, err := sch.ResolveEdge(s.TypeName, edge.Direction, edge.EdgeName); err != nil {
				return err
			}
			child := next(edge.Child.TypeName, edge.Child.Location)
			if edge.Direction == schema.Out {
				steps = append(steps, joinStep{
					kind: "fk", parentAlias: parent.alias, childAlias: child.alias,
					childTable: child.table, fkColumn: edge.EdgeName + "_id",
				})
			} else {
				steps = append(steps, joinStep{
					kind: "edge_table", parentAlias: parent.alias, childAlias: child.alias,
					childTable: child.table, edgeTable: edgeTableName(edge.EdgeName),
					edgeSrc: "src_id", edgeDst: "dst_id",
				})
			}
			if err := walk(child, edge.Child); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, q.Root); err != nil {
		return nil, nil, err
	}
	return plan, steps, nil
}

func (p *joinPlan) alias(loc location.Location) (string, error) {
	ref, ok := p.byLoc[loc.String()]
	if !ok {
		return "", cerr.NewInternalError("no table alias for location "+loc.String(), nil)
	}
	return ref.alias, nil
}
