// Package optimizer implements the IR lowering passes of spec §4.5, run to
// fixpoint in the declared order before the output-name canonicalization
// pass runs exactly once at the end.
package optimizer

import (
	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/schema"
)

// Optimize applies the five passes of spec §4.5 to q, returning the
// rewritten query. The passes rewrite q's scopes in place, and the
// returned value is q itself.
func Optimize(sch *schema.Schema, q *ir.Query) *ir.Query {
	for {
		changed := false
		q, changed = eliminateCoercions(sch, q)
		var c2, c3, c4 bool
		q, c2 = removeRedundantFilters(q)
		q, c3 = guardTaggedFiltersUnderOptional(q)
		q, c4 = markPostCollectionFoldFilters(q)
		if !(changed || c2 || c3 || c4) {
			break
		}
		if q.Empty {
			break
		}
	}
	q = canonicalizeOutputOrder(q)
	return q
}

func mapScopes(s *ir.Scope, f func(*ir.Scope) bool) bool {
	changed := f(s)
	for _, e := range s.Children {
		if mapScopes(e.Child, f) {
			changed = true
		}
	}
	return changed
}
