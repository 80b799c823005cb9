package optimizer

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/schema"
)

var collator = collate.New(language.Und)

// eliminateCoercions implements spec §4.5 pass 1: a Coerce(ToType) is
// dropped if the scope's current type is already a subtype of ToType, or
// ToType is the type-equivalence union of the current type.
func eliminateCoercions(sch *schema.Schema, q *ir.Query) (*ir.Query, bool) {
	changed := mapScopes(q.Root, func(s *ir.Scope) bool {
		kept := s.Coercions[:0]
		localChanged := false
		for _, toType := range s.Coercions {
			redundant := sch.IsSubtype(s.TypeName, toType)
			if !redundant {
				if union, ok := sch.EquivalentUnionOf(s.TypeName); ok && union == toType {
					redundant = true
				}
			}
			if redundant {
				localChanged = true
				continue
			}
			kept = append(kept, toType)
		}
		s.Coercions = kept
		return localChanged
	})
	return q, changed
}

// removeRedundantFilters implements spec §4.5 pass 2: filters that are
// literally true are dropped; a literal false marks the whole query empty.
func removeRedundantFilters(q *ir.Query) (*ir.Query, bool) {
	changed := mapScopes(q.Root, func(s *ir.Scope) bool {
		kept := s.Filters[:0]
		localChanged := false
		for _, f := range s.Filters {
			if lit, ok := f.(ir.Literal); ok {
				if b, ok := lit.Value.(bool); ok {
					localChanged = true
					if !b {
						q.Empty = true
					}
					continue
				}
			}
			kept = append(kept, f)
		}
		s.Filters = kept
		return localChanged
	})
	return q, changed
}

// guardTaggedFiltersUnderOptional implements spec §4.5 pass 3: a %tag
// reference whose source scope is within an OptionalRegion is wrapped so
// the filter reads "source_present ⇒ predicate", with between(lower,
// %tag) expanding to "value >= lower AND (source_present ⇒ value <=
// %tag)" per spec's explicit example.
func guardTaggedFiltersUnderOptional(q *ir.Query) (*ir.Query, bool) {
	changed := mapScopes(q.Root, func(s *ir.Scope) bool {
		var rewrote bool
		for i, f := range s.Filters {
			nf, did := guardExpr(q, f)
			if did {
				rewrote = true
				s.Filters[i] = nf
			}
		}
		return rewrote
	})
	return q, changed
}

// guardExpr wraps tagged-filter-under-optional operands in an implication,
// guided by guarded: the set of tag-source locations (by Location.String())
// already covered by an enclosing Implies in this expression. Re-entering an
// already-guarded operand (the Bool case unwraps an Implies it just built on
// a prior pass and recurses into its consequent) must not rewrap it, or
// Optimize's fixpoint loop never reaches a stable point.
func guardExpr(q *ir.Query, e ir.Expr) (ir.Expr, bool) {
	return guardExprGuarded(q, e, nil)
}

func guardExprGuarded(q *ir.Query, e ir.Expr, guarded map[string]bool) (ir.Expr, bool) {
	switch v := e.(type) {
	case ir.Between:
		// spec's explicit example: between(lower, %tag) expands to
		// value >= lower AND (source_present ⇒ value <= %tag). Only
		// the upper bound is guarded because the example names the
		// tagged operand as the upper bound; a tagged lower bound
		// guards symmetrically.
		lowerSrc, lowerOptional := taggedSourceLoc(q, v.Lower)
		lowerOptional = lowerOptional && !guarded[lowerSrc.String()]
		upperSrc, upperOptional := taggedSourceLoc(q, v.Upper)
		upperOptional = upperOptional && !guarded[upperSrc.String()]
		if !lowerOptional && !upperOptional {
			return e, false
		}
		lowerPred := ir.Expr(ir.Binary{Op: ir.OpGte, Left: v.Value, Right: v.Lower})
		if lowerOptional {
			lowerPred = ir.Implies(ir.Presence{Loc: lowerSrc}, lowerPred)
		}
		upperPred := ir.Expr(ir.Binary{Op: ir.OpLte, Left: v.Value, Right: v.Upper})
		if upperOptional {
			upperPred = ir.Implies(ir.Presence{Loc: upperSrc}, upperPred)
		}
		return ir.And(lowerPred, upperPred), true
	case ir.Binary:
		if src, optional := taggedSourceLoc(q, v.Right); optional && !guarded[src.String()] {
			return ir.Implies(ir.Presence{Loc: src}, v), true
		}
		if src, optional := taggedSourceLoc(q, v.Left); optional && !guarded[src.String()] {
			return ir.Implies(ir.Presence{Loc: src}, v), true
		}
		return e, false
	case ir.Bool:
		nextGuarded := guarded
		if v.Conn == ir.ConnImplies && len(v.Operands) == 2 {
			if p, ok := v.Operands[0].(ir.Presence); ok {
				nextGuarded = withGuard(guarded, p.Loc.String())
			}
		}
		var rewrote bool
		operands := make([]ir.Expr, len(v.Operands))
		for i, op := range v.Operands {
			no, did := guardExprGuarded(q, op, nextGuarded)
			operands[i] = no
			rewrote = rewrote || did
		}
		if !rewrote {
			return e, false
		}
		return ir.Bool{Conn: v.Conn, Operands: operands}, true
	default:
		return e, false
	}
}

func withGuard(guarded map[string]bool, key string) map[string]bool {
	next := make(map[string]bool, len(guarded)+1)
	for k := range guarded {
		next[k] = true
	}
	next[key] = true
	return next
}

// taggedSourceLoc reports the %tag's declaration (MarkLocation) site and
// whether that site lies within an OptionalRegion, if e is a TagParam
// reference.
func taggedSourceLoc(q *ir.Query, e ir.Expr) (location.Location, bool) {
	tp, ok := e.(ir.TagParam)
	if !ok {
		return location.Location{}, false
	}
	def, ok := q.Tags[tp.Name]
	if !ok {
		return location.Location{}, false
	}
	return tp.Source, withinOptionalAt(q.Root, def.Loc)
}

func withinOptionalAt(s *ir.Scope, loc location.Location) bool {
	if s.Location.Equal(loc) {
		return s.WithinOptional
	}
	for _, e := range s.Children {
		if r := withinOptionalAt(e.Child, loc); r {
			return r
		}
	}
	return false
}

// markPostCollectionFoldFilters implements spec §4.5 pass 4: at each scope
// carrying FoldInfo (the scope a @fold traversal enters), _x_count filters
// are separated from per-element filters and wrapped in PostCollection.
// Deeper scopes of a multi-level fold are not examined.
func markPostCollectionFoldFilters(q *ir.Query) (*ir.Query, bool) {
	changed := mapScopes(q.Root, func(s *ir.Scope) bool {
		if s.Fold == nil {
			return false
		}
		localChanged := false
		for i, f := range s.Filters {
			if isCountFilter(f) {
				if _, already := f.(ir.PostCollection); !already {
					s.Filters[i] = ir.PostCollection{Inner: f}
					localChanged = true
				}
			}
		}
		return localChanged
	})
	return q, changed
}

func isCountFilter(e ir.Expr) bool {
	switch v := e.(type) {
	case ir.Binary:
		return refsCount(v.Left) || refsCount(v.Right)
	case ir.Between:
		return refsCount(v.Value)
	case ir.Unary:
		return refsCount(v.Operand)
	}
	return false
}

func refsCount(e ir.Expr) bool {
	m, ok := e.(ir.MetaFieldRef)
	return ok && m.Meta == schema.CountMeta
}

// canonicalizeOutputOrder implements spec §4.5 pass 5: output names are
// assigned a stable, collation-ordered emission order.
func canonicalizeOutputOrder(q *ir.Query) *ir.Query {
	sort.SliceStable(q.Result.Outputs, func(i, j int) bool {
		return collator.CompareString(q.Result.Outputs[i].Name, q.Result.Outputs[j].Name) < 0
	})
	return q
}
