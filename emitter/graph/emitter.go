// Package graph implements the graph-traversal (MATCH/Gremlin-style)
// emitter of spec §4.6: it lowers an optimized IR query into a
// `SELECT ... FROM (MATCH ... RETURN $matches)`-style query string, an
// ordered parameter list, and the query's output row shape.
package graph

import (
	"fmt"
	"strings"

	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/location"
	"github.com/syssam/graphcompiler/schema"
)

// Emit compiles q into graph-traversal query text.
func Emit(q *ir.Query) (*ir.EmitResult, error) {
	e := &emitter{
		aliases:      map[string]string{},
		typeOrdinals: map[string]int{},
		params:       map[string]ir.ParameterSlot{},
	}
	e.assignAliases(q.Root)

	compound := e.compoundOptionalEdges(q.Root)
	var statement string
	var err error
	if len(compound) == 0 {
		var chain string
		chain, err = e.emitSimplePath(q.Root, nil)
		statement = fmt.Sprintf("MATCH %s RETURN $matches", chain)
	} else {
		statement, err = e.emitUnionRewrite(q, compound)
	}
	if err != nil {
		return nil, err
	}

	selectClause, outputs, err := e.emitConstructResult(q.Result)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("SELECT %s FROM (%s)", selectClause, statement)

	return &ir.EmitResult{Text: text, Parameters: e.orderedParams(), Outputs: outputs}, nil
}

type emitter struct {
	aliases      map[string]string // location key -> alias
	typeOrdinals map[string]int
	params       map[string]ir.ParameterSlot
	paramSeq     []string
	required     map[*ir.Edge]bool // compound-optional edges, emitted as required steps when kept
}

// assignAliases names each scope "<TypeName>___N", N being the 1-based
// ordinal of that type name's occurrence in preorder (spec §8.2 scenario
// 1's `Animal___1`), so repeated self-traversals of the same type still get
// distinct, stable aliases.
func (e *emitter) assignAliases(s *ir.Scope) {
	e.typeOrdinals[s.TypeName]++
	e.aliases[s.Location.String()] = fmt.Sprintf("%s___%d", s.TypeName, e.typeOrdinals[s.TypeName])
	for _, edge := range s.Children {
		e.assignAliases(edge.Child)
	}
}

func (e *emitter) alias(loc location.Location) string { return e.aliases[loc.String()] }

// compoundOptionalEdges collects, in deterministic preorder, every edge in
// the tree that must be part of the 2^n union rewrite: either it has
// further vertex expansion beneath it, or one of its ancestors is itself
// @optional. The traversal language's optional-step modifier may only be
// applied to the true last step of a chain (spec §4.6), so any @optional
// edge nested beneath another @optional — even one with no further
// expansion of its own, spec §8.2 scenario 3's inner
// `in_Animal_ParentOf @optional` — cannot be expressed as a simple trailing
// modifier and must be enumerated too.
func (e *emitter) compoundOptionalEdges(s *ir.Scope) []*ir.Edge {
	var out []*ir.Edge
	var walk func(*ir.Scope, bool)
	walk = func(s *ir.Scope, withinOptionalAncestor bool) {
		for _, edge := range s.Children {
			if edge.Optional && (len(edge.Child.Children) > 0 || withinOptionalAncestor) {
				out = append(out, edge)
			}
			walk(edge.Child, withinOptionalAncestor || edge.Optional)
		}
	}
	walk(s, false)
	return out
}

// emitSimplePath emits the MATCH chain for a scope tree with no compound
// optionals remaining (n == 0 degenerates to this path per spec §4.6).
// drop names edges (by child location key) whose subtree must be omitted
// entirely for this subset alternative.
func (e *emitter) emitSimplePath(s *ir.Scope, drop map[string]bool) (string, error) {
	var steps []string
	if err := e.emitScope(s, drop, &steps); err != nil {
		return "", err
	}
	return strings.Join(steps, ""), nil
}

func (e *emitter) emitScope(s *ir.Scope, drop map[string]bool, steps *[]string) error {
	alias := e.alias(s.Location)
	head := fmt.Sprintf("{ class: %s, as: %s }", s.TypeName, alias)
	for _, toType := range s.Coercions {
		head = fmt.Sprintf("{ class: %s, as: %s }", toType, alias)
	}
	if len(*steps) == 0 {
		*steps = append(*steps, head)
	}
	if s.Recurse != nil {
		*steps = append(*steps, fmt.Sprintf(".%s('%s'){0,%d}", stepVerb(s.Recurse.Direction), s.Recurse.EdgeName, s.Recurse.Depth))
	}
	if where := e.emitWhere(s.Filters); where != "" {
		(*steps)[len(*steps)-1] += where
	}
	for _, edge := range s.Children {
		if drop[edge.Child.Location.String()] {
			continue
		}
		verb := stepVerb(edge.Direction)
		step := fmt.Sprintf(".%s('%s')", verb, edge.EdgeName)
		if edge.Optional && !e.required[edge] {
			step += ".optional()"
		}
		step += fmt.Sprintf("{ class: %s, as: %s }", edge.Child.TypeName, e.alias(edge.Child.Location))
		*steps = append(*steps, step)
		if err := e.emitScope(edge.Child, drop, steps); err != nil {
			return err
		}
	}
	return nil
}

func stepVerb(dir schema.Direction) string {
	if dir == schema.In {
		return "in"
	}
	return "out"
}

// emitWhere wraps each predicate in its own parens before joining, so a
// single filter still reads "where: ((predicate))" (spec §8.2 scenario 2),
// matching the traversal language's double-paren clause convention.
func (e *emitter) emitWhere(filters []ir.Expr) string {
	if len(filters) == 0 {
		return ""
	}
	var parts []string
	for _, f := range filters {
		parts = append(parts, "("+e.emitExpr(f)+")")
	}
	return ", where: (" + strings.Join(parts, " and ") + ")"
}

func (e *emitter) emitExpr(expr ir.Expr) string {
	switch v := expr.(type) {
	case ir.Literal:
		return fmt.Sprintf("%v", v.Value)
	case ir.Param:
		e.registerParam(v.Name, v.Scalar)
		return ":" + v.Name
	case ir.TagParam:
		return e.alias(v.Source) + "." + tagFieldPlaceholder(v.Name)
	case ir.FieldRef:
		return e.alias(v.Loc) + "." + v.Field
	case ir.MetaFieldRef:
		if v.Meta == "_x_count" {
			return e.alias(v.Loc) + ".size()"
		}
		return e.alias(v.Loc) + "." + v.Meta
	case ir.Unary:
		return e.emitExpr(v.Operand) + " " + unaryOpText(v.Op)
	case ir.Binary:
		return e.emitExpr(v.Left) + " " + binaryOpText(v.Op) + " " + e.emitExpr(v.Right)
	case ir.Between:
		return fmt.Sprintf("%s between %s and %s", e.emitExpr(v.Value), e.emitExpr(v.Lower), e.emitExpr(v.Upper))
	case ir.SetExpr:
		var vals []string
		for _, val := range v.Values {
			vals = append(vals, e.emitExpr(val))
		}
		op := "IN"
		if v.Op == ir.OpNotIn {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s [%s]", e.emitExpr(v.Field), op, strings.Join(vals, ", "))
	case ir.HasEdgeDegree:
		return fmt.Sprintf("%s.%s('%s').size() = %s", e.alias(v.Loc), stepVerb(v.Direction), v.EdgeName, e.emitExpr(v.Degree))
	case ir.NameOrAlias:
		return fmt.Sprintf("(%s.name = %s or %s.alias = %s)", e.alias(v.Loc), e.emitExpr(v.Value), e.alias(v.Loc), e.emitExpr(v.Value))
	case ir.Presence:
		return e.alias(v.Loc) + " is not null"
	case ir.PostCollection:
		return e.emitExpr(v.Inner)
	case ir.Bool:
		return e.emitBool(v)
	default:
		return ""
	}
}

func (e *emitter) emitBool(v ir.Bool) string {
	switch v.Conn {
	case ir.ConnNot:
		return "not (" + e.emitExpr(v.Operands[0]) + ")"
	case ir.ConnImplies:
		return fmt.Sprintf("(not (%s) or (%s))", e.emitExpr(v.Operands[0]), e.emitExpr(v.Operands[1]))
	default:
		sep := " and "
		if v.Conn == ir.ConnOr {
			sep = " or "
		}
		var parts []string
		for _, op := range v.Operands {
			parts = append(parts, e.emitExpr(op))
		}
		return "(" + strings.Join(parts, sep) + ")"
	}
}

func tagFieldPlaceholder(name string) string { return name }

func unaryOpText(op ir.Op) string {
	if op == ir.OpIsNull {
		return "is null"
	}
	return "is not null"
}

func binaryOpText(op ir.Op) string {
	switch op {
	case ir.OpEq:
		return "="
	case ir.OpNeq:
		return "!="
	case ir.OpLt:
		return "<"
	case ir.OpLte:
		return "<="
	case ir.OpGt:
		return ">"
	case ir.OpGte:
		return ">="
	case ir.OpHasSubstring:
		return "like"
	case ir.OpStartsWith:
		return "like_prefix"
	case ir.OpEndsWith:
		return "like_suffix"
	case ir.OpContains:
		return "contains"
	case ir.OpNotContains:
		return "not_contains"
	case ir.OpIntersects:
		return "intersects"
	default:
		return string(op)
	}
}

func (e *emitter) registerParam(name string, scalar schema.ScalarKind) {
	if _, ok := e.params[name]; ok {
		return
	}
	e.params[name] = ir.ParameterSlot{Name: name, Scalar: scalar}
	e.paramSeq = append(e.paramSeq, name)
}

// orderedParams returns parameters in first-reference order, matching the
// positional order spec §4.8 requires the emitted text's argument list to
// follow.
func (e *emitter) orderedParams() []ir.ParameterSlot {
	out := make([]ir.ParameterSlot, len(e.paramSeq))
	for i, n := range e.paramSeq {
		out[i] = e.params[n]
	}
	return out
}

func (e *emitter) emitConstructResult(result ir.ConstructResult) (string, []ir.OutputColumn, error) {
	var cols []string
	var outputs []ir.OutputColumn
	for _, o := range result.Outputs {
		cols = append(cols, e.emitExpr(o.Value)+" AS `"+o.Name+"`")
		outputs = append(outputs, ir.OutputColumn{
			Name: o.Name, Scalar: o.Scalar.Resolved(), List: o.List,
			Nullable: o.Nullable, IsTypename: o.Scalar.IsTypename,
		})
	}
	return strings.Join(cols, ", "), outputs, nil
}

// emitUnionRewrite implements spec §4.6's 2^n compound-optional rewrite:
// for n compound-optional edges, emit 2^n MATCH alternatives indexed by
// subset in deterministic bitmask order, each keeping (bit set) or
// dropping-with-absence-filter (bit clear) that edge's subtree, wrapped in
// a UNIONALL.
func (e *emitter) emitUnionRewrite(q *ir.Query, edges []*ir.Edge) (string, error) {
	n := len(edges)
	e.required = map[*ir.Edge]bool{}
	for _, edge := range edges {
		e.required[edge] = true
	}
	var alternatives []string
	for mask := 0; mask < (1 << n); mask++ {
		drop := map[string]bool{}
		var absenceFilters []string
		for i, edge := range edges {
			if mask&(1<<i) == 0 {
				dropSubtree(edge.Child, drop)
				parentAlias := e.alias(parentLocationOf(q.Root, edge))
				absenceFilters = append(absenceFilters, fmt.Sprintf("(%s.%s IS NULL OR %s.%s.size() = 0)",
					parentAlias, edge.EdgeName, parentAlias, edge.EdgeName))
			}
		}
		body, err := e.emitSimplePath(q.Root, drop)
		if err != nil {
			return "", err
		}
		if len(absenceFilters) > 0 {
			body += ", where: (" + strings.Join(absenceFilters, " and ") + ")"
		}
		alternatives = append(alternatives, fmt.Sprintf("$optional__%d = (MATCH %s RETURN $matches)", mask, body))
	}
	letClause := strings.Join(alternatives, ", ")
	resultNames := make([]string, len(alternatives))
	for i := range alternatives {
		resultNames[i] = fmt.Sprintf("$optional__%d", i)
	}
	return fmt.Sprintf("LET %s, $result = UNIONALL(%s) RETURN EXPAND($result)", letClause, strings.Join(resultNames, ", ")), nil
}

func dropSubtree(s *ir.Scope, drop map[string]bool) {
	drop[s.Location.String()] = true
	for _, edge := range s.Children {
		dropSubtree(edge.Child, drop)
	}
}

func parentLocationOf(root *ir.Scope, target *ir.Edge) location.Location {
	var found location.Location
	var walk func(*ir.Scope)
	walk = func(s *ir.Scope) {
		for _, edge := range s.Children {
			if edge == target {
				found = s.Location
				return
			}
			walk(edge.Child)
		}
	}
	walk(root)
	return found
}
