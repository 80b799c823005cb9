// Package sql implements the relational (SQL) emitter of spec §4.7: it
// lowers an optimized IR query, restricted to the subset of constructs the
// relational dialect can express, into a squirrel-built SELECT statement
// joined across the schema's table projection.
package sql

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/syssam/graphcompiler/cerr"
	"github.com/syssam/graphcompiler/dialect"
	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/schema"
)

// Emit compiles q into SQL text against sch's relational projection. named,
// if nil, defaults to DefaultTableName.
func Emit(sch *schema.Schema, q *ir.Query, named func(typeName string) string) (*ir.EmitResult, error) {
	if named == nil {
		named = DefaultTableName
	}
	if err := rejectUnsupported(q.Root, false); err != nil {
		return nil, err
	}

	plan, steps, err := buildJoinPlan(sch, q, named)
	if err != nil {
		return nil, err
	}

	rootAlias, err := plan.alias(q.Root.Location)
	if err != nil {
		return nil, err
	}
	builder := sq.Select().From(fmt.Sprintf("%s %s", named(q.Root.TypeName), rootAlias))
	for _, step := range steps {
		if step.kind == "edge_table" {
			builder = builder.LeftJoin(fmt.Sprintf("%s ON %s.%s = %s.id", step.edgeTable, step.edgeTable, step.edgeDst, step.parentAlias))
		}
		on := joinCondition(step)
		builder = builder.LeftJoin(fmt.Sprintf("%s %s ON %s", step.childTable, step.childAlias, on))
	}

	e := &sqlEmitter{plan: plan, params: map[string]ir.ParameterSlot{}}

	for _, f := range collectFilters(q.Root) {
		pred, err := e.emitExpr(f)
		if err != nil {
			return nil, err
		}
		builder = builder.Where(pred)
	}

	var outputs []ir.OutputColumn
	for _, o := range q.Result.Outputs {
		if err := rejectUnsupportedExpr(o.Value, o.Name); err != nil {
			return nil, err
		}
		col, err := e.emitExpr(o.Value)
		if err != nil {
			return nil, err
		}
		builder = builder.Column(sq.Alias(sq.Expr(col), o.Name))
		outputs = append(outputs, ir.OutputColumn{
			Name: o.Name, Scalar: o.Scalar.Resolved(), List: o.List,
			Nullable: o.Nullable, IsTypename: o.Scalar.IsTypename,
		})
	}

	// Named placeholders (":name") are already embedded as literal text by
	// e.emitExpr, so squirrel's own ?-style argument binding is unused here.
	text, _, err := builder.ToSql()
	if err != nil {
		return nil, cerr.NewInternalError("squirrel failed to render SQL", err)
	}

	return &ir.EmitResult{Text: text, Parameters: e.orderedParams(), Outputs: outputs}, nil
}

func joinCondition(step joinStep) string {
	if step.kind == "fk" {
		return fmt.Sprintf("%s.%s = %s.id", step.parentAlias, step.fkColumn, step.childAlias)
	}
	return fmt.Sprintf("%s.%s = %s.id AND %s.%s = %s.id",
		step.edgeTable, step.edgeSrc, step.childAlias, step.edgeTable, step.edgeDst, step.parentAlias)
}

// rejectUnsupported implements spec §4.7's UnsupportedFeature matrix: the
// relational dialect cannot express Recurse, OutputSource, a Fold nested
// inside another Fold, name_or_alias, intersects, has_edge_degree, or
// __typename.
func rejectUnsupported(s *ir.Scope, insideFold bool) error {
	path := s.Location.String()
	if s.Recurse != nil {
		return cerr.NewUnsupportedFeatureError("recurse", dialect.Relational, path)
	}
	if s.OutputSource {
		return cerr.NewUnsupportedFeatureError("output_source", dialect.Relational, path)
	}
	if s.Fold != nil {
		if insideFold {
			return cerr.NewUnsupportedFeatureError("nested_fold", dialect.Relational, path)
		}
		insideFold = true
	}
	for _, f := range s.Filters {
		if err := rejectUnsupportedExpr(f, path); err != nil {
			return err
		}
	}
	for _, edge := range s.Children {
		if err := rejectUnsupported(edge.Child, insideFold); err != nil {
			return err
		}
	}
	return nil
}

func rejectUnsupportedExpr(e ir.Expr, path string) error {
	switch v := e.(type) {
	case ir.NameOrAlias:
		return cerr.NewUnsupportedFeatureError("name_or_alias", dialect.Relational, path)
	case ir.HasEdgeDegree:
		return cerr.NewUnsupportedFeatureError("has_edge_degree", dialect.Relational, path)
	case ir.MetaFieldRef:
		if v.Meta == schema.TypenameMeta {
			return cerr.NewUnsupportedFeatureError("__typename", dialect.Relational, path)
		}
	case ir.Binary:
		if v.Op == ir.OpIntersects {
			return cerr.NewUnsupportedFeatureError("intersects", dialect.Relational, path)
		}
		if err := rejectUnsupportedExpr(v.Left, path); err != nil {
			return err
		}
		return rejectUnsupportedExpr(v.Right, path)
	case ir.Unary:
		return rejectUnsupportedExpr(v.Operand, path)
	case ir.Between:
		if err := rejectUnsupportedExpr(v.Value, path); err != nil {
			return err
		}
		if err := rejectUnsupportedExpr(v.Lower, path); err != nil {
			return err
		}
		return rejectUnsupportedExpr(v.Upper, path)
	case ir.SetExpr:
		for _, val := range v.Values {
			if err := rejectUnsupportedExpr(val, path); err != nil {
				return err
			}
		}
	case ir.Bool:
		for _, op := range v.Operands {
			if err := rejectUnsupportedExpr(op, path); err != nil {
				return err
			}
		}
	case ir.PostCollection:
		return rejectUnsupportedExpr(v.Inner, path)
	}
	return nil
}

func collectFilters(s *ir.Scope) []ir.Expr {
	var out []ir.Expr
	out = append(out, s.Filters...)
	for _, edge := range s.Children {
		out = append(out, collectFilters(edge.Child)...)
	}
	return out
}

type sqlEmitter struct {
	plan     *joinPlan
	params   map[string]ir.ParameterSlot
	paramSeq []string
}

func (e *sqlEmitter) emitExpr(expr ir.Expr) (string, error) {
	switch v := expr.(type) {
	case ir.Literal:
		return fmt.Sprintf("%v", v.Value), nil
	case ir.Param:
		e.registerParam(v.Name, v.Scalar)
		return ":" + v.Name, nil
	case ir.TagParam:
		alias, err := e.plan.alias(v.Source)
		if err != nil {
			return "", err
		}
		return alias + "." + v.Name, nil
	case ir.FieldRef:
		alias, err := e.plan.alias(v.Loc)
		if err != nil {
			return "", err
		}
		return alias + "." + v.Field, nil
	case ir.MetaFieldRef:
		alias, err := e.plan.alias(v.Loc)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("COUNT(%s.id)", alias), nil
	case ir.Unary:
		operand, err := e.emitExpr(v.Operand)
		if err != nil {
			return "", err
		}
		if v.Op == ir.OpIsNull {
			return operand + " IS NULL", nil
		}
		return operand + " IS NOT NULL", nil
	case ir.Binary:
		return e.emitBinary(v)
	case ir.Between:
		val, err := e.emitExpr(v.Value)
		if err != nil {
			return "", err
		}
		lo, err := e.emitExpr(v.Lower)
		if err != nil {
			return "", err
		}
		hi, err := e.emitExpr(v.Upper)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s BETWEEN %s AND %s", val, lo, hi), nil
	case ir.SetExpr:
		field, err := e.emitExpr(v.Field)
		if err != nil {
			return "", err
		}
		var vals []string
		for _, val := range v.Values {
			s, err := e.emitExpr(val)
			if err != nil {
				return "", err
			}
			vals = append(vals, s)
		}
		op := "IN"
		if v.Op == ir.OpNotIn {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", field, op, join(vals, ", ")), nil
	case ir.Presence:
		alias, err := e.plan.alias(v.Loc)
		if err != nil {
			return "", err
		}
		return alias + ".id IS NOT NULL", nil
	case ir.PostCollection:
		return e.emitExpr(v.Inner)
	case ir.Bool:
		return e.emitBool(v)
	default:
		return "", cerr.NewInternalError(fmt.Sprintf("relational emitter cannot render expr %T", expr), nil)
	}
}

func (e *sqlEmitter) emitBinary(v ir.Binary) (string, error) {
	left, err := e.emitExpr(v.Left)
	if err != nil {
		return "", err
	}
	right, err := e.emitExpr(v.Right)
	if err != nil {
		return "", err
	}
	op, ok := binaryOpText(v.Op)
	if !ok {
		return "", cerr.NewInternalError("unexpected binary operator in relational emitter: "+string(v.Op), nil)
	}
	switch v.Op {
	case ir.OpHasSubstring:
		right = "'%' || " + right + " || '%'"
	case ir.OpStartsWith:
		right = right + " || '%'"
	case ir.OpEndsWith:
		right = "'%' || " + right
	}
	return fmt.Sprintf("%s %s %s", left, op, right), nil
}

func binaryOpText(op ir.Op) (string, bool) {
	switch op {
	case ir.OpEq:
		return "=", true
	case ir.OpNeq:
		return "!=", true
	case ir.OpLt:
		return "<", true
	case ir.OpLte:
		return "<=", true
	case ir.OpGt:
		return ">", true
	case ir.OpGte:
		return ">=", true
	case ir.OpHasSubstring, ir.OpContains:
		return "LIKE", true
	case ir.OpNotContains:
		return "NOT LIKE", true
	case ir.OpStartsWith:
		return "LIKE", true
	case ir.OpEndsWith:
		return "LIKE", true
	default:
		return "", false
	}
}

func (e *sqlEmitter) emitBool(v ir.Bool) (string, error) {
	switch v.Conn {
	case ir.ConnNot:
		inner, err := e.emitExpr(v.Operands[0])
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case ir.ConnImplies:
		ant, err := e.emitExpr(v.Operands[0])
		if err != nil {
			return "", err
		}
		cons, err := e.emitExpr(v.Operands[1])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(NOT (%s) OR (%s))", ant, cons), nil
	default:
		sep := " AND "
		if v.Conn == ir.ConnOr {
			sep = " OR "
		}
		var parts []string
		for _, op := range v.Operands {
			s, err := e.emitExpr(op)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + join(parts, sep) + ")", nil
	}
}

func (e *sqlEmitter) registerParam(name string, scalar schema.ScalarKind) {
	if _, ok := e.params[name]; ok {
		return
	}
	e.params[name] = ir.ParameterSlot{Name: name, Scalar: scalar}
	e.paramSeq = append(e.paramSeq, name)
}

func (e *sqlEmitter) orderedParams() []ir.ParameterSlot {
	out := make([]ir.ParameterSlot, len(e.paramSeq))
	for i, n := range e.paramSeq {
		out[i] = e.params[n]
	}
	return out
}

func join(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}
