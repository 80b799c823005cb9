package graphcompiler

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/graphcompiler/dialect"
	emitgraph "github.com/syssam/graphcompiler/emitter/graph"
	emitsql "github.com/syssam/graphcompiler/emitter/sql"
	"github.com/syssam/graphcompiler/frontend"
	"github.com/syssam/graphcompiler/ir"
	"github.com/syssam/graphcompiler/optimizer"
	"github.com/syssam/graphcompiler/schema"
)

// CompileResult, ParameterSlot, and OutputColumn are the C8 output shapes
// (spec §4.8), defined once in ir as the shared leaf package both emitters
// write into, and re-exported here as the driver's public return type.
type (
	CompileResult = ir.EmitResult
	ParameterSlot = ir.ParameterSlot
	OutputColumn  = ir.OutputColumn
)

// The two compilation targets (spec §4.6/§4.7).
const (
	DialectGraph      = dialect.Graph
	DialectRelational = dialect.Relational
)

var compileGroup singleflight.Group

// Compile lowers surfaceAST into query text for the requested dialect
// (spec §4.8). It is a pure function of its arguments: the same
// (schema, surfaceAST, parametersSchema, dialect) tuple always produces the
// byte-identical result (spec §8.1.1), and concurrent identical calls are
// deduplicated via singleflight rather than recomputed. A document that
// carries no source text cannot be keyed, so it is compiled directly.
func Compile(sch *schema.Schema, surfaceAST *ast.QueryDocument, parametersSchema map[string]schema.ScalarKind, targetDialect string) (CompileResult, error) {
	if querySource(surfaceAST) == "" {
		return compile(sch, surfaceAST, parametersSchema, targetDialect)
	}
	key, err := cacheKey(sch, surfaceAST, parametersSchema, targetDialect)
	if err != nil {
		return CompileResult{}, err
	}

	v, err, _ := compileGroup.Do(key, func() (interface{}, error) {
		return compile(sch, surfaceAST, parametersSchema, targetDialect)
	})
	if err != nil {
		return CompileResult{}, err
	}
	return v.(CompileResult), nil
}

func compile(sch *schema.Schema, surfaceAST *ast.QueryDocument, parametersSchema map[string]schema.ScalarKind, targetDialect string) (CompileResult, error) {
	q, err := frontend.Validate(sch, surfaceAST, parametersSchema)
	if err != nil {
		return CompileResult{}, err
	}
	q = optimizer.Optimize(sch, q)

	var result *ir.EmitResult
	switch targetDialect {
	case dialect.Graph:
		result, err = emitgraph.Emit(q)
	case dialect.Relational:
		result, err = emitsql.Emit(sch, q, nil)
	default:
		return CompileResult{}, NewInternalError("unknown dialect: "+targetDialect, nil)
	}
	if err != nil {
		return CompileResult{}, err
	}
	return *result, nil
}

// cacheKey builds a deterministic singleflight key from the compilation
// inputs. The schema itself is deeply immutable once constructed (spec §5),
// so it is keyed by pointer identity rather than a content hash; the query
// AST's originating source text, the declared parameter kinds, and the
// target dialect are msgpack-encoded to round out a canonical snapshot.
func cacheKey(sch *schema.Schema, surfaceAST *ast.QueryDocument, parametersSchema map[string]schema.ScalarKind, targetDialect string) (string, error) {
	snapshot := struct {
		QuerySource string
		Params      map[string]int
		Dialect     string
	}{
		QuerySource: querySource(surfaceAST),
		Params:      make(map[string]int, len(parametersSchema)),
		Dialect:     targetDialect,
	}
	for name, kind := range parametersSchema {
		snapshot.Params[name] = int(kind)
	}
	encoded, err := msgpack.Marshal(snapshot)
	if err != nil {
		return "", NewInternalError("failed to encode compile cache key", err)
	}
	return fmt.Sprintf("%p:%s", sch, encoded), nil
}

func querySource(doc *ast.QueryDocument) string {
	if len(doc.Operations) == 0 {
		return ""
	}
	op := doc.Operations[0]
	if op.Position == nil || op.Position.Src == nil {
		return ""
	}
	return op.Position.Src.Input
}
