package ir

import "github.com/syssam/graphcompiler/schema"

// ParameterSlot describes one runtime parameter of a compiled query, in the
// order it appears in the emitted text's positional argument list (spec
// §4.8).
type ParameterSlot struct {
	Name   string
	Scalar schema.ScalarKind
}

// OutputColumn describes one column of a compiled query's row shape (spec
// §4.8). IsTypename is set for the __typename meta output, which has no
// schema.ScalarKind of its own.
type OutputColumn struct {
	Name       string
	Scalar     schema.ScalarKind
	List       bool
	Nullable   bool
	IsTypename bool
}

// EmitResult is an emitter's output: the compiled query text, its
// parameter slots in emission order, and its output columns. The root
// driver package re-exports this as CompileResult (spec §4.8).
type EmitResult struct {
	Text       string
	Parameters []ParameterSlot
	Outputs    []OutputColumn
}
