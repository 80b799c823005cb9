package frontend

import (
	"github.com/vektah/gqlparser/v2/ast"
)

const (
	directiveOutput       = "output"
	directiveTag          = "tag"
	directiveFilter       = "filter"
	directiveRecurse      = "recurse"
	directiveOptional     = "optional"
	directiveFold         = "fold"
	directiveOutputSource = "output_source"
)

func findDirective(list ast.DirectiveList, name string) *ast.Directive {
	for _, d := range list {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func stringArg(d *ast.Directive, name string) (string, bool) {
	arg := d.Arguments.ForName(name)
	if arg == nil || arg.Value == nil {
		return "", false
	}
	return arg.Value.Raw, true
}

func intArg(d *ast.Directive, name string) (int, bool) {
	s, ok := stringArg(d, name)
	if !ok {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// filterValues returns the raw strings of a @filter directive's value
// list argument, each expected to be a "$name" or "%name" reference per
// spec §4.4 ("literals are rejected").
func filterValues(d *ast.Directive) []string {
	arg := d.Arguments.ForName("value")
	if arg == nil || arg.Value == nil {
		return nil
	}
	var out []string
	for _, child := range arg.Value.Children {
		if child.Value != nil {
			out = append(out, child.Value.Raw)
		}
	}
	return out
}
