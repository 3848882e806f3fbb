package sema

import (
	"yasdl/ast"
	"yasdl/loader"
)

// Compilation is the annotated result of a successful run of all phases.  It
// is the interface consumed by the DDL emitters.
type Compilation struct {
	// Registry is the registry of loaded schemas.
	Registry *loader.Result

	// Toplevels lists the realized toplevel fieldsets in load order, each
	// with its computed member paths.
	Toplevels []*ToplevelFieldSet

	// GUIDs maps guid values to the definitions carrying them, for
	// self-describing instances.
	GUIDs map[string]ast.Item
}

// ToplevelFieldSet is a realized toplevel fieldset: a table.
type ToplevelFieldSet struct {
	// FieldSet is the final implementation that generates the table.
	FieldSet *ast.FieldSet

	// FieldPaths holds the realized field member paths in member order.
	// The path, not just the leaf, names a column: the same field
	// definition can be contained multiple times through different
	// members.
	FieldPaths [][]ast.Item

	// Indexes lists the indexes defined at the outermost level of the
	// fieldset.
	Indexes []*ast.Index

	// Constraints lists the check constraints defined at the outermost
	// level of the fieldset.
	Constraints []*ast.Constraint
}

// Name returns the table-generating fieldset's simple name.
func (t *ToplevelFieldSet) Name() string {
	return t.FieldSet.Name
}

// FieldNames returns the disambiguated column names of the table, built by
// joining each member path with underscores.
func (t *ToplevelFieldSet) FieldNames() []string {
	names := make([]string, len(t.FieldPaths))
	for i, path := range t.FieldPaths {
		name := ""
		for _, member := range path {
			if name != "" {
				name += "_"
			}
			name += member.Base().Name
		}
		names[i] = name
	}
	return names
}

// Result assembles the compilation result.  Only valid after Compile
// returned true.
func (c *Compiler) Result() *Compilation {
	comp := &Compilation{
		Registry: c.res,
		GUIDs:    c.allGuids,
	}

	for _, fs := range c.toplevels {
		top := &ToplevelFieldSet{FieldSet: fs}

		for _, path := range ast.ContainedPaths(fs, ast.KindField) {
			if path[len(path)-1].Base().Realized {
				top.FieldPaths = append(top.FieldPaths, path)
			}
		}
		for _, member := range fs.Base().Members() {
			switch m := member.(type) {
			case *ast.Index:
				top.Indexes = append(top.Indexes, m)
			case *ast.Constraint:
				top.Constraints = append(top.Constraints, m)
			}
		}

		comp.Toplevels = append(comp.Toplevels, top)
	}

	return comp
}
