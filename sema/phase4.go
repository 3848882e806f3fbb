package sema

import (
	"fmt"

	"yasdl/ast"
)

// Phase 4 binds every remaining dotted name inside property arguments
// (everything except ancestors and implements) using the dynamic binder, and
// validates the arguments of references, index and constraint definitions.

// phase4Step1 validates the shape of references properties.  Zero arguments
// (or the marker 'any') denote a universal reference: a (tbl, row) pair that
// may point to any realized toplevel fieldset.  Universal references are
// normalized to an empty argument list.
func (c *Compiler) phase4Step1(it ast.Item) {
	prop, ok := it.(*ast.Property)
	if !ok || prop.Name != "references" {
		return
	}

	if len(prop.Args) > 1 {
		c.errorAt(prop, "04011", "the references property cannot have more than one argument")
		return
	}
	if len(prop.Args) == 0 {
		return
	}

	dn, ok := prop.Args[0].(*ast.DottedName)
	if !ok {
		c.errorAt(prop, "04013", "argument of the references property must be a definition")
		return
	}

	if dn.Value == "any" && !dn.Absolute {
		prop.Args = nil
		return
	}

	if dn.MinKinds == 0 {
		dn.MinKinds = ast.KindFieldSet
	} else if dn.MinKinds != ast.KindFieldSet {
		c.errorAt(prop, "04012", "only fieldsets can be referenced")
	}
}

// phase4Step2 dynamically binds every dotted name argument of every property
// except implements and ancestors, which were bound statically in earlier
// phases.
func (c *Compiler) phase4Step2(it ast.Item) {
	prop, ok := it.(*ast.Property)
	if !ok || prop.Name == "implements" || prop.Name == "ancestors" {
		return
	}

	for _, arg := range prop.Args {
		dn, ok := arg.(*ast.DottedName)
		if !ok {
			continue
		}
		path := c.bindPath(prop, dn, true, nil)
		dn.RefPath = path
		if path != nil {
			dn.Ref = path[len(path)-1]
		} else {
			dn.Ref = nil
			c.errorAt(prop, "04021", fmt.Sprintf("definition %s not found", dn.Value))
		}
	}
}

// phase4Step3 checks that a referenced fieldset's final implementation is
// outermost: only outermost fieldsets become tables that rows can point at.
func (c *Compiler) phase4Step3(it ast.Item) {
	prop, ok := it.(*ast.Property)
	if !ok || prop.Name != "references" || len(prop.Args) != 1 {
		return
	}

	dn, ok := prop.Args[0].(*ast.DottedName)
	if !ok || dn.Ref == nil {
		return
	}

	ref := ast.FinalOf(dn.Ref)
	if !ast.IsOutermost(ref) {
		msg := "trying to reference a non-outermost definition"
		c.errorAt(ref, "04031", msg+" (referenced from)")
		c.errorAt(prop, "04031", msg+" (references to)")
	}
}

// phase4Step4 validates index definitions: the fields property is mandatory,
// must have at least one argument, and all arguments must resolve to fields
// or fieldsets contained in the enclosing fieldset, without duplicates.
func (c *Compiler) phase4Step4(it ast.Item) {
	ix, ok := it.(*ast.Index)
	if !ok {
		return
	}

	fields := ix.Fields()
	if fields == nil {
		c.errorAt(ix, "04041", "index definition must specify its fields")
		return
	}
	if len(fields.Args) == 0 {
		c.errorAt(ix, "04042", "index definition must have at least one field")
		return
	}

	for _, arg := range fields.Args {
		dn, ok := arg.(*ast.DottedName)
		if !ok || dn.Ref == nil || dn.Ref.Kind()&ast.KindAnyDef == 0 {
			c.errorAt(fields, "04043", "arguments of the 'fields' property must be fields or fieldsets")
			return
		}
	}

	for _, arg := range fields.Args {
		dn := arg.(*ast.DottedName)
		if !ast.Contains(ix.Owner, dn.Ref) {
			var msg string
			if dn.Ref.Kind() == ast.KindField {
				msg = "trying to index on a field that is not contained in the fieldset"
			} else {
				msg = "trying to index on a fieldset that is not contained in the fieldset"
			}
			c.errorAt(fields, "04044", msg+" (referenced from)")
			c.errorAt(dn.Ref, "04044", msg+" (references to)")
			return
		}
	}

	seen := make(map[ast.Item]bool)
	for _, arg := range fields.Args {
		dn := arg.(*ast.DottedName)
		if seen[dn.Ref] {
			c.errorAt(ix, "04045", "duplicate field in index definition (referenced from)")
			c.errorAt(dn.Ref, "04045", "duplicate field in index definition (references to)")
		} else {
			seen[dn.Ref] = true
		}
	}
}

// phase4Step5 validates constraint definitions: the check property is
// mandatory and its arguments must be strings or fields contained in the
// enclosing fieldset.
func (c *Compiler) phase4Step5(it ast.Item) {
	cons, ok := it.(*ast.Constraint)
	if !ok {
		return
	}

	check := cons.Check()
	if check == nil {
		c.errorAt(cons, "04051", "constraint definition must specify its check condition")
		return
	}
	if len(check.Args) == 0 {
		c.errorAt(cons, "04052", "empty check")
		return
	}

	for _, arg := range check.Args {
		switch v := arg.(type) {
		case string:
			// literal SQL fragment
		case *ast.DottedName:
			if v.Ref == nil || v.Ref.Kind() != ast.KindField {
				c.errorAt(check, "04053", "arguments of the 'check' property must be strings or fields")
				return
			}
			if !ast.Contains(cons.Owner, v.Ref) {
				c.errorAt(check, "04054",
					"trying to use a field in a check constraint that is not contained by the fieldset")
				return
			}
		default:
			c.errorAt(check, "04053", "arguments of the 'check' property must be strings or fields")
			return
		}
	}
}
