package sema

import (
	"yasdl/ast"
)

// Phase 5 determines which definitions participate in the generated
// database.  Realization is a monotonic fixed point: marks are only ever
// added, so iteration until no new marks terminates.

// phase5Realize runs the realization fixpoint (steps 1-3).
func (c *Compiler) phase5Realize() {
	// Step 1: top schemas are realized, and realization propagates along
	// require edges.  Plain use does not propagate.
	realizedSchemas := make(map[*ast.Schema]bool)
	var schemaOrder []*ast.Schema
	for _, origin := range c.res.MainOrigins {
		schema := c.res.Schemas[origin]
		if !realizedSchemas[schema] {
			realizedSchemas[schema] = true
			schemaOrder = append(schemaOrder, schema)
		}
	}
	for i := 0; i < len(schemaOrder); i++ {
		for _, use := range schemaOrder[i].Uses {
			if use.Require && use.Schema != nil && !realizedSchemas[use.Schema] {
				realizedSchemas[use.Schema] = true
				schemaOrder = append(schemaOrder, use.Schema)
			}
		}
	}
	for _, origin := range c.res.Origins {
		schema := c.res.Schemas[origin]
		schema.Realized = realizedSchemas[schema]
	}

	// Step 2: a required outermost fieldset in a realized schema realizes
	// its final implementation, which becomes toplevel and must itself be
	// outermost.
	realizedFieldsets := make(map[ast.Item]bool)
	toplevelFieldsets := make(map[ast.Item]bool)
	realizedFields := make(map[ast.Item]bool)

	for _, origin := range c.res.Origins {
		schema := c.res.Schemas[origin]
		if !schema.Realized {
			continue
		}
		for _, item := range schema.Children {
			fs, ok := item.(*ast.FieldSet)
			if !ok || !fs.HasModifier("required") {
				continue
			}
			fi := ast.FinalOf(fs)
			if ast.IsOutermost(fi) {
				realizedFieldsets[fi] = true
				toplevelFieldsets[fi] = true
			} else {
				msg := "final implementation of a required outermost fieldset should be outermost, but it is not"
				c.errorAt(fs, "05011", msg+" (specification)")
				c.errorAt(fi, "05011", msg+" (implementation)")
			}
		}
	}

	// Step 3, iterated: members of realized fieldsets are realized (not
	// toplevel), and a realized field referencing a concrete fieldset
	// realizes the final implementation of the target as toplevel.
	// Universal references do not propagate realization.
	for {
		before := len(realizedFieldsets) + len(realizedFields) + len(toplevelFieldsets)

		var snapshot []ast.Item
		for fs := range realizedFieldsets {
			snapshot = append(snapshot, fs)
		}
		for _, fs := range snapshot {
			for _, path := range ast.ContainedPaths(fs, ast.KindField) {
				realizedFields[path[len(path)-1]] = true
			}
			for _, path := range ast.ContainedPaths(fs, ast.KindFieldSet) {
				realizedFieldsets[path[len(path)-1]] = true
			}
		}

		for _, fs := range snapshot {
			for _, path := range ast.ContainedPaths(fs, ast.KindField) {
				member := path[len(path)-1]
				refProp := ast.GetProp(member, "references")
				if refProp == nil || len(refProp.Args) == 0 {
					continue
				}
				dn, ok := refProp.Args[0].(*ast.DottedName)
				if !ok || dn.Ref == nil {
					continue
				}
				referenced := ast.FinalOf(dn.Ref)
				realizedFieldsets[referenced] = true
				toplevelFieldsets[referenced] = true
			}
		}

		if before == len(realizedFieldsets)+len(realizedFields)+len(toplevelFieldsets) {
			break
		}
	}

	// Set the flags and collect the toplevel fieldsets in load order.
	c.toplevels = nil
	c.res.Iterate(ast.KindFieldSet, func(it ast.Item) {
		it.Base().Realized = realizedFieldsets[it]
		it.Base().Toplevel = toplevelFieldsets[it]
		if it.Base().Toplevel {
			c.toplevels = append(c.toplevels, it.(*ast.FieldSet))
		}
	})
	c.res.Iterate(ast.KindField, func(it ast.Item) {
		it.Base().Realized = realizedFields[it]
	})

	// Specifications of realized definitions are realized too.
	for {
		added := 0
		for _, def := range c.defs() {
			if !def.Base().Realized {
				continue
			}
			for _, spec := range def.Base().Specifications {
				if !spec.Base().Realized {
					spec.Base().Realized = true
					added++
				}
			}
		}
		if added == 0 {
			break
		}
	}
}

// phase5Step4 checks that no realized final implementation carries the
// abstract modifier.
func (c *Compiler) phase5Step4(it ast.Item) {
	if it.Kind()&ast.KindAnyDef == 0 {
		return
	}
	b := it.Base()
	if b.Realized && b.FinalImplementor == it && b.HasModifier("abstract") {
		c.errorAt(it, "05031", "this abstract definition must be realized, but it has no fallback implementation")
	}
}
