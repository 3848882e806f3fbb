package sema

import (
	"yasdl/ast"
)

// Phase 6 verifies the requirement contract: every required member of a
// specification of a realized implementation must itself be realized.  The
// common failure is a required member hidden by a later ancestor or removed
// with a delete.

func (c *Compiler) phase6Step1() {
	c.res.Iterate(ast.KindFieldSet, func(it ast.Item) {
		if !it.Base().Realized {
			return
		}
		for _, spec := range it.Base().Specifications {
			// Iterate over the statically defined members of the
			// specification: they include items hidden by the realized
			// implementation.
			for _, member := range spec.Base().Children {
				if member.Kind()&ast.KindAnyDef == 0 {
					continue
				}
				if member.Base().HasModifier("required") && !member.Base().Realized {
					msg := "required definition is not realized"
					c.errorAt(member, "06011", msg+" (required)")
					c.errorAt(spec, "06011", msg+" (specification of owner)")
					c.errorAt(it, "06011", msg+" (realization of owner)")
				}
			}
		}
	})
}
