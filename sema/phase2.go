package sema

import (
	"yasdl/ast"
	"yasdl/report"
)

// Phase 2 partitions all field and fieldset definitions into implementation
// trees and computes the total final-implementor function.

// phase2Step1 assigns direct implementors.  A definition listed under
// implements anywhere in the compilation gets the listing definition as its
// direct implementor; being listed more than once is an error.
func (c *Compiler) phase2Step1() {
	for _, def := range c.defs() {
		implementors := c.allImplementors(def)
		switch len(implementors) {
		case 0:
			def.Base().DirectImplementor = nil
		case 1:
			def.Base().DirectImplementor = implementors[0].Owner
		default:
			c.errorAt(def, "02011", "multiple definitions want to implement this")
			for _, prop := range implementors {
				c.errorAt(prop, "02011", "multiple implementation")
			}
		}
	}
}

// allImplementors returns the implements properties that list the given
// definition.
func (c *Compiler) allImplementors(def ast.Item) []*ast.Property {
	var res []*ast.Property
	c.res.Iterate(ast.KindProperty, func(it ast.Item) {
		prop := it.(*ast.Property)
		if prop.Name != "implements" {
			return
		}
		for _, arg := range prop.Args {
			if dn, ok := arg.(*ast.DottedName); ok && dn.Ref == def {
				res = append(res, prop)
				return
			}
		}
	})
	return res
}

// hasImpAncestor tells if the definition has an imp-name listed in its
// ancestors.
func (c *Compiler) hasImpAncestor(def ast.Item) bool {
	prop, _ := ast.BindStatic(def, []string{"ancestors"}, ast.KindProperty, false, nil).(*ast.Property)
	if prop == nil {
		return false
	}
	for _, arg := range prop.Args {
		if dn, ok := arg.(*ast.DottedName); ok && dn.Imp {
			return true
		}
	}
	return false
}

// phase2Step2 rejects implementing a definition that has imp-name ancestors.
func (c *Compiler) phase2Step2() {
	for _, def := range c.defs() {
		if def.Base().DirectImplementor != nil && c.hasImpAncestor(def) {
			c.errorAt(def, "02021", "cannot explicitly implement a definition that has imp_name ancestors")
		}
	}
}

// phase2Step3 computes the final implementor of every definition: the root
// of its implementation tree.  For a singleton tree the definition is its
// own final implementor, so the function is total.
func (c *Compiler) phase2Step3() {
	for _, def := range c.defs() {
		if def.Base().FinalImplementor == nil {
			c.setFinalImplementorOf(def)
		}
	}
}

func (c *Compiler) setFinalImplementorOf(def ast.Item) ast.Item {
	b := def.Base()
	if b.FinalImplementor != nil {
		return b.FinalImplementor
	}
	if b.DirectImplementor != nil {
		b.FinalImplementor = c.setFinalImplementorOf(b.DirectImplementor)
	} else {
		b.FinalImplementor = def
	}
	return b.FinalImplementor
}

// phase2Step4 checks modifier consistency against the trees: an abstract
// required definition must not be its own final implementor (something must
// eventually implement it), and a final definition must be its own final
// implementor.
func (c *Compiler) phase2Step4() {
	for _, def := range c.defs() {
		b := def.Base()
		if b.FinalImplementor == def && b.HasModifier("abstract") && b.HasModifier("required") {
			c.errorAt(def, "02041", "abstract definition has no implementation defined")
		}
		if b.FinalImplementor != def && b.HasModifier("final") {
			msg := "trying to implement a final definition"
			c.errorAt(def, "02042", msg)
			c.errorAt(b.FinalImplementor, "02042", msg)
		}
	}
}

// phase2Step5 checks that no two definitions of one implementation tree are
// in a static containment relation, and builds the specification and
// implementation closure sets for fast queries in later phases.
func (c *Compiler) phase2Step5() {
	// Divide the definitions by their final implementors.
	var roots []ast.Item
	trees := make(map[ast.Item][]ast.Item)
	for _, def := range c.defs() {
		fi := def.Base().FinalImplementor
		if fi == nil {
			report.ReportICE("definition %s has no final implementor after phase 2", ast.Path(def))
		}
		if _, ok := trees[fi]; !ok {
			roots = append(roots, fi)
		}
		trees[fi] = append(trees[fi], def)
	}

	// Implementation trees usually contain a few items only, so the
	// quadratic check is fine.
	for _, fi := range roots {
		items := trees[fi]
		for i, i1 := range items {
			for _, i2 := range items[i+1:] {
				if ast.Owns(i1, i2) || ast.Owns(i2, i1) {
					msg := "definitions in the same implementation tree cannot contain each other"
					c.errorAt(i1, "02051", msg)
					c.errorAt(i2, "02051", msg)
				}
			}
		}
	}

	// Closure caches: everything reachable upward along direct implementors
	// implements the definition, and the definition is a specification of
	// each of them.
	for _, def := range c.defs() {
		for x := def.Base().DirectImplementor; x != nil; x = x.Base().DirectImplementor {
			def.Base().Implementations, _ = ast.AppendUnique(def.Base().Implementations, x)
			x.Base().Specifications, _ = ast.AppendUnique(x.Base().Specifications, def)
		}
	}
}
