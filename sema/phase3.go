package sema

import (
	"fmt"

	"yasdl/ast"
)

// Phase 3 resolves the ancestors property, builds the inheritance DAG and
// computes the member list of every definition.
//
// Name binding for ancestors is hybrid: the dotted name is resolved
// statically, but when it was written as an imp-name the actual ancestor
// used for inheritance is the final implementor of the bound definition.
// This is the only place imp-names may appear except after the arrow
// operator.

// phase3Step1 statically binds every ancestors argument.  The enclosing
// definition is excluded from the search, which permits the idiom
// "fieldset location : location".
func (c *Compiler) phase3Step1(it ast.Item) {
	prop, ok := it.(*ast.Property)
	if !ok || prop.Name != "ancestors" {
		return
	}

	owner := prop.Owner
	if owner == nil || owner.Kind()&ast.KindAnyDef == 0 {
		c.errorAt(prop, "03011", "can only use 'ancestors' inside fields and fieldsets")
		return
	}
	goodKinds := owner.Kind() & ast.KindAnyDef

	for _, arg := range prop.Args {
		dn, ok := arg.(*ast.DottedName)
		if !ok {
			c.errorAt(prop, "03019", fmt.Sprintf("definition %v not found", arg))
			continue
		}

		if dn.MinKinds == 0 {
			dn.MinKinds = goodKinds
		} else if dn.MinKinds != goodKinds {
			if owner.Kind() == ast.KindField {
				c.errorAt(prop, "03012", "fields can only be inherited from fields")
			} else {
				c.errorAt(prop, "03012", "fieldsets can only be inherited from fieldsets")
			}
			continue
		}

		path := c.bindPathStatic(prop, dn, true, []ast.Item{owner})
		dn.RefPath = path
		if path == nil {
			c.errorAt(prop, "03013", fmt.Sprintf("definition %s not found", dn.Value))
			continue
		}
		o := path[len(path)-1]
		dn.Ref = o

		switch {
		case owner.Kind() == ast.KindField && o.Kind() != ast.KindField:
			msg := "a field cannot be the ancestor of a non-field"
			c.errorAt(o, "03014", msg)
			c.errorAt(prop, "03014", msg)
		case owner.Kind() == ast.KindFieldSet && o.Kind() != ast.KindFieldSet:
			msg := "a fieldset cannot be the ancestor of a non-fieldset"
			c.errorAt(o, "03015", msg)
			c.errorAt(prop, "03015", msg)
		case o == owner:
			c.errorAt(prop, "03016", "nothing can be the ancestor of itself")
		case ast.Owns(o, owner):
			msg := "a descendant cannot statically contain its ancestor"
			c.errorAt(prop, "03017", msg+" (descendant)")
			c.errorAt(o, "03017", msg+" (ancestor)")
		case ast.Owns(owner, o):
			msg := "an ancestor cannot statically contain its descendant"
			c.errorAt(o, "03018", msg+" (ancestor)")
			c.errorAt(prop, "03018", msg+" (descendant)")
		}
	}
}

// phase3Step2 checks that the ancestors relation is acyclic.  Only the first
// cycle found is reported.
func (c *Compiler) phase3Step2() {
	for _, def := range c.defs() {
		if !c.checkCircular(def, "ancestors", "03021") {
			break
		}
	}
}

// phase3Step3 rejects definitions that have imp-name ancestors and also
// appear in an implements list of their own.
func (c *Compiler) phase3Step3() {
	for _, def := range c.defs() {
		implements, _ := ast.BindStatic(def, []string{"implements"}, ast.KindProperty, false, nil).(*ast.Property)
		if implements != nil && len(implements.Args) > 0 && c.hasImpAncestor(def) {
			c.errorAt(def, "03031", "definitions with imp_name ancestors cannot implement other definitions")
		}
	}
}

// phase3Step4 computes the effective ancestors and descendants.  An
// imp-name ancestor is dereferenced to the final implementor of its static
// binding; a plain name is used as bound.
func (c *Compiler) phase3Step4() {
	defs := c.defs()

	for _, def := range defs {
		def.Base().Ancestors = nil
		def.Base().Descendants = nil
	}

	for _, def := range defs {
		prop, _ := ast.BindStatic(def, []string{"ancestors"}, ast.KindProperty, false, nil).(*ast.Property)
		if prop == nil {
			continue
		}
		for _, arg := range prop.Args {
			dn, ok := arg.(*ast.DottedName)
			if !ok || dn.Ref == nil {
				continue
			}
			if dn.Imp {
				def.Base().Ancestors = append(def.Base().Ancestors, ast.FinalOf(dn.Ref))
			} else {
				def.Base().Ancestors = append(def.Base().Ancestors, dn.Ref)
			}
		}
	}

	for _, ancestor := range defs {
		for _, descendant := range defs {
			if ast.ContainsItem(descendant.Base().Ancestors, ancestor) {
				ancestor.Base().Descendants = append(ancestor.Base().Descendants, descendant)
			}
		}
	}
}

// phase3Step5 checks static containment against the effective ancestors:
// within one inheritance graph, no definition can contain another.  The
// check of phase 2 is repeated here because imp-name dereferencing may have
// moved an ancestor to a distant part of the source.
func (c *Compiler) phase3Step5() {
	// Classify definitions into connected inheritance graphs.
	defs := c.defs()
	inGraph := make(map[ast.Item]bool)

	for _, seed := range defs {
		if inGraph[seed] {
			continue
		}

		graph := []ast.Item{seed}
		inGraph[seed] = true
		for i := 0; i < len(graph); i++ {
			item := graph[i]
			for _, next := range item.Base().Ancestors {
				if !inGraph[next] {
					inGraph[next] = true
					graph = append(graph, next)
				}
			}
			for _, next := range item.Base().Descendants {
				if !inGraph[next] {
					inGraph[next] = true
					graph = append(graph, next)
				}
			}
		}

		for i, i1 := range graph {
			for _, i2 := range graph[i+1:] {
				if ast.Owns(i1, i2) || ast.Owns(i2, i1) {
					msg := "definitions in the same inheritance graph cannot contain each other"
					c.errorAt(i1, "03051", msg)
					c.errorAt(i2, "03051", msg)
				}
			}
		}
	}
}

// phase3Step6 caches the members of all definitions.
func (c *Compiler) phase3Step6() {
	c.res.Iterate(0, ast.CacheMembers)
}

// phase3Step7 warns about deletions whose name did not resolve to an
// inherited member.
func (c *Compiler) phase3Step7() {
	c.res.Iterate(0, func(it ast.Item) {
		unused := it.Base().UnusedDeletions
		if len(unused) == 0 {
			return
		}
		for _, child := range it.Base().Children {
			if child.Kind() == ast.KindDeletion && unused[child.Base().Name] {
				c.warnAt(child, "03071", "useless use of name deletion")
			}
		}
	})
}
