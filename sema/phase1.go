package sema

import (
	"fmt"
	"strings"

	"yasdl/ast"
	"yasdl/syntax"
)

// Phase 1 operates per schema but accumulates errors across all schemas
// before deciding whether to continue: all violations of one step are
// reported, and only upon a clean step does the compiler proceed.

// phase1Step1 checks the import statements: nothing can use or require
// itself, and within one schema there cannot be multiple use statements
// referencing the same schema document.
func (c *Compiler) phase1Step1() {
	for _, origin := range c.res.Origins {
		schema := c.res.Schemas[origin]
		for _, use := range schema.Uses {
			if use.Origin == schema.Origin {
				c.errorAt(use, "01011", "nothing can 'use' or 'require' itself")
			}
		}

		seen := make(map[string]*ast.Use)
		for _, use := range schema.Uses {
			if first, ok := seen[use.Origin]; ok {
				msg := "multiple use statements for the same source are not allowed"
				c.errorAt(use, "01012", msg)
				c.errorAt(first, "01012", msg)
			} else {
				seen[use.Origin] = use
			}
		}
	}
}

// phase1Step3 checks for invalid names: no '.' inside a simple name, no
// reserved property name on anything but a property, and no 'id' anywhere
// (it is reserved for the generated identifier column).
func (c *Compiler) phase1Step3(it ast.Item) {
	checkName := func(at ast.Item, name, label string) {
		if name == "" {
			return
		}
		if strings.Contains(name, ".") {
			c.errorAt(at, "01031", fmt.Sprintf("cannot have '.' in %s", label))
		}
		if syntax.IsReservedPropertyName(name) && at.Kind() != ast.KindProperty {
			c.errorAt(at, "01032", fmt.Sprintf("'%s' is a reserved property name", name))
		}
		if name == "id" {
			c.errorAt(at, "01033", fmt.Sprintf("'id' is an invalid name in %s", label))
		}
	}

	checkName(it, it.Base().Name, "name")

	if schema, ok := it.(*ast.Schema); ok {
		for _, use := range schema.Uses {
			checkName(use, use.Alias, "alias")
		}
	}
}

// phase1Step4 checks for name duplicates: within any block, the simple names
// of child definitions, properties and deletions form a set.  At schema level
// the prefixes of use statements participate too.
func (c *Compiler) phase1Step4(it ast.Item) {
	if !ast.IsDefinition(it) {
		return
	}

	seen := make(map[string]bool)

	if schema, ok := it.(*ast.Schema); ok {
		for _, use := range schema.Uses {
			name := use.Prefix()
			if seen[name] {
				c.errorAt(use, "01041", fmt.Sprintf("duplicated name %q", name))
			} else {
				seen[name] = true
			}
		}
	}

	for _, child := range it.Base().Children {
		name := child.Base().Name
		if name == "" {
			continue
		}
		if seen[name] {
			c.errorAt(child, "01041", fmt.Sprintf("duplicated name %q", name))
		} else {
			seen[name] = true
		}
	}
}

// phase1Step5 checks that any item carrying a reserved property name is in
// fact a property.
func (c *Compiler) phase1Step5(it ast.Item) {
	if syntax.IsReservedPropertyName(it.Base().Name) && it.Kind() != ast.KindProperty {
		c.errorAt(it, "01051", fmt.Sprintf("the name '%s' should belong to a property", it.Base().Name))
	}
}

// phase1Step6 checks modifier consistency: abstract and final are mutually
// exclusive.
func (c *Compiler) phase1Step6(it ast.Item) {
	b := it.Base()
	if b.HasModifier("abstract") && b.HasModifier("final") {
		c.errorAt(it, "01061", "cannot have 'abstract' and 'final' modifiers at the same time")
	}
}

// phase1Step7 normalizes the arguments of implements properties into a list
// of dotted names: 'all' expands to the list of ancestors, every name gets
// the kind restriction of the owning definition, and imp-names are rejected.
// Expanding 'all' when a listed name is already an ancestor is idempotent:
// duplicates are dropped.
func (c *Compiler) phase1Step7(it ast.Item) {
	prop, ok := it.(*ast.Property)
	if !ok || prop.Name != "implements" {
		return
	}

	owner := prop.Owner
	if owner == nil {
		return
	}
	goodKinds := owner.Kind() & ast.KindAnyDef
	if goodKinds == 0 {
		// not a field or fieldset; step 8 reports the error
		return
	}

	var names []ast.Value
	seen := make(map[string]bool)
	add := func(dn *ast.DottedName) {
		if seen[dn.Value] {
			return
		}
		seen[dn.Value] = true
		names = append(names, dn)
	}

	for _, arg := range prop.Args {
		if all, ok := arg.(*ast.All); ok {
			// Convert 'all' to the list of ancestors.  The expansion copies
			// the plain name only: the imp marker and min-classes set do not
			// carry over.
			anc, _ := ast.BindStatic(owner, []string{"ancestors"}, ast.KindProperty, false, nil).(*ast.Property)
			if anc != nil {
				for _, ancArg := range anc.Args {
					if dn, ok := ancArg.(*ast.DottedName); ok {
						add(&ast.DottedName{
							Value:    dn.Value,
							MinKinds: goodKinds,
							Line:     all.Line,
							Col:      all.Col,
						})
					}
				}
			}
			continue
		}

		dn, ok := arg.(*ast.DottedName)
		if !ok {
			c.errorAt(prop, "01073", "only dotted names can be used after 'implements'")
			continue
		}
		if dn.Imp {
			c.errorAt(prop, "01074", fmt.Sprintf("cannot use imp_name '=%s' for implements", dn.Value))
			continue
		}
		if dn.MinKinds == 0 {
			dn.MinKinds = goodKinds
		} else if dn.MinKinds != goodKinds {
			if owner.Kind() == ast.KindField {
				c.errorAt(prop, "01071", "fields can only be implemented by fields")
			} else {
				c.errorAt(prop, "01072", "fieldsets can only be implemented by fieldsets")
			}
			continue
		}
		add(dn)
	}

	prop.Args = names
}

// phase1Step8 statically binds the names listed after implements.  These
// names cannot refer to inherited members; they can only refer to another
// definition outside the containing definition.
func (c *Compiler) phase1Step8(it ast.Item) {
	prop, ok := it.(*ast.Property)
	if !ok || prop.Name != "implements" {
		return
	}

	owner := prop.Owner
	if owner == nil || owner.Kind()&ast.KindAnyDef == 0 {
		c.errorAt(prop, "01081", "can only use 'implements' inside fields and fieldsets")
		return
	}

	for _, arg := range prop.Args {
		dn, ok := arg.(*ast.DottedName)
		if !ok {
			c.errorAt(prop, "01088", fmt.Sprintf("definition %v not found", arg))
			continue
		}

		path := c.bindPathStatic(prop, dn, true, []ast.Item{owner})
		dn.RefPath = path
		if path == nil {
			c.errorAt(prop, "01082", fmt.Sprintf("definition %s not found", dn.Value))
			continue
		}
		o := path[len(path)-1]
		dn.Ref = o

		switch {
		case owner.Kind() == ast.KindField && o.Kind() != ast.KindField:
			msg := "a field cannot implement a non-field"
			c.errorAt(o, "01083", msg)
			c.errorAt(prop, "01083", msg)
		case owner.Kind() == ast.KindFieldSet && o.Kind() != ast.KindFieldSet:
			msg := "a fieldset cannot implement a non-fieldset"
			c.errorAt(o, "01084", msg)
			c.errorAt(prop, "01084", msg)
		case o == owner:
			c.errorAt(prop, "01085", "nothing can explicitly implement itself")
		case ast.Owns(o, owner):
			msg := "a specification cannot statically contain its implementation"
			c.errorAt(o, "01086", msg+" (specification)")
			c.errorAt(prop, "01086", msg+" (implementation)")
		case ast.Owns(owner, o):
			msg := "an implementation cannot statically contain its specification"
			c.errorAt(o, "01087", msg+" (specification)")
			c.errorAt(prop, "01087", msg+" (implementation)")
		}
	}
}

// phase1Step9 checks that the implements relation is acyclic.  Only the
// first cycle found is reported.
func (c *Compiler) phase1Step9() {
	for _, def := range c.defs() {
		if !c.checkCircular(def, "implements", "01091") {
			break
		}
	}
}

// -----------------------------------------------------------------------------

// defs collects all field and fieldset definitions in load order.
func (c *Compiler) defs() []ast.Item {
	var defs []ast.Item
	c.res.Iterate(ast.KindAnyDef, func(it ast.Item) {
		defs = append(defs, it)
	})
	return defs
}

// propClosure computes the transitive closure of an item over the statically
// bound references of the named property.
func (c *Compiler) propClosure(it ast.Item, propName string) []ast.Item {
	var all []ast.Item

	addRefs := func(obj ast.Item) {
		prop, _ := ast.BindStatic(obj, []string{propName}, ast.KindProperty, false, nil).(*ast.Property)
		if prop == nil {
			return
		}
		for _, arg := range prop.Args {
			if dn, ok := arg.(*ast.DottedName); ok && dn.Ref != nil {
				if !ast.ContainsItem(all, dn.Ref) {
					all = append(all, dn.Ref)
				}
			}
		}
	}

	addRefs(it)
	for i := 0; i < len(all); i++ {
		addRefs(all[i])
	}
	return all
}

// checkCircular reports a circular reference through the named property.
// Returns false when a cycle was found.
func (c *Compiler) checkCircular(it ast.Item, propName, code string) bool {
	closure := c.propClosure(it, propName)
	if !ast.ContainsItem(closure, it) {
		return true
	}

	msg := fmt.Sprintf("circular reference for '%s' was detected", propName)
	c.errorAt(it, code, msg+" (#0)")
	for idx, member := range closure {
		c.errorAt(member, code, fmt.Sprintf("%s (#%d)", msg, idx+1))
	}
	return false
}
