package sema

import (
	"yasdl/ast"
)

// Phase 7 runs the global, non-tree-shaped checks: property kinds and
// shapes, type rules, index realization and GUID uniqueness.

// phase7Steps returns the phase 7 steps in order.  Each step runs over all
// items of the compilation and is gated by the error check of the driver.
func (c *Compiler) phase7Steps() []func(ast.Item) {
	return []func(ast.Item){
		c.phase7Step1, c.phase7Step2, c.phase7Step3, c.phase7Step4,
		c.phase7Step5, c.phase7Step6, c.phase7Step7, c.phase7Step8,
		c.phase7Step9, c.phase7Step10, c.phase7Step11, c.phase7Step12,
		c.phase7Step13, c.phase7Step14, c.phase7Step15, c.phase7Step16,
		c.phase7Step17, c.phase7Step18, c.phase7Step19,
	}
}

// containsField tells if the fieldset contains at least one field member,
// directly or through nested fieldsets.
func containsField(it ast.Item) bool {
	return len(ast.ContainedPaths(it, ast.KindField)) > 0
}

// phase7Step1: realized toplevel fieldsets must contain at least one field.
func (c *Compiler) phase7Step1(it ast.Item) {
	if fs, ok := it.(*ast.FieldSet); ok && fs.Realized && fs.Toplevel {
		if !containsField(fs) {
			c.errorAt(fs, "07011", "realized toplevel fieldsets must contain at least one field")
		}
	}
}

// phase7Step2: realized non-toplevel fieldsets should contain at least one
// field.
func (c *Compiler) phase7Step2(it ast.Item) {
	if fs, ok := it.(*ast.FieldSet); ok && fs.Realized && !fs.Toplevel {
		if !containsField(fs) {
			c.warnAt(fs, "07021", "realized non-toplevel fieldsets should contain at least one field")
		}
	}
}

// phase7Step3: the required modifier is meaningless on outermost fields.
func (c *Compiler) phase7Step3(it ast.Item) {
	if f, ok := it.(*ast.Field); ok && ast.IsOutermost(f) {
		if f.HasModifier("required") {
			c.warnAt(f, "07031", "outermost field definitions should not be required - it is meaningless")
		}
	}
}

// phase7Step4: a toplevel realized fieldset with a non-outermost
// specification risks realizing copies of its contents.
func (c *Compiler) phase7Step4(it ast.Item) {
	fs, ok := it.(*ast.FieldSet)
	if !ok || !fs.Realized || !fs.Toplevel {
		return
	}
	for _, spec := range fs.Specifications {
		if !ast.IsOutermost(spec) {
			msg := "toplevel realized fieldset definition should not have any specification that is not outermost." +
				" May result in realizing copies of its contents."
			c.noticeAt(spec, "07041", msg+" (specification)")
			c.noticeAt(fs, "07041", msg+" (realization)")
		}
	}
}

// phase7Step5: the type property takes a single string argument or none.  A
// field referencing a concrete fieldset must have type "identifier" (which
// is also the applied default); a universal reference must have no type; all
// other realized fields must have a type.
func (c *Compiler) phase7Step5(it ast.Item) {
	f, ok := it.(*ast.Field)
	if !ok {
		return
	}

	hasRef := f.ReferencedFieldSet() != nil
	refProp := ast.GetProp(f, "references")
	universal := refProp != nil && len(refProp.Args) == 0

	if typ := ast.GetProp(f, "type"); typ != nil {
		if len(typ.Args) != 0 {
			if len(typ.Args) != 1 {
				c.errorAt(f, "07051", "type property must have a single string argument, or no argument at all")
			} else if _, isStr := typ.Args[0].(string); !isStr {
				c.errorAt(f, "07051", "type property must have a single string argument, or no argument at all")
			} else {
				if hasRef && typ.Args[0].(string) != "identifier" {
					c.errorAt(f, "07052", "a referencing field must have 'identifier' type")
				}
				if universal {
					c.errorAt(f, "07053", "a universal reference field cannot have a type")
				}
			}
		}
	}

	if f.Realized && !universal && f.Type() == "" {
		c.errorAt(f, "07054", "realized fields must have a type")
	}
}

// checkSingleArgProp validates the shape of a single-argument property.
func (c *Compiler) checkSingleArgProp(it ast.Item, name, code, msg string, okArg func(ast.Value) bool) {
	prop := ast.GetProp(it, name)
	if prop == nil {
		return
	}
	if len(prop.Args) != 1 || !okArg(prop.Args[0]) {
		c.errorAt(prop, code, msg)
	}
}

func isInt(v ast.Value) bool {
	_, ok := v.(int)
	return ok
}

func isBool(v ast.Value) bool {
	_, ok := v.(bool)
	return ok
}

// phase7Step6: size takes a single integer argument.
func (c *Compiler) phase7Step6(it ast.Item) {
	if f, ok := it.(*ast.Field); ok {
		c.checkSingleArgProp(f, "size", "07061", "'size' property must have a single integer argument", isInt)
	}
}

// phase7Step7: precision takes a single integer argument.
func (c *Compiler) phase7Step7(it ast.Item) {
	if f, ok := it.(*ast.Field); ok {
		c.checkSingleArgProp(f, "precision", "07071", "'precision' property must have a single integer argument", isInt)
	}
}

// phase7Step8: notnull is restricted to fields and takes a single boolean.
func (c *Compiler) phase7Step8(it ast.Item) {
	if !ast.IsDefinition(it) {
		return
	}
	if it.Kind() != ast.KindField {
		if p := ast.GetProp(it, "notnull"); p != nil {
			c.errorAt(p, "07081", "'notnull' property can only be used inside field definitions")
		}
		return
	}
	c.checkSingleArgProp(it, "notnull", "07082", "'notnull' property must have a single boolean argument", isBool)
}

// phase7Step9: unique is restricted to indexes and takes a single boolean.
func (c *Compiler) phase7Step9(it ast.Item) {
	if !ast.IsDefinition(it) {
		return
	}
	if it.Kind() != ast.KindIndex {
		if p := ast.GetProp(it, "unique"); p != nil {
			c.errorAt(p, "07091", "'unique' property can only be used inside index definitions")
		}
		return
	}
	c.checkSingleArgProp(it, "unique", "07092", "'unique' property must have a single boolean argument", isBool)
}

// phase7Step10: immutable is restricted to fields and takes a single
// boolean.
func (c *Compiler) phase7Step10(it ast.Item) {
	if !ast.IsDefinition(it) {
		return
	}
	if it.Kind() != ast.KindField {
		if p := ast.GetProp(it, "immutable"); p != nil {
			c.errorAt(p, "07101", "'immutable' property can only be used inside field definitions")
		}
		return
	}
	c.checkSingleArgProp(it, "immutable", "07102", "'immutable' property must have a single boolean argument", isBool)
}

// phase7Step11: guid takes a single non-empty string that is unique across
// the whole compilation.
func (c *Compiler) phase7Step11(it ast.Item) {
	if !ast.IsDefinition(it) {
		return
	}
	guid := ast.GetProp(it, "guid")
	if guid == nil {
		return
	}

	value, isStr := "", false
	if len(guid.Args) == 1 {
		value, isStr = guid.Args[0].(string)
	}
	if !isStr || value == "" {
		c.errorAt(guid, "07111", "'guid' property must have a single non-empty string argument")
		return
	}

	if other, ok := c.allGuids[value]; ok {
		msg := "values of the guid property must be unique in the compilation set"
		c.errorAt(it, "07112", msg)
		c.errorAt(other, "07112", msg)
	} else {
		c.allGuids[value] = it
	}
}

// phase7Step12: ondelete and onupdate are restricted to fields and take one
// of "cascade", "setnull" or "noaction".
func (c *Compiler) phase7Step12(it ast.Item) {
	if !ast.IsDefinition(it) {
		return
	}

	if it.Kind() != ast.KindField {
		if p := ast.GetProp(it, "ondelete"); p != nil {
			c.errorAt(p, "07121", "'ondelete' property can only be used inside field definitions")
		}
		if p := ast.GetProp(it, "onupdate"); p != nil {
			c.errorAt(p, "07122", "'onupdate' property can only be used inside field definitions")
		}
		return
	}

	isAction := func(v ast.Value) bool {
		s, ok := v.(string)
		return ok && (s == "cascade" || s == "setnull" || s == "noaction")
	}
	c.checkSingleArgProp(it, "ondelete", "07123",
		"argument of 'ondelete' property must be one of 'cascade', 'setnull', 'noaction'", isAction)
	c.checkSingleArgProp(it, "onupdate", "07123",
		"argument of 'onupdate' property must be one of 'cascade', 'setnull', 'noaction'", isAction)
}

// phase7Step13: every index of a realized final fieldset must have all its
// fields realized.
func (c *Compiler) phase7Step13(it ast.Item) {
	fs, ok := it.(*ast.FieldSet)
	if !ok || !fs.Realized || fs.FinalImplementor != it {
		return
	}

	msg := "index is part of a realized final implementation, so it should be created, but its field is not realized"
	for _, member := range fs.Base().Members() {
		ix, ok := member.(*ast.Index)
		if !ok {
			continue
		}
		fields := ix.Fields()
		if fields == nil {
			continue
		}
		for _, arg := range fields.Args {
			dn, ok := arg.(*ast.DottedName)
			if !ok || dn.Ref == nil {
				continue
			}
			if !dn.Ref.Base().Realized {
				c.errorAt(fs, "07131", msg+" (table)")
				c.errorAt(fields, "07131", msg+" (index)")
				c.errorAt(dn.Ref, "07131", msg+" (field)")
			}
		}
	}
}

// phase7Step14: a schema without a language property gets the default "en"
// with a warning.
func (c *Compiler) phase7Step14(it ast.Item) {
	if schema, ok := it.(*ast.Schema); ok {
		if ast.BindStatic(schema, []string{"language"}, ast.KindProperty, false, nil) == nil {
			c.warnAt(schema, "07141", "the 'language' property is not defined for this schema, assuming 'en'")
		}
	}
}

// phase7Step15: the language property is schema-level only.
func (c *Compiler) phase7Step15(it ast.Item) {
	if prop, ok := it.(*ast.Property); ok && prop.Name == "language" {
		if prop.Owner == nil || prop.Owner.Kind() != ast.KindSchema {
			c.errorAt(prop, "07151", "the language property can only be defined at schema level")
		}
	}
}

// phase7Step16: the cluster property is fieldset-level only and takes zero
// or one argument, which must be an index defined at the same level.
func (c *Compiler) phase7Step16(it ast.Item) {
	prop, ok := it.(*ast.Property)
	if !ok || prop.Name != "cluster" {
		return
	}

	if prop.Owner == nil || prop.Owner.Kind() != ast.KindFieldSet {
		c.errorAt(prop, "07161", "the cluster property can only be defined at fieldset level")
		return
	}

	switch len(prop.Args) {
	case 0:
		// no clustering
	case 1:
		dn, ok := prop.Args[0].(*ast.DottedName)
		if !ok || dn.Ref == nil || dn.Ref.Kind() != ast.KindIndex ||
			ast.FinalOf(dn.Ref.Base().Owner) != ast.FinalOf(prop.Owner) {
			c.errorAt(prop, "07163", "the cluster property's argument must be an index that is defined on the same level")
		}
	default:
		c.errorAt(prop, "07162", "the cluster property can only have zero or one argument")
	}
}

// phase7Step17: reqlevel takes one of "optional", "desired" or "required";
// a required field should also be notnull.
func (c *Compiler) phase7Step17(it ast.Item) {
	prop, ok := it.(*ast.Property)
	if !ok || prop.Name != "reqlevel" {
		return
	}

	value := ""
	if len(prop.Args) == 1 {
		value, _ = prop.Args[0].(string)
	}
	if value != "required" && value != "desired" && value != "optional" {
		c.noticeAt(prop, "07171", "argument of 'reqlevel' property should be one of 'required', 'desired', 'optional'")
		return
	}

	if value == "required" && prop.Owner != nil {
		if notnull, _ := ast.GetSingleProp(prop.Owner, "notnull", false).(bool); !notnull {
			c.noticeAt(prop, "07172", "required fields should also be 'notnull true'")
		}
	}
}

// phase7Step18: notnull true cannot be combined with a setnull action.
func (c *Compiler) phase7Step18(it ast.Item) {
	f, ok := it.(*ast.Field)
	if !ok || !f.NotNull() {
		return
	}

	if f.OnDelete() == "setnull" {
		msg := "must not have 'notnull true' and 'ondelete setnull' combination"
		c.errorAt(ast.GetProp(f, "notnull"), "07181", msg)
		c.errorAt(ast.GetProp(f, "ondelete"), "07181", msg)
	}
	if f.OnUpdate() == "setnull" {
		msg := "must not have 'notnull true' and 'onupdate setnull' combination"
		c.errorAt(ast.GetProp(f, "notnull"), "07182", msg)
		c.errorAt(ast.GetProp(f, "onupdate"), "07182", msg)
	}
}

// phase7Step19: the guid property is mandatory on schemas and self-realized
// toplevel fieldsets.
func (c *Compiler) phase7Step19(it ast.Item) {
	switch def := it.(type) {
	case *ast.Schema:
		if ast.GUID(def) == "" {
			c.errorAt(def, "07191", "all schemas must have a guid property")
		}
	case *ast.FieldSet:
		if def.Realized && def.Toplevel && def.FinalImplementor == it {
			if ast.GUID(def) == "" {
				c.errorAt(def, "07192", "all self-realized toplevel fieldsets must have a guid property")
			}
		}
	}
}
