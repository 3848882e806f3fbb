package sema

import (
	"yasdl/ast"
)

// bindPathStatic is the compiler-level static binder.  It extends
// ast.BindPathStatic with the import alias table of the owning schema: when
// the head segment of the name is the prefix of a use/require statement, the
// rest of the name is bound inside the imported schema.  As a compatibility
// escape, a name prefixed with the owner schema's own package name also
// resolves, with a warning.
func (c *Compiler) bindPathStatic(at ast.Item, name *ast.DottedName, recursive bool, excludes []ast.Item) []ast.Item {
	if at == nil {
		return nil
	}
	schema := ast.OwnerSchema(at)

	var path []ast.Item
	if name.Absolute {
		path = ast.BindPathStatic(schema, name.Parts(), name.MinKinds, recursive, excludes)
	} else {
		// First, try to find it in containing definitions, walking outward.
		path = ast.BindPathStatic(at, name.Parts(), name.MinKinds, recursive, excludes)
	}
	if path != nil {
		return path
	}

	// Then, try to find it in used schemas.
	for _, use := range schema.Uses {
		if sub, ok := name.StripPrefix(use.Prefix()); ok && sub != "" && use.Schema != nil {
			subPath := ast.BindPathStatic(use.Schema, ast.SplitName(sub), name.MinKinds, recursive, excludes)
			if subPath != nil {
				return append([]ast.Item{use.Schema}, subPath...)
			}
		}
	}

	// Finally, check if the name is prefixed with the package name of the
	// owner schema itself.
	if !name.Absolute {
		if sub, ok := name.StripPrefix(schema.PackageName); ok && sub != "" {
			subPath := ast.BindPathStatic(schema, ast.SplitName(sub), name.MinKinds, recursive, excludes)
			if subPath != nil {
				c.warnAt(at, "99011",
					"absolute name used to access an object inside the same schema (instead of 'schema.<name>')")
				return append([]ast.Item{schema}, subPath...)
			}
		}
	}

	return nil
}

// bindStatic is bindPathStatic reduced to the bound object.
func (c *Compiler) bindStatic(at ast.Item, name *ast.DottedName, recursive bool, excludes []ast.Item) ast.Item {
	if path := c.bindPathStatic(at, name, recursive, excludes); path != nil {
		return path[len(path)-1]
	}
	return nil
}

// bindPath is the compiler-level dynamic binder, the alias-aware counterpart
// of ast.BindPath.  Dynamic binding only ever returns final implementations.
func (c *Compiler) bindPath(at ast.Item, name *ast.DottedName, recursive bool, excludes []ast.Item) []ast.Item {
	if at == nil {
		return nil
	}
	schema := ast.OwnerSchema(at)

	var path []ast.Item
	if name.Absolute {
		path = ast.BindPath(schema, name.Parts(), name.MinKinds, recursive, excludes)
	} else {
		path = ast.BindPath(at, name.Parts(), name.MinKinds, recursive, excludes)
	}
	if path != nil {
		return path
	}

	for _, use := range schema.Uses {
		if sub, ok := name.StripPrefix(use.Prefix()); ok && sub != "" && use.Schema != nil {
			subPath := ast.BindPath(use.Schema, ast.SplitName(sub), name.MinKinds, recursive, excludes)
			if subPath != nil {
				return append([]ast.Item{use.Schema}, subPath...)
			}
		}
	}

	if !name.Absolute {
		if sub, ok := name.StripPrefix(schema.PackageName); ok && sub != "" {
			subPath := ast.BindPath(schema, ast.SplitName(sub), name.MinKinds, recursive, excludes)
			if subPath != nil {
				c.warnAt(at, "99012",
					"absolute name used to access an object inside the same schema (instead of 'schema.<name>')")
				return append([]ast.Item{schema}, subPath...)
			}
		}
	}

	return nil
}
