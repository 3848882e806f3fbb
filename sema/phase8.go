package sema

import (
	"fmt"

	"yasdl/ast"
)

// TypeInfo describes a database type as known by a driver.
type TypeInfo struct {
	// NeedSize is set for types that require a size, like char.
	NeedSize bool

	// NeedPrecision is set for types that require a precision, like numeric.
	NeedPrecision bool

	// IdentifierCompatible is set for types that can hold row identifiers.
	IdentifierCompatible bool
}

// TypeRegistry maps type names to their driver specific descriptions.  It is
// provided by a database driver; when absent, the phase-8 checks are
// skipped.
type TypeRegistry interface {
	TypeInfo(name string) (TypeInfo, bool)
}

// phase8Step1 runs the database driver specific checks on realized fields:
// the type must be supported and sized/precisioned as the driver requires.
func (c *Compiler) phase8Step1(it ast.Item) {
	f, ok := it.(*ast.Field)
	if !ok || !f.Realized {
		return
	}

	typ := f.Type()
	if typ == "" {
		return
	}

	info, ok := c.driver.TypeInfo(typ)
	if !ok {
		at := ast.Item(f)
		if p := ast.GetProp(f, "type"); p != nil {
			at = p
		}
		c.errorAt(at, "08011", fmt.Sprintf("type '%s' is not supported by this driver", typ))
		return
	}

	if info.NeedSize && f.Size() < 0 {
		c.errorAt(f, "08012", fmt.Sprintf("field of type '%s' must have a size given", typ))
	}
	if info.NeedPrecision && f.Precision() < 0 {
		c.errorAt(f, "08013", fmt.Sprintf("field of type '%s' must have a precision given", typ))
	}
}
