package ast

import (
	"strings"
)

// Kind identifies the concrete type of an AST item.  Kinds form a bitmask so
// that binding calls can restrict their search to a set of acceptable kinds
// (the min-classes set of a dotted name).  A zero mask means "no restriction".
type Kind uint8

const (
	KindSchema Kind = 1 << iota
	KindFieldSet
	KindField
	KindIndex
	KindConstraint
	KindProperty
	KindDeletion
	KindUse
)

// KindAnyDef matches the definitions that participate in the inheritance and
// implementation relations.
const KindAnyDef = KindField | KindFieldSet

// Matches tests whether an item is acceptable under a kind mask.  A zero mask
// accepts everything.
func Matches(it Item, kinds Kind) bool {
	return kinds == 0 || it.Kind()&kinds != 0
}

// Item is the interface implemented by every AST node.  All nodes share an
// embedded ItemBase which stores their name, position, ownership links and
// the attributes written by the compiler phases.
type Item interface {
	Base() *ItemBase
	Kind() Kind
}

// IsDefinition tells whether an item is a definition (schema, fieldset,
// field, index or constraint) as opposed to a property, deletion or import.
func IsDefinition(it Item) bool {
	return it.Kind()&(KindSchema|KindFieldSet|KindField|KindIndex|KindConstraint) != 0
}

// ItemBase holds the data common to all AST nodes.  The compiler phases
// annotate it in append-only fashion: each attribute is written exactly once
// by the phase noted in its comment and never mutated again.
type ItemBase struct {
	// Name is the simple name of the item, lowercase.  For deletions it is
	// the name being deleted.
	Name string

	// Line and Col locate the item in its source.  Line starts at 1, Col is
	// a 0-indexed column.
	Line, Col int

	// Owner is the statically enclosing item; nil for schemas.
	Owner Item

	// Children are the owned sub-items in source order.  Property arguments
	// are not children; see Property.Args.
	Children []Item

	// Modifiers is the subset of {abstract, final, required} written on the
	// definition.
	Modifiers []string

	// self points back at the concrete node so that methods declared on
	// ItemBase can hand out the full item.  Set by SetupOwners.
	self Item

	// snc caches statically contained children by name.  Set by
	// CacheStaticNames after loading.
	snc map[string]Item

	// Implementation tree attributes, set by phase 2.  DirectImplementor is
	// the unique definition whose implements list includes this one, or nil.
	// FinalImplementor is the root of the implementation tree; for a
	// singleton tree it is the item itself.
	DirectImplementor Item
	FinalImplementor  Item
	Specifications    []Item
	Implementations   []Item

	// Inheritance attributes, set by phase 3.  Ancestors holds the effective
	// (imp-name dereferenced) ancestors in source order.
	Ancestors   []Item
	Descendants []Item

	// Member table, set by phase 3.  members is ordered; mbn indexes it by
	// name.  Every member value is a final implementation.
	members       []Item
	mbn           map[string]Item
	membersCached bool

	deletions       map[string]bool
	UnusedDeletions map[string]bool

	// Realization flags, set by phase 5.
	Realized bool
	Toplevel bool
}

func (b *ItemBase) Base() *ItemBase { return b }

// Self returns the concrete item this base belongs to.
func (b *ItemBase) Self() Item { return b.self }

// HasModifier tests for a modifier by name.
func (b *ItemBase) HasModifier(mod string) bool {
	for _, m := range b.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// Schema is a top-level package loaded from one source file or URI.
type Schema struct {
	ItemBase

	// PackageName is the full dot-separated package name.
	PackageName string

	// Uses holds the use/require statements in source order.
	Uses []*Use

	// Origin is the canonical source of the schema: an absolute file path
	// with symlinks resolved, or the URI string for remote schemas.
	Origin string

	// SearchPath is the directory list used to resolve this schema's
	// imports.  For a local schema its own directory comes first; URI and
	// builtin schemas use the loader search path only.
	SearchPath []string

	// SourceLines keeps the source text split into lines so diagnostics can
	// quote it.
	SourceLines []string

	// UseStack records the chain of imports that caused this schema to be
	// loaded (loader debugging).
	UseStack []string
}

func (s *Schema) Kind() Kind { return KindSchema }

// SourceLineAt returns the source line with the given 1-based number, or "".
func (s *Schema) SourceLineAt(line int) string {
	if line < 1 || line > len(s.SourceLines) {
		return ""
	}
	return s.SourceLines[line-1]
}

// FieldSet is a named set of fields and nested fieldsets.  A toplevel
// realized fieldset translates to a table; a nested one to a column group.
type FieldSet struct {
	ItemBase
}

func (fs *FieldSet) Kind() Kind { return KindFieldSet }

// Field is a leaf attribute.  It may carry a type or reference another
// fieldset.
type Field struct {
	ItemBase
}

func (f *Field) Kind() Kind { return KindField }

// Index is an index definition inside a fieldset.
type Index struct {
	ItemBase
}

func (ix *Index) Kind() Kind { return KindIndex }

// Constraint is a check constraint definition inside a fieldset.
type Constraint struct {
	ItemBase
}

func (c *Constraint) Kind() Kind { return KindConstraint }

// Property is a named list of argument values attached to a definition.
type Property struct {
	ItemBase

	// Args holds the heterogeneous argument values in source order.
	Args []Value
}

func (p *Property) Kind() Kind { return KindProperty }

// Deletion removes an inherited member by name.  Its Name is the name being
// deleted; it participates in block-level uniqueness but is not a definition.
type Deletion struct {
	ItemBase
}

func (d *Deletion) Kind() Kind { return KindDeletion }

// Use is a use/require statement.  It is not a definition.
type Use struct {
	ItemBase

	// Alias is the local name for the imported schema, or "" when the
	// target is a single simple name used verbatim.
	Alias string

	// Require marks a require statement; plain use does not propagate
	// realization.
	Require bool

	// Origin is the canonical key of the target, set by the loader.
	Origin string

	// Schema is the resolved target, set by the loader.
	Schema *Schema
}

func (u *Use) Kind() Kind { return KindUse }

// Prefix returns the name under which the imported schema is visible inside
// the importing schema.
func (u *Use) Prefix() string {
	if u.Alias != "" {
		return u.Alias
	}
	return u.Name
}

// -----------------------------------------------------------------------------

// SetupOwners initializes the owner and self links of the whole ownership
// tree.  Must be called once per schema after parsing.
func (s *Schema) SetupOwners() {
	s.self = s
	s.Owner = nil
	setupOwners(s)
	for _, use := range s.Uses {
		use.self = use
		use.Owner = s
	}
}

func setupOwners(it Item) {
	for _, child := range it.Base().Children {
		child.Base().self = child
		child.Base().Owner = it
		setupOwners(child)
	}
}

// CacheStaticNames builds the static name cache of the item and all its
// sub-items.  Must be called once per schema after SetupOwners.
func CacheStaticNames(it Item) {
	b := it.Base()
	b.snc = make(map[string]Item)
	for _, child := range it.Base().Children {
		if child.Base().Name != "" {
			b.snc[child.Base().Name] = child
		}
		CacheStaticNames(child)
	}
}

// -----------------------------------------------------------------------------

// Iterate walks the ownership tree depth first, visiting sub-items before
// their owner, and finally the item itself.  Only items matching the kind
// mask are passed to the callback.
func Iterate(it Item, kinds Kind, fn func(Item)) {
	for _, child := range it.Base().Children {
		Iterate(child, kinds, fn)
	}
	if Matches(it, kinds) {
		fn(it)
	}
}

// Owns tells whether other is statically contained in it, directly or
// indirectly.  An item does not own itself.
func Owns(it, other Item) bool {
	for _, child := range it.Base().Children {
		if child == other || Owns(child, other) {
			return true
		}
	}
	return false
}

// IsOutermost tells whether the definition is defined at schema level.
func IsOutermost(it Item) bool {
	owner := it.Base().Owner
	return owner != nil && owner.Kind() == KindSchema
}

// OwnerSchema returns the schema that owns the item (possibly the item
// itself).
func OwnerSchema(it Item) *Schema {
	for it != nil {
		if s, ok := it.(*Schema); ok {
			return s
		}
		it = it.Base().Owner
	}
	return nil
}

// FinalOf returns the final implementor of a definition, or the item itself
// for items that have none (properties, indexes, constraints, and fields or
// fieldsets before phase 2).
func FinalOf(it Item) Item {
	if fi := it.Base().FinalImplementor; fi != nil {
		return fi
	}
	return it
}

// Path returns the full dotted name path of the item, starting with the
// package name of its schema.  The compiler guarantees that no two
// definitions in one block share a name, so the path identifies the item.
func Path(it Item) string {
	if s, ok := it.(*Schema); ok {
		return s.PackageName
	}
	if it.Base().Owner == nil {
		return it.Base().Name
	}
	return Path(it.Base().Owner) + "." + it.Base().Name
}

// ContainsItem reports membership of an item in a slice.
func ContainsItem(items []Item, it Item) bool {
	for _, x := range items {
		if x == it {
			return true
		}
	}
	return false
}

// AppendUnique appends an item if it is not already present and reports
// whether it was added.
func AppendUnique(items []Item, it Item) ([]Item, bool) {
	if ContainsItem(items, it) {
		return items, false
	}
	return append(items, it), true
}

// -----------------------------------------------------------------------------
// Property accessors.  These are only meaningful after the member tables have
// been built (phase 3), since properties can be inherited from ancestors.

// GetProp returns the member property with the given name, or nil.
func GetProp(it Item, name string) *Property {
	b := it.Base()
	if b.mbn == nil {
		return nil
	}
	if p, ok := b.mbn[name].(*Property); ok {
		return p
	}
	return nil
}

// GetSingleProp returns the first argument of the member property with the
// given name, or defval when the property is absent or has no arguments.
func GetSingleProp(it Item, name string, defval Value) Value {
	p := GetProp(it, name)
	if p == nil || len(p.Args) == 0 {
		return defval
	}
	return p.Args[0]
}

// ReferencedFieldSet returns the fieldset bound to the field's references
// property, or nil for universal references and fields without one.
func (f *Field) ReferencedFieldSet() *FieldSet {
	p := GetProp(f, "references")
	if p == nil || len(p.Args) == 0 {
		return nil
	}
	dn, ok := p.Args[0].(*DottedName)
	if !ok || dn.Ref == nil {
		return nil
	}
	fs, _ := dn.Ref.(*FieldSet)
	return fs
}

// Type returns the type of the field.  A field that references a concrete
// fieldset always has type "identifier".
func (f *Field) Type() string {
	if f.ReferencedFieldSet() != nil {
		return "identifier"
	}
	s, _ := GetSingleProp(f, "type", nil).(string)
	return s
}

// Size returns the size of the field, or -1 when unset.
func (f *Field) Size() int {
	if n, ok := GetSingleProp(f, "size", nil).(int); ok {
		return n
	}
	return -1
}

// Precision returns the precision of the field, or -1 when unset.
func (f *Field) Precision() int {
	if n, ok := GetSingleProp(f, "precision", nil).(int); ok {
		return n
	}
	return -1
}

// ReqLevel returns the requirement level of the field.
func (f *Field) ReqLevel() string {
	s, _ := GetSingleProp(f, "reqlevel", "optional").(string)
	return s
}

// NotNull returns the notnull value of the field.
func (f *Field) NotNull() bool {
	b, _ := GetSingleProp(f, "notnull", false).(bool)
	return b
}

// Immutable returns the immutable value of the field.
func (f *Field) Immutable() bool {
	b, _ := GetSingleProp(f, "immutable", false).(bool)
	return b
}

// OnDelete returns the ondelete action of the field, or the default action.
func (f *Field) OnDelete() string {
	s, _ := GetSingleProp(f, "ondelete", "noaction").(string)
	return s
}

// OnUpdate returns the onupdate action of the field, or the default action.
func (f *Field) OnUpdate() string {
	s, _ := GetSingleProp(f, "onupdate", "noaction").(string)
	return s
}

// GUID returns the guid property of a definition, or "".
func GUID(it Item) string {
	s, _ := GetSingleProp(it, "guid", nil).(string)
	return s
}

// Fields returns the fields property of the index, or nil.
func (ix *Index) Fields() *Property {
	return GetProp(ix, "fields")
}

// Unique returns the unique value of the index.
func (ix *Index) Unique() bool {
	b, _ := GetSingleProp(ix, "unique", false).(bool)
	return b
}

// Check returns the check property of the constraint, or nil.
func (c *Constraint) Check() *Property {
	return GetProp(c, "check")
}

// Language returns the language property of the schema, or the default tag.
func (s *Schema) Language() string {
	if p, ok := s.snc["language"].(*Property); ok && len(p.Args) == 1 {
		if tag, ok := p.Args[0].(string); ok {
			return tag
		}
	}
	return "en"
}

// -----------------------------------------------------------------------------

// SplitName splits a dotted name string into its simple segments.
func SplitName(name string) []string {
	return strings.Split(name, ".")
}
