package ast

import "strings"

// Value is a property argument.  Arguments are heterogeneous: the concrete
// types are string, int, float64, bool, None, *All and *DottedName.  Name
// binding narrows *DottedName arguments in place by setting their Ref.
type Value interface{}

// None is the value of the reserved literal "none".
type None struct{}

// All is the value of the reserved literal "all".  In an implements property
// it expands to the list of ancestors.
type All struct {
	Line, Col int
}

// DottedName is a possibly dotted reference to a definition as written in the
// source.  The verbatim spelling is preserved: the leading "=" (imp-name) and
// "schema." (absolute) markers and the bracketed min-classes set are kept as
// flags so the binder can interpret them.
type DottedName struct {
	// Value is the dotted name itself, lowercase, without any prefix.
	Value string

	// Imp is set for imp-names ("=name"): the name means "the final
	// implementor of" its static binding.  Valid only in ancestors and after
	// the arrow operator.
	Imp bool

	// Absolute is set when the name was written with the "schema." prefix.
	Absolute bool

	// MinKinds restricts what the name may bind to.  Zero means the binding
	// context decides.
	MinKinds Kind

	// Direction is the index sort direction ("asc" or "desc"); set only for
	// arguments of a fields property.
	Direction string

	Line, Col int

	// Ref is the bound definition; nil until the binder runs.  RefPath is
	// the full member path leading to Ref, needed because the same
	// definition can be contained multiple times through different members.
	Ref     Item
	RefPath []Item
}

func (dn *DottedName) String() string {
	return dn.Value
}

// Parts returns the simple name segments of the dotted name.
func (dn *DottedName) Parts() []string {
	return strings.Split(dn.Value, ".")
}

// StripPrefix removes a leading segment sequence from the name.  It only
// matches whole segments: "venus" is a prefix of "venus.core" but not of
// "venusian.core".  The remainder and a success flag are returned.
func (dn *DottedName) StripPrefix(prefix string) (string, bool) {
	return stripNamePrefix(dn.Value, prefix)
}

func stripNamePrefix(name, prefix string) (string, bool) {
	if name == prefix {
		return "", true
	}
	if strings.HasPrefix(name, prefix+".") {
		return name[len(prefix)+1:], true
	}
	return "", false
}
