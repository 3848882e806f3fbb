package ast

// BindPathStatic binds a name path to an item statically, i.e. through the
// lexical nesting of the source only.  The search starts at the direct
// children of it; when recursive is set and nothing matches, it continues at
// the owner, walking outward to the schema.  The kind mask applies to the
// final segment only.  Items listed in excludes never match.
//
// The result is a path of items whose last element is the bound object, or
// nil when nothing was found.  The path matters because the same definition
// can be contained multiple times inside another definition.
func BindPathStatic(it Item, parts []string, kinds Kind, recursive bool, excludes []Item) []Item {
	if len(parts) == 0 {
		return nil
	}
	b := it.Base()

	if child, ok := b.snc[parts[0]]; ok {
		if len(parts) == 1 {
			if Matches(child, kinds) && !ContainsItem(excludes, child) {
				return []Item{child}
			}
		} else {
			if res := BindPathStatic(child, parts[1:], kinds, false, excludes); res != nil {
				return append([]Item{child}, res...)
			}
		}
	}

	if recursive && b.Owner != nil {
		return BindPathStatic(b.Owner, parts, kinds, true, excludes)
	}
	return nil
}

// BindStatic is BindPathStatic reduced to the bound object itself.
func BindStatic(it Item, parts []string, kinds Kind, recursive bool, excludes []Item) Item {
	if res := BindPathStatic(it, parts, kinds, recursive, excludes); res != nil {
		return res[len(res)-1]
	}
	return nil
}

// BindPath binds a name path to an item dynamically: first through the member
// table (which already holds final implementations), then through static
// children dereferenced to their final implementor.  The static fallback is
// what lets references survive reimplementation under a different name.  When
// recursive is set, a failed lookup retries at the owner, acquisition style.
//
// The result is a path of members, or nil.  Dynamic binding only ever
// returns final implementations.
func BindPath(it Item, parts []string, kinds Kind, recursive bool, excludes []Item) []Item {
	if len(parts) == 0 {
		return nil
	}
	b := it.Base()
	first := parts[0]

	// Try to bind the first name dynamically, and go deeper if needed.
	if b.HasMember(first, kinds) {
		head := b.Member(first)
		if len(parts) == 1 {
			return []Item{head}
		}
		if res := BindPath(head, parts[1:], kinds, false, excludes); res != nil {
			return append([]Item{head}, res...)
		}
	}

	// Try to bind the first name statically, and go deeper if needed.
	if len(parts) == 1 {
		if res := BindStatic(it, parts, kinds, false, excludes); res != nil {
			return []Item{FinalOf(res)}
		}
	} else {
		if head := BindStatic(it, parts[:1], 0, false, nil); head != nil {
			head = FinalOf(head)
			if res := BindPath(head, parts[1:], kinds, false, excludes); res != nil {
				return append([]Item{head}, res...)
			}
		}
	}

	// Recursive step, acquisition style: retry from the owner.
	if recursive && b.Owner != nil {
		return BindPath(b.Owner, parts, kinds, true, excludes)
	}

	return nil
}

// Bind is BindPath reduced to the bound object itself.
func Bind(it Item, parts []string, kinds Kind, recursive bool, excludes []Item) Item {
	if res := BindPath(it, parts, kinds, recursive, excludes); res != nil {
		return res[len(res)-1]
	}
	return nil
}
