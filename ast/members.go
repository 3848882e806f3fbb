package ast

// CacheMembers computes the ordered member table of the item.  Members are
// the sub-items defined statically in the item plus the ones inherited from
// its effective ancestors.  Safe to call repeatedly; the result is cached.
//
// The merge order: ancestors are processed in the order listed and their
// members are inherited in order unless a delete names them.  Inheriting a
// name that is already present overwrites the value but keeps the position.
// Statically contained children are processed next, in source order; a static
// child overwriting an inherited name moves the member to the current
// insertion point.  Finally, members of the directly implemented
// specifications that the implementor does not override are carried forward,
// so an implementation only has to restate what it changes.  Every member
// value is a final implementation, listed under its own name.
func CacheMembers(it Item) {
	b := it.Base()
	if b.membersCached {
		return
	}
	b.membersCached = true

	b.deletions = make(map[string]bool)
	for _, child := range b.Children {
		if child.Kind() == KindDeletion {
			b.deletions[child.Base().Name] = true
		}
	}
	usedDeletions := make(map[string]bool)

	b.mbn = make(map[string]Item)
	b.members = nil

	insert := func(name string, member Item, movePos bool) {
		if old, ok := b.mbn[name]; ok {
			for idx, m := range b.members {
				if m == old {
					if movePos {
						b.members = append(b.members[:idx], b.members[idx+1:]...)
						b.members = append(b.members, member)
					} else {
						b.members[idx] = member
					}
					break
				}
			}
			b.mbn[name] = member
			return
		}
		b.mbn[name] = member
		b.members = append(b.members, member)
	}

	// Recursive step: inherit members from ancestors.
	for _, ancestor := range b.Ancestors {
		CacheMembers(ancestor)
		for _, inherited := range ancestor.Base().members {
			name := inherited.Base().Name
			if name == "implements" || name == "ancestors" {
				continue
			}
			if b.deletions[name] {
				usedDeletions[name] = true
				continue
			}
			insert(name, inherited, false)
		}
	}

	// Normal step: our statically defined names.
	for _, child := range b.Children {
		if child.Kind() == KindDeletion {
			continue
		}
		if child.Base().Name == "" {
			continue
		}
		fi := FinalOf(child)
		insert(fi.Base().Name, fi, true)
	}

	// Specification step: members of the directly implemented definitions
	// are carried forward unless overridden or deleted.
	for _, child := range b.Children {
		prop, ok := child.(*Property)
		if !ok || prop.Name != "implements" {
			continue
		}
		for _, arg := range prop.Args {
			dn, ok := arg.(*DottedName)
			if !ok || dn.Ref == nil {
				continue
			}
			CacheMembers(dn.Ref)
			for _, inherited := range dn.Ref.Base().members {
				name := inherited.Base().Name
				if name == "implements" || name == "ancestors" {
					continue
				}
				if b.deletions[name] {
					usedDeletions[name] = true
					continue
				}
				if _, ok := b.mbn[name]; !ok {
					insert(name, inherited, false)
				}
			}
		}
	}

	b.UnusedDeletions = make(map[string]bool)
	for name := range b.deletions {
		if !usedDeletions[name] {
			b.UnusedDeletions[name] = true
		}
	}
}

// Members returns the ordered member list.  Only valid after CacheMembers.
func (b *ItemBase) Members() []Item {
	return b.members
}

// Member returns the member with the given name, or nil.
func (b *ItemBase) Member(name string) Item {
	return b.mbn[name]
}

// HasMember tells if there is a member with the given name matching the kind
// mask.
func (b *ItemBase) HasMember(name string, kinds Kind) bool {
	m, ok := b.mbn[name]
	return ok && Matches(m, kinds)
}

// ContainedPaths lists all members and members of members recursively, in
// member order.  Each result is a non-empty path of members; the last item of
// the path is the contained definition itself, and the whole path names the
// realization unambiguously (the same definition can be contained multiple
// times through different members).  Only paths ending in an item matching
// the kind mask are returned.  The receiver itself is not returned.
func ContainedPaths(it Item, kinds Kind) [][]Item {
	var res [][]Item
	for _, member := range it.Base().members {
		if Matches(member, kinds) {
			res = append(res, []Item{member})
		}
		for _, sub := range ContainedPaths(member, kinds) {
			res = append(res, append([]Item{member}, sub...))
		}
	}
	return res
}

// Contains tells if the given item is contained within, through members.  For
// static containment use Owns.
func Contains(it, other Item) bool {
	for _, member := range it.Base().members {
		if member == other || Contains(member, other) {
			return true
		}
	}
	return false
}
