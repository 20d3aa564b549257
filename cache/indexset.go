package cache

import (
	"sort"
)

// IndexSet is the set of remote index names known for one Key.
// Membership only; iteration order is unspecified.
type IndexSet map[string]struct{}

// NewIndexSet builds a set from names. Duplicates collapse.
func NewIndexSet(names ...string) IndexSet {
	s := make(IndexSet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Has reports whether name is a member.
func (s IndexSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of members.
func (s IndexSet) Len() int {
	return len(s)
}

// Names returns the members sorted.
func (s IndexSet) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy. A nil set clones to an empty one.
func (s IndexSet) Clone() IndexSet {
	c := make(IndexSet, len(s))
	for name := range s {
		c[name] = struct{}{}
	}
	return c
}
