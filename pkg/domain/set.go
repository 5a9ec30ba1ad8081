package domain

import "sort"

// StringSet is an unordered collection of distinct strings. Membership is the
// only observable property; callers must not rely on iteration order.
type StringSet map[string]struct{}

// NewStringSet returns a set holding the given values. Duplicates collapse.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s.Add(v)
	}

	return s
}

// Add inserts v and reports whether it was not already present.
func (s StringSet) Add(v string) bool {
	if _, ok := s[v]; ok {
		return false
	}
	s[v] = struct{}{}

	return true
}

// Has reports whether v is a member of the set.
func (s StringSet) Has(v string) bool {
	_, ok := s[v]

	return ok
}

// Len returns the number of members.
func (s StringSet) Len() int { return len(s) }

// Values returns the members in unspecified order.
func (s StringSet) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}

	return out
}

// Sorted returns the members in lexical order. It exists so serialized output
// is stable; the order carries no meaning.
func (s StringSet) Sorted() []string {
	out := s.Values()
	sort.Strings(out)

	return out
}

// Equal reports whether both sets hold exactly the same members.
func (s StringSet) Equal(other StringSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.Has(v) {
			return false
		}
	}

	return true
}
