package listutil

import (
	"maps"
	"slices"
)

// LikeSet is the set of item ids a visitor has liked in one collection.
// Values are never mutated in place.
type LikeSet map[int]struct{}

// NewLikeSet builds a set from ids.
func NewLikeSet(ids ...int) LikeSet {
	s := make(LikeSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Toggle returns a new set with id added if absent or removed if present.
// INVARIANT: s.Toggle(id).Toggle(id) equals s
func (s LikeSet) Toggle(id int) LikeSet {
	out := maps.Clone(s)
	if out == nil {
		out = LikeSet{}
	}
	if _, ok := out[id]; ok {
		delete(out, id)
	} else {
		out[id] = struct{}{}
	}
	return out
}

// Has reports whether id is liked.
func (s LikeSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the liked ids in ascending order.
func (s LikeSet) IDs() []int {
	return slices.Sorted(maps.Keys(s))
}
