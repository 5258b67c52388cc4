// Package visited provides a resettable set of slot indices for graph walks.
package visited

import "github.com/bits-and-blooms/bitset"

// Set tracks visited slot indices using a bitset and a dirty list for fast reset.
type Set struct {
	bits  *bitset.BitSet
	dirty []uint32
}

// New creates a set sized for indices below capacity. It grows on demand.
func New(capacity int) *Set {
	return &Set{
		bits:  bitset.New(uint(max(capacity, 0))),
		dirty: make([]uint32, 0, 64),
	}
}

// Visit marks id and reports whether it was not visited before.
func (s *Set) Visit(id uint32) bool {
	if s.bits.Test(uint(id)) {
		return false
	}

	s.bits.Set(uint(id))
	s.dirty = append(s.dirty, id)

	return true
}

// Visited reports whether id has been visited.
func (s *Set) Visited(id uint32) bool {
	return s.bits.Test(uint(id))
}

// Len returns the number of visited indices.
func (s *Set) Len() int { return len(s.dirty) }

// Reset clears every index visited since the last reset.
func (s *Set) Reset() {
	for _, id := range s.dirty {
		s.bits.Clear(uint(id))
	}

	s.dirty = s.dirty[:0]
}
