package arena

import (
	"errors"
	"fmt"
	"iter"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/arenatree/internal/conv"
)

var (
	// ErrCapacityExceeded is the panic cause when the pool would outgrow MaxSlots.
	ErrCapacityExceeded = errors.New("arena: capacity exceeded")
	// ErrCorrupt is the panic cause when the free list is found inconsistent.
	ErrCorrupt = errors.New("arena: corrupt free list")
	// ErrInvalidState is returned by Restore for inconsistent slot state.
	ErrInvalidState = errors.New("arena: invalid slot state")
)

const (
	// MinGrowth is the smallest number of slots added by an implicit grow.
	MinGrowth = 8
	// MaxSlots bounds the number of usable slots (index 0 excluded).
	MaxSlots = math.MaxInt32
)

// Ref is a handle to an allocated slot.
// It includes the generation the slot had when the value was inserted.
type Ref struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether r is the absent reference.
func (r Ref) IsZero() bool { return r.Index == 0 }

type slot[T any] struct {
	value    T
	gen      uint32
	next     uint32
	occupied bool
}

// Allocator is a growable pool of slots addressed by Ref.
type Allocator[T any] struct {
	slots  []slot[T]
	head   uint32
	tail   uint32
	free   int
	len    int
	onGrow func(oldCap, newCap int)
}

// New creates an allocator with capacity free slots already reserved.
func New[T any](capacity int) *Allocator[T] {
	a := &Allocator[T]{slots: make([]slot[T], 1, 1+max(capacity, 0))}
	if capacity > 0 {
		a.grow(capacity)
	}

	return a
}

// OnGrow registers fn to be called after every growth of the pool.
func (a *Allocator[T]) OnGrow(fn func(oldCap, newCap int)) {
	a.onGrow = fn
}

// Len returns the number of occupied slots.
func (a *Allocator[T]) Len() int { return a.len }

// Cap returns the number of usable slots, occupied or free.
func (a *Allocator[T]) Cap() int { return len(a.slots) - 1 }

// FreeLen returns the number of free slots.
func (a *Allocator[T]) FreeLen() int { return a.free }

// IsEmpty reports whether no slot is occupied.
func (a *Allocator[T]) IsEmpty() bool { return a.len == 0 }

// Reserve appends n free slots to the pool.
func (a *Allocator[T]) Reserve(n int) {
	if n <= 0 {
		return
	}

	a.grow(n)
}

func (a *Allocator[T]) grow(n int) {
	oldCap := a.Cap()
	if n > MaxSlots-oldCap {
		panic(fmt.Errorf("%w: %d + %d slots", ErrCapacityExceeded, oldCap, n))
	}

	first := conv.MustUint32(len(a.slots))
	a.slots = append(a.slots, make([]slot[T], n)...)

	last := conv.MustUint32(len(a.slots) - 1)
	for i := first; i < last; i++ {
		a.slots[i].next = i + 1
	}

	if a.tail != 0 {
		a.slots[a.tail].next = first
	} else {
		a.head = first
	}

	a.tail = last
	a.free += n

	if a.onGrow != nil {
		a.onGrow(oldCap, a.Cap())
	}
}

// Insert stores v in a free slot, growing the pool when none is left.
func (a *Allocator[T]) Insert(v T) Ref {
	if a.head == 0 {
		a.grow(max(a.Cap(), MinGrowth))
	}

	i := a.head
	s := &a.slots[i]

	if s.occupied {
		panic(fmt.Errorf("%w: head %d is occupied", ErrCorrupt, i))
	}

	a.head = s.next
	if a.head == 0 {
		a.tail = 0
	}

	s.next = 0
	s.occupied = true
	s.value = v
	a.free--
	a.len++

	return Ref{Index: i, Gen: s.gen}
}

func (a *Allocator[T]) lookup(r Ref) (*slot[T], bool) {
	if r.Index == 0 || int(r.Index) >= len(a.slots) {
		return nil, false
	}

	s := &a.slots[r.Index]
	if !s.occupied || s.gen != r.Gen {
		return nil, false
	}

	return s, true
}

// Remove frees the slot behind r and returns its value.
// Free, out-of-range and stale refs are ignored and report false.
func (a *Allocator[T]) Remove(r Ref) (T, bool) {
	var zero T

	s, ok := a.lookup(r)
	if !ok {
		return zero, false
	}

	v := s.value
	s.value = zero
	s.occupied = false
	s.gen++
	s.next = a.head

	a.head = r.Index
	if a.tail == 0 {
		a.tail = r.Index
	}

	a.free++
	a.len--

	return v, true
}

// Get returns a pointer to the value behind r.
// The pointer is invalidated by the next growth of the pool.
func (a *Allocator[T]) Get(r Ref) (*T, bool) {
	s, ok := a.lookup(r)
	if !ok {
		return nil, false
	}

	return &s.value, true
}

// Set overwrites the value behind r and returns the previous one.
func (a *Allocator[T]) Set(r Ref, v T) (T, bool) {
	s, ok := a.lookup(r)
	if !ok {
		var zero T
		return zero, false
	}

	old := s.value
	s.value = v

	return old, true
}

// Contains reports whether r refers to a live value.
func (a *Allocator[T]) Contains(r Ref) bool {
	_, ok := a.lookup(r)
	return ok
}

// At returns the ref of the value currently stored at index.
func (a *Allocator[T]) At(index uint32) (Ref, bool) {
	if index == 0 || int(index) >= len(a.slots) || !a.slots[index].occupied {
		return Ref{}, false
	}

	return Ref{Index: index, Gen: a.slots[index].gen}, true
}

// All iterates over occupied slots in index order.
func (a *Allocator[T]) All() iter.Seq2[Ref, *T] {
	return func(yield func(Ref, *T) bool) {
		for i := 1; i < len(a.slots); i++ {
			s := &a.slots[i]
			if !s.occupied {
				continue
			}

			if !yield(Ref{Index: uint32(i), Gen: s.gen}, &s.value) { //nolint:gosec // bounded by MaxSlots
				return
			}
		}
	}
}

// Occupied returns the set of occupied slot indices.
func (a *Allocator[T]) Occupied() *roaring.Bitmap {
	bm := roaring.New()

	for r := range a.All() {
		bm.Add(r.Index)
	}

	return bm
}

// CheckFreeList walks the free list and panics with ErrCorrupt on the
// first inconsistency.
func (a *Allocator[T]) CheckFreeList() {
	seen := bitset.New(uint(len(a.slots)))

	var (
		n    int
		last uint32
	)

	for i := a.head; i != 0; i = a.slots[i].next {
		if int(i) >= len(a.slots) {
			panic(fmt.Errorf("%w: link %d out of range", ErrCorrupt, i))
		}

		if a.slots[i].occupied {
			panic(fmt.Errorf("%w: slot %d is occupied", ErrCorrupt, i))
		}

		if seen.Test(uint(i)) {
			panic(fmt.Errorf("%w: cycle at slot %d", ErrCorrupt, i))
		}

		seen.Set(uint(i))
		last = i
		n++
	}

	if n != a.free {
		panic(fmt.Errorf("%w: %d linked slots, %d counted", ErrCorrupt, n, a.free))
	}

	if last != a.tail {
		panic(fmt.Errorf("%w: tail is %d, list ends at %d", ErrCorrupt, a.tail, last))
	}
}

// Generations returns the current generation of every slot, indexed by
// slot index. Entry 0 belongs to the sentinel.
func (a *Allocator[T]) Generations() []uint32 {
	gens := make([]uint32, len(a.slots))
	for i := range a.slots {
		gens[i] = a.slots[i].gen
	}

	return gens
}

// Entry is an occupied slot as exported for persistence.
type Entry[T any] struct {
	Ref   Ref
	Value T
}

// Restore rebuilds an allocator from exported generations and entries.
// Every entry must name a distinct in-range slot with a matching generation.
// The free list of the result links the unoccupied slots in ascending order.
func Restore[T any](gens []uint32, entries []Entry[T]) (*Allocator[T], error) {
	if len(gens) == 0 {
		return nil, fmt.Errorf("%w: missing sentinel", ErrInvalidState)
	}

	if len(gens)-1 > MaxSlots {
		return nil, fmt.Errorf("%w: %d slots", ErrCapacityExceeded, len(gens)-1)
	}

	a := &Allocator[T]{slots: make([]slot[T], len(gens))}
	for i, g := range gens {
		a.slots[i].gen = g
	}

	seen := bitset.New(uint(len(gens)))

	for _, e := range entries {
		i := e.Ref.Index
		if i == 0 || int(i) >= len(gens) {
			return nil, fmt.Errorf("%w: slot %d out of range", ErrInvalidState, i)
		}

		if seen.Test(uint(i)) {
			return nil, fmt.Errorf("%w: slot %d listed twice", ErrInvalidState, i)
		}

		if gens[i] != e.Ref.Gen {
			return nil, fmt.Errorf("%w: slot %d generation %d, entry has %d", ErrInvalidState, i, gens[i], e.Ref.Gen)
		}

		seen.Set(uint(i))
		a.slots[i].value = e.Value
		a.slots[i].occupied = true
		a.len++
	}

	for i := len(a.slots) - 1; i >= 1; i-- {
		if a.slots[i].occupied {
			continue
		}

		idx := uint32(i) //nolint:gosec // bounded by MaxSlots
		a.slots[i].next = a.head
		a.head = idx

		if a.tail == 0 {
			a.tail = idx
		}

		a.free++
	}

	return a, nil
}
