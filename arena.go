package arenatree

import (
	"iter"

	"github.com/hupe1980/arenatree/internal/arena"
)

// Arena owns a pool of tree nodes.
//
// Pointers returned by Get and Node stay valid until the pool grows; hold
// tokens, not pointers, across insertions.
type Arena[T any] struct {
	slots   *arena.Allocator[Node[T]]
	opts    options
	logger  *Logger
	metrics MetricsCollector
	clone   func(T) T
	cursor  bool
}

// New creates an empty arena.
func New[T any](opts ...Option) *Arena[T] {
	return newArena[T](applyOptions(opts))
}

func newArena[T any](o options) *Arena[T] {
	a := &Arena[T]{
		slots:   arena.New[Node[T]](o.capacity),
		opts:    o,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}
	a.slots.OnGrow(a.onGrow)

	return a
}

// WithData creates an arena holding a single root node.
func WithData[T any](data T, opts ...Option) (*Arena[T], Token) {
	a := New[T](opts...)
	return a, a.NewNode(data)
}

func (a *Arena[T]) onGrow(oldCap, newCap int) {
	a.logger.LogGrow(oldCap, newCap)
	a.metrics.RecordGrow(oldCap, newCap)
}

// SetCloner sets the function used to duplicate payloads when subtrees are
// copied. Without one, payloads are copied by assignment.
func (a *Arena[T]) SetCloner(fn func(T) T) {
	a.clone = fn
}

func (a *Arena[T]) cloneData(v T) T {
	if a.clone == nil {
		return v
	}

	return a.clone(v)
}

// NewNode creates a free root holding data.
func (a *Arena[T]) NewNode(data T) Token {
	a.mutating("NewNode", Token{})
	return a.alloc(data)
}

// Len returns the number of nodes in the arena.
func (a *Arena[T]) Len() int { return a.slots.Len() }

// Capacity returns the number of nodes the arena holds without growing.
func (a *Arena[T]) Capacity() int { return a.slots.Cap() }

// IsEmpty reports whether the arena holds no nodes.
func (a *Arena[T]) IsEmpty() bool { return a.slots.IsEmpty() }

// Reserve grows the pool so that n more nodes fit without growing again.
func (a *Arena[T]) Reserve(n int) {
	a.mutating("Reserve", Token{})

	if missing := n - a.slots.FreeLen(); missing > 0 {
		a.slots.Reserve(missing)
	}
}

// Get returns the node behind t, or false if t is zero, stale or out of range.
func (a *Arena[T]) Get(t Token) (*Node[T], bool) {
	return a.slots.Get(t.ref())
}

// Node returns the node behind t and panics if t is not live.
func (a *Arena[T]) Node(t Token) *Node[T] {
	return a.node("Node", t)
}

// Contains reports whether t refers to a live node.
func (a *Arena[T]) Contains(t Token) bool {
	return a.slots.Contains(t.ref())
}

// Roots iterates over every node without a parent in slot order.
func (a *Arena[T]) Roots() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for _, n := range a.slots.All() {
			if n.parent.IsZero() && !yield(n.token) {
				return
			}
		}
	}
}

// Depth returns the number of ancestors of t.
func (a *Arena[T]) Depth(t Token) int {
	d := 0
	for range a.Ancestors(t) {
		d++
	}

	return d
}

// node resolves a caller-supplied token.
func (a *Arena[T]) node(op string, t Token) *Node[T] {
	n, ok := a.slots.Get(t.ref())
	if !ok {
		panic(invariant(op, t, "token does not refer to a live node"))
	}

	return n
}

// link resolves a token read from a structural link of from.
func (a *Arena[T]) link(op string, from, t Token) *Node[T] {
	n, ok := a.slots.Get(t.ref())
	if !ok {
		panic(invariant(op, from, "link to dead node %s", t))
	}

	return n
}

func (a *Arena[T]) alloc(data T) Token {
	r := a.slots.Insert(Node[T]{Data: data})
	t := tokenOf(r)

	n, _ := a.slots.Get(r)
	n.token = t

	a.metrics.RecordAlloc()

	return t
}

// release frees the slot of t without touching any link.
func (a *Arena[T]) release(op string, t Token) T {
	n, ok := a.slots.Remove(t.ref())
	if !ok {
		panic(invariant(op, t, "token does not refer to a live node"))
	}

	return n.Data
}

// mutating panics when a cursor holds the arena.
func (a *Arena[T]) mutating(op string, t Token) {
	if a.cursor {
		panic(invariant(op, t, "structural change while a cursor is open"))
	}
}
