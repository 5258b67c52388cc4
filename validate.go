package arenatree

import (
	"github.com/hupe1980/arenatree/internal/visited"
)

// Validate checks the structural invariants of every node and returns the
// first violation as an *InvariantError. It also verifies that every node
// is reachable from a root without revisiting any node.
//
// A corrupt free list panics.
func (a *Arena[T]) Validate() error {
	const op = "Validate"

	a.slots.CheckFreeList()

	for r, n := range a.slots.All() {
		t := tokenOf(r)
		if n.token != t {
			return invariant(op, t, "self token is %s", n.token)
		}

		for _, l := range []Token{n.parent, n.prev, n.next, n.firstChild} {
			if !l.IsZero() && !a.Contains(l) {
				return invariant(op, t, "link to dead node %s", l)
			}
		}

		if err := a.validateLinks(t, n); err != nil {
			return err
		}
	}

	return a.validateReachability()
}

func (a *Arena[T]) validateLinks(t Token, n *Node[T]) error {
	const op = "Validate"

	if n.parent.IsZero() {
		if !n.prev.IsZero() || !n.next.IsZero() {
			return invariant(op, t, "root has siblings")
		}
	} else if n.prev.IsZero() {
		if p := a.node(op, n.parent); p.firstChild != t {
			return invariant(op, t, "first sibling is not the first child of %s", n.parent)
		}
	}

	if !n.firstChild.IsZero() {
		c := a.node(op, n.firstChild)
		if c.parent != t {
			return invariant(op, t, "first child %s has parent %s", n.firstChild, c.parent)
		}

		if !c.prev.IsZero() {
			return invariant(op, t, "first child %s has a previous sibling", n.firstChild)
		}
	}

	if !n.next.IsZero() {
		s := a.node(op, n.next)
		if s.prev != t {
			return invariant(op, t, "next sibling %s links back to %s", n.next, s.prev)
		}

		if s.parent != n.parent {
			return invariant(op, t, "next sibling %s has parent %s", n.next, s.parent)
		}
	}

	if !n.prev.IsZero() && a.node(op, n.prev).next != t {
		return invariant(op, t, "previous sibling %s does not link forward", n.prev)
	}

	return nil
}

// validateReachability walks down from every root. Link consistency is
// already established, so a node seen twice or never seen means a cycle.
func (a *Arena[T]) validateReachability() error {
	const op = "Validate"

	seen := visited.New(a.slots.Cap() + 1)

	var stack []Token

	for root := range a.Roots() {
		seen.Visit(root.index)
		stack = append(stack[:0], root)

		for len(stack) > 0 {
			t := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for c := a.node(op, t).firstChild; !c.IsZero(); c = a.node(op, c).next {
				if !seen.Visit(c.index) {
					return invariant(op, c, "node reached twice")
				}

				stack = append(stack, c)
			}
		}
	}

	if seen.Len() == a.Len() {
		return nil
	}

	occupied := a.slots.Occupied()

	it := occupied.Iterator()
	for it.HasNext() {
		idx := it.Next()
		if !seen.Visited(idx) {
			r, _ := a.slots.At(idx)
			return invariant(op, tokenOf(r), "node is not reachable from any root")
		}
	}

	return nil
}
