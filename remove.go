package arenatree

// RemoveDescendants frees every descendant of t and returns how many were
// freed. t itself stays in place as a leaf.
func (a *Arena[T]) RemoveDescendants(t Token) int {
	const op = "RemoveDescendants"

	a.mutating(op, t)

	n := a.removeDescendants(op, t)
	a.metrics.RecordFree(n)

	return n
}

// removeDescendants drives the post-order walk below t. Each yielded node
// is freed only after the walker has moved past it.
func (a *Arena[T]) removeDescendants(op string, t Token) int {
	if a.node(op, t).firstChild.IsZero() {
		return 0
	}

	w := &postorder[T]{a: a, root: t}
	freed := 0

	for {
		d, ok := w.next()
		if !ok || d == t {
			break
		}

		a.release(op, d)
		freed++
	}

	a.node(op, t).firstChild = Token{}

	return freed
}

// Remove frees t alone. Its children take its place in the parent's child
// list, in order; children of a removed root become free roots.
// The former children are returned in order.
func (a *Arena[T]) Remove(t Token) []Token {
	const op = "Remove"

	a.mutating(op, t)

	n := a.node(op, t)

	var children []Token
	for c := n.firstChild; !c.IsZero(); c = a.link(op, t, c).next {
		children = append(children, c)
	}

	switch {
	case len(children) == 0:
		a.unlink(op, t)
	case n.parent.IsZero():
		for _, c := range children {
			cn := a.link(op, t, c)
			cn.parent, cn.prev, cn.next = Token{}, Token{}, Token{}
		}
	default:
		for _, c := range children {
			a.link(op, t, c).parent = n.parent
		}

		first := a.link(op, t, children[0])
		last := a.link(op, t, children[len(children)-1])
		first.prev = n.prev
		last.next = n.next

		if n.prev.IsZero() {
			a.link(op, t, n.parent).firstChild = children[0]
		} else {
			a.link(op, t, n.prev).next = children[0]
		}

		if !n.next.IsZero() {
			a.link(op, t, n.next).prev = children[len(children)-1]
		}
	}

	a.release(op, t)
	a.metrics.RecordFree(1)

	return children
}

// Uproot frees t together with its whole subtree and closes the gap it
// leaves among its siblings.
func (a *Arena[T]) Uproot(t Token) {
	const op = "Uproot"

	a.mutating(op, t)

	n := a.removeDescendants(op, t)
	a.unlink(op, t)
	a.release(op, t)
	a.metrics.RecordFree(n + 1)
}

// Overwrite frees the descendants of t and replaces its payload. t keeps
// its position. The previous payload is returned.
func (a *Arena[T]) Overwrite(t Token, data T) T {
	const op = "Overwrite"

	a.mutating(op, t)

	a.metrics.RecordFree(a.removeDescendants(op, t))

	n := a.node(op, t)
	old := n.Data
	n.Data = data

	return old
}
