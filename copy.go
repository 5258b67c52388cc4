package arenatree

import "time"

type copyItem struct {
	src    Token
	parent Token
	prev   Token
}

// CopyAndAppendSubtree deep-copies the subtree of src rooted at srcToken and
// appends the copy as the last child of dstParent. src may be a.
// Payloads are duplicated with a's cloner. The token of the copied root is
// returned.
func (a *Arena[T]) CopyAndAppendSubtree(dstParent Token, src *Arena[T], srcToken Token) Token {
	const op = "CopyAndAppendSubtree"

	a.mutating(op, dstParent)
	a.node(op, dstParent)
	src.node(op, srcToken)

	start := time.Now()
	items := src.collect(op, srcToken)

	remap := make(map[Token]Token, len(items))

	// items is complete before the first insert, so src may be a.
	for i, it := range items {
		t := a.alloc(a.cloneData(src.node(op, it.src).Data))

		switch {
		case i == 0:
			a.linkLastChild(op, dstParent, t)
		case !it.prev.IsZero():
			a.linkAfter(op, remap[it.prev], t)
		default:
			a.linkLastChild(op, remap[it.parent], t)
		}

		remap[it.src] = t
	}

	a.metrics.RecordCopy(len(items), time.Since(start))
	a.logger.LogCopy(srcToken, len(items))

	return remap[srcToken]
}

// collect lists the subtree of t in pre-order with each node's parent and
// previous sibling, using an explicit stack.
func (a *Arena[T]) collect(op string, t Token) []copyItem {
	var (
		items []copyItem
		stack = []copyItem{{src: t}}
		kids  []copyItem
	)

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		items = append(items, it)

		kids = kids[:0]
		prev := Token{}

		for c := a.node(op, it.src).firstChild; !c.IsZero(); c = a.link(op, it.src, c).next {
			kids = append(kids, copyItem{src: c, parent: it.src, prev: prev})
			prev = c
		}

		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}

	return items
}

// SplitAt moves the subtree rooted at t into a new arena with the same
// options and cloner. It returns the new arena and the token of the moved
// root inside it.
func (a *Arena[T]) SplitAt(t Token) (*Arena[T], Token) {
	const op = "SplitAt"

	a.mutating(op, t)

	dst := newArena[T](a.opts)
	dst.clone = a.clone

	root := dst.alloc(a.cloneData(a.node(op, t).Data))

	var children []Token
	for c := range a.Children(t) {
		children = append(children, c)
	}

	for _, c := range children {
		dst.CopyAndAppendSubtree(root, a, c)
	}

	a.Uproot(t)
	a.logger.LogSplit(t, dst.Len())

	return dst, root
}
