package arenatree

// Append adds data as the last child of parent and returns its token.
//
// Finding the current last child walks the child list.
func (a *Arena[T]) Append(parent Token, data T) Token {
	const op = "Append"

	a.mutating(op, parent)
	a.node(op, parent)

	t := a.alloc(data)
	a.linkLastChild(op, parent, t)

	return t
}

func (a *Arena[T]) linkLastChild(op string, parent, child Token) {
	p := a.node(op, parent)
	c := a.node(op, child)
	c.parent = parent

	if p.firstChild.IsZero() {
		p.firstChild = child
		return
	}

	last := p.firstChild
	for {
		n := a.link(op, parent, last)
		if n.next.IsZero() {
			n.next = child
			c.prev = last

			return
		}

		last = n.next
	}
}

// InsertBefore adds data as the sibling directly before t.
// It fails with ErrRootSibling when t has no parent.
func (a *Arena[T]) InsertBefore(t Token, data T) (Token, error) {
	const op = "InsertBefore"

	a.mutating(op, t)

	if a.node(op, t).parent.IsZero() {
		return Token{}, nodeError(op, t, Token{}, ErrRootSibling)
	}

	s := a.alloc(data)
	a.linkBefore(op, t, s)

	return s, nil
}

// InsertAfter adds data as the sibling directly after t.
// It fails with ErrRootSibling when t has no parent.
func (a *Arena[T]) InsertAfter(t Token, data T) (Token, error) {
	const op = "InsertAfter"

	a.mutating(op, t)

	if a.node(op, t).parent.IsZero() {
		return Token{}, nodeError(op, t, Token{}, ErrRootSibling)
	}

	s := a.alloc(data)
	a.linkAfter(op, t, s)

	return s, nil
}

// linkBefore splices the free node s in front of t.
func (a *Arena[T]) linkBefore(op string, t, s Token) {
	n := a.node(op, t)
	sn := a.node(op, s)

	sn.parent = n.parent
	sn.prev = n.prev
	sn.next = t

	if n.prev.IsZero() {
		a.link(op, t, n.parent).firstChild = s
	} else {
		a.link(op, t, n.prev).next = s
	}

	n.prev = s
}

// linkAfter splices the free node s behind t.
func (a *Arena[T]) linkAfter(op string, t, s Token) {
	n := a.node(op, t)
	sn := a.node(op, s)

	sn.parent = n.parent
	sn.prev = t
	sn.next = n.next

	if !n.next.IsZero() {
		a.link(op, t, n.next).prev = s
	}

	n.next = s
}

// Detach unlinks t from its parent and siblings. t keeps its subtree and
// becomes a free root.
func (a *Arena[T]) Detach(t Token) {
	const op = "Detach"

	a.mutating(op, t)
	a.unlink(op, t)
}

func (a *Arena[T]) unlink(op string, t Token) {
	n := a.node(op, t)

	switch {
	case !n.prev.IsZero():
		a.link(op, t, n.prev).next = n.next
	case !n.parent.IsZero():
		a.link(op, t, n.parent).firstChild = n.next
	}

	if !n.next.IsZero() {
		a.link(op, t, n.next).prev = n.prev
	}

	n.parent, n.prev, n.next = Token{}, Token{}, Token{}
}

// ReplaceNode puts the free root other in t's position. t becomes a free
// root and keeps its subtree. It fails with ErrNotFreeNode when other is
// attached elsewhere and with ErrCycle when other is an ancestor of t.
func (a *Arena[T]) ReplaceNode(t, other Token) error {
	const op = "ReplaceNode"

	a.mutating(op, t)

	if err := a.checkAttach(op, t, other, a.node(op, t).parent); err != nil {
		return err
	}

	return a.replace(op, t, other)
}

// ReplaceNodeUnchecked is ReplaceNode without the ancestry walk.
// Replacing a node with the root of its own tree corrupts the arena with a
// cycle.
func (a *Arena[T]) ReplaceNodeUnchecked(t, other Token) error {
	const op = "ReplaceNodeUnchecked"

	a.mutating(op, t)

	return a.replace(op, t, other)
}

func (a *Arena[T]) replace(op string, t, other Token) error {
	n := a.node(op, t)
	o := a.node(op, other)

	if !o.isFree() {
		return nodeError(op, t, other, ErrNotFreeNode)
	}

	if t == other {
		return nil
	}

	o.parent, o.prev, o.next = n.parent, n.prev, n.next

	switch {
	case !n.prev.IsZero():
		a.link(op, t, n.prev).next = other
	case !n.parent.IsZero():
		a.link(op, t, n.parent).firstChild = other
	}

	if !n.next.IsZero() {
		a.link(op, t, n.next).prev = other
	}

	n.parent, n.prev, n.next = Token{}, Token{}, Token{}

	return nil
}

// AppendNode attaches the free root other as the last child of parent.
// It fails with ErrNotFreeNode when other is attached elsewhere and with
// ErrCycle when other is parent or one of its ancestors.
func (a *Arena[T]) AppendNode(parent, other Token) error {
	const op = "AppendNode"

	a.mutating(op, parent)

	if err := a.checkAttach(op, parent, other, parent); err != nil {
		return err
	}

	return a.appendNode(op, parent, other)
}

// AppendNodeUnchecked is AppendNode without the ancestry walk.
// Attaching a node below itself corrupts the arena with a cycle.
func (a *Arena[T]) AppendNodeUnchecked(parent, other Token) error {
	const op = "AppendNodeUnchecked"

	a.mutating(op, parent)
	a.node(op, parent)

	if !a.node(op, other).isFree() {
		return nodeError(op, parent, other, ErrNotFreeNode)
	}

	return a.appendNode(op, parent, other)
}

// InsertNodeBefore attaches the free root other as the sibling before t.
func (a *Arena[T]) InsertNodeBefore(t, other Token) error {
	const op = "InsertNodeBefore"

	a.mutating(op, t)

	if err := a.checkSibling(op, t, other, true); err != nil {
		return err
	}

	return a.insertNode(op, t, other, a.linkBefore)
}

// InsertNodeBeforeUnchecked is InsertNodeBefore without the ancestry walk.
func (a *Arena[T]) InsertNodeBeforeUnchecked(t, other Token) error {
	const op = "InsertNodeBeforeUnchecked"

	a.mutating(op, t)

	if err := a.checkSibling(op, t, other, false); err != nil {
		return err
	}

	return a.insertNode(op, t, other, a.linkBefore)
}

// InsertNodeAfter attaches the free root other as the sibling after t.
func (a *Arena[T]) InsertNodeAfter(t, other Token) error {
	const op = "InsertNodeAfter"

	a.mutating(op, t)

	if err := a.checkSibling(op, t, other, true); err != nil {
		return err
	}

	return a.insertNode(op, t, other, a.linkAfter)
}

// InsertNodeAfterUnchecked is InsertNodeAfter without the ancestry walk.
func (a *Arena[T]) InsertNodeAfterUnchecked(t, other Token) error {
	const op = "InsertNodeAfterUnchecked"

	a.mutating(op, t)

	if err := a.checkSibling(op, t, other, false); err != nil {
		return err
	}

	return a.insertNode(op, t, other, a.linkAfter)
}

func (a *Arena[T]) checkSibling(op string, t, other Token, ancestry bool) error {
	if a.node(op, t).parent.IsZero() {
		return nodeError(op, t, other, ErrRootSibling)
	}

	if !ancestry {
		if !a.node(op, other).isFree() {
			return nodeError(op, t, other, ErrNotFreeNode)
		}

		return nil
	}

	return a.checkAttach(op, t, other, a.node(op, t).parent)
}

// checkAttach rejects other unless it is a free root outside the ancestry
// of anchor (anchor included).
func (a *Arena[T]) checkAttach(op string, t, other, anchor Token) error {
	a.node(op, t)

	if !a.node(op, other).isFree() {
		return nodeError(op, t, other, ErrNotFreeNode)
	}

	for cur := anchor; !cur.IsZero(); cur = a.link(op, t, cur).parent {
		if cur == other {
			return nodeError(op, t, other, ErrCycle)
		}
	}

	return nil
}

// appendNode attaches other through a placeholder: append an empty node,
// replace it with other, free the placeholder.
func (a *Arena[T]) appendNode(op string, parent, other Token) error {
	var zero T

	ph := a.alloc(zero)
	a.linkLastChild(op, parent, ph)

	return a.swapPlaceholder(op, ph, other)
}

func (a *Arena[T]) insertNode(op string, t, other Token, link func(string, Token, Token)) error {
	var zero T

	ph := a.alloc(zero)
	link(op, t, ph)

	return a.swapPlaceholder(op, ph, other)
}

func (a *Arena[T]) swapPlaceholder(op string, ph, other Token) error {
	if err := a.replace(op, ph, other); err != nil {
		// other was verified free before the placeholder was linked.
		panic(invariant(op, other, "free root changed during attach: %v", err))
	}

	a.release(op, ph)
	a.metrics.RecordFree(1)

	return nil
}
