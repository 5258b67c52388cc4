package arenatree

import "iter"

// Cursor steps through a token sequence with write access to each payload.
//
// An open cursor holds an exclusive session on its arena: opening another
// cursor or changing the tree shape panics until Close is called. Payloads
// may be modified freely through Value.
type Cursor[T any] struct {
	a      *Arena[T]
	w      walker
	cur    Token
	closed bool
}

func (a *Arena[T]) openCursor(op string, t Token, w func() walker) *Cursor[T] {
	if a.cursor {
		panic(invariant(op, t, "cursor already open"))
	}

	c := &Cursor[T]{a: a, w: w()}
	a.cursor = true

	return c
}

// Next advances to the next node and reports whether there is one.
// A cursor that runs out closes itself.
func (c *Cursor[T]) Next() bool {
	if c.closed {
		return false
	}

	t, ok := c.w.next()
	if !ok {
		c.Close()
		return false
	}

	c.cur = t

	return true
}

// Token returns the current node's token.
func (c *Cursor[T]) Token() Token { return c.cur }

// Value returns a pointer to the current payload.
// It is valid until the cursor moves or closes.
func (c *Cursor[T]) Value() *T {
	if c.closed || c.cur.IsZero() {
		panic(invariant("Cursor.Value", c.cur, "cursor is not positioned on a node"))
	}

	return &c.a.node("Cursor.Value", c.cur).Data
}

// Close ends the session. It is safe to call more than once.
func (c *Cursor[T]) Close() {
	if c.closed {
		return
	}

	c.closed = true
	c.cur = Token{}
	c.a.cursor = false
}

// SubtreeCursor opens a cursor over t and its descendants.
func (a *Arena[T]) SubtreeCursor(t Token, order TraversalOrder) *Cursor[T] {
	const op = "SubtreeCursor"

	return a.openCursor(op, t, func() walker { return a.subtree(op, t, order) })
}

// ChildrenCursor opens a cursor over the children of t.
func (a *Arena[T]) ChildrenCursor(t Token) *Cursor[T] {
	const op = "ChildrenCursor"

	return a.openCursor(op, t, func() walker { return a.chain(op, t, firstChildOf[T], nextOf[T]) })
}

// AncestorsCursor opens a cursor over the ancestors of t.
func (a *Arena[T]) AncestorsCursor(t Token) *Cursor[T] {
	const op = "AncestorsCursor"

	return a.openCursor(op, t, func() walker { return a.chain(op, t, parentOf[T], parentOf[T]) })
}

// PrecedingSiblingsCursor opens a cursor over the siblings before t.
func (a *Arena[T]) PrecedingSiblingsCursor(t Token) *Cursor[T] {
	const op = "PrecedingSiblingsCursor"

	return a.openCursor(op, t, func() walker { return a.chain(op, t, prevOf[T], prevOf[T]) })
}

// FollowingSiblingsCursor opens a cursor over the siblings after t.
func (a *Arena[T]) FollowingSiblingsCursor(t Token) *Cursor[T] {
	const op = "FollowingSiblingsCursor"

	return a.openCursor(op, t, func() walker { return a.chain(op, t, nextOf[T], nextOf[T]) })
}

func ranged[T any](open func() *Cursor[T]) iter.Seq2[Token, *T] {
	return func(yield func(Token, *T) bool) {
		c := open()
		defer c.Close()

		for c.Next() {
			if !yield(c.Token(), c.Value()) {
				return
			}
		}
	}
}

// SubtreeMut ranges over t and its descendants with writable payloads.
func (a *Arena[T]) SubtreeMut(t Token, order TraversalOrder) iter.Seq2[Token, *T] {
	a.subtree("SubtreeMut", t, order)
	return ranged(func() *Cursor[T] { return a.SubtreeCursor(t, order) })
}

// ChildrenMut ranges over the children of t with writable payloads.
func (a *Arena[T]) ChildrenMut(t Token) iter.Seq2[Token, *T] {
	a.node("ChildrenMut", t)
	return ranged(func() *Cursor[T] { return a.ChildrenCursor(t) })
}

// AncestorsMut ranges over the ancestors of t with writable payloads.
func (a *Arena[T]) AncestorsMut(t Token) iter.Seq2[Token, *T] {
	a.node("AncestorsMut", t)
	return ranged(func() *Cursor[T] { return a.AncestorsCursor(t) })
}

// PrecedingSiblingsMut ranges over the siblings before t with writable payloads.
func (a *Arena[T]) PrecedingSiblingsMut(t Token) iter.Seq2[Token, *T] {
	a.node("PrecedingSiblingsMut", t)
	return ranged(func() *Cursor[T] { return a.PrecedingSiblingsCursor(t) })
}

// FollowingSiblingsMut ranges over the siblings after t with writable payloads.
func (a *Arena[T]) FollowingSiblingsMut(t Token) iter.Seq2[Token, *T] {
	a.node("FollowingSiblingsMut", t)
	return ranged(func() *Cursor[T] { return a.FollowingSiblingsCursor(t) })
}
