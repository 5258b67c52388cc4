package arenatree

import (
	"fmt"
	"iter"

	"github.com/gammazero/deque"
)

// TraversalOrder selects the visiting order of Subtree.
type TraversalOrder uint8

const (
	// PreOrder visits a node before its children.
	PreOrder TraversalOrder = iota
	// PostOrder visits a node after its children.
	PostOrder
	// LevelOrder visits nodes breadth first, level by level.
	LevelOrder
)

func (o TraversalOrder) String() string {
	switch o {
	case PreOrder:
		return "PreOrder"
	case PostOrder:
		return "PostOrder"
	case LevelOrder:
		return "LevelOrder"
	default:
		return fmt.Sprintf("TraversalOrder(%d)", uint8(o))
	}
}

// walker produces a token sequence one step at a time.
type walker interface {
	next() (Token, bool)
}

type branch uint8

const (
	toChild branch = iota
	toSibling
)

// preorder walks a subtree depth first, yielding a node on arrival.
// State is the current token and the branch to try next.
type preorder[T any] struct {
	a       *Arena[T]
	root    Token
	cur     Token
	br      branch
	started bool
	done    bool
}

func (w *preorder[T]) next() (Token, bool) {
	if w.done {
		return Token{}, false
	}

	if !w.started {
		w.started = true
		w.cur, w.br = w.root, toChild

		return w.root, true
	}

	for {
		n := w.a.link("PreOrder", w.root, w.cur)

		if w.br == toChild {
			if !n.firstChild.IsZero() {
				w.cur = n.firstChild
				return w.cur, true
			}

			w.br = toSibling
		}

		if w.cur == w.root {
			w.done = true
			return Token{}, false
		}

		if !n.next.IsZero() {
			w.cur, w.br = n.next, toChild
			return w.cur, true
		}

		w.cur = n.parent
	}
}

// postorder walks a subtree depth first, yielding a node once its children
// are exhausted. The root comes last.
//
// The successor of every yielded token is computed before the token is
// handed out, so the caller may free it right away.
type postorder[T any] struct {
	a       *Arena[T]
	root    Token
	cur     Token
	br      branch
	pending Token
	started bool
	done    bool
}

func (w *postorder[T]) next() (Token, bool) {
	if !w.started {
		w.started = true
		w.cur, w.br = w.root, toChild
		w.pending = w.advance()
	}

	t := w.pending
	if t.IsZero() {
		return Token{}, false
	}

	w.pending = w.advance()

	return t, true
}

func (w *postorder[T]) advance() Token {
	if w.done {
		return Token{}
	}

	for {
		if w.br == toChild {
			n := w.a.link("PostOrder", w.root, w.cur)
			if !n.firstChild.IsZero() {
				w.cur = n.firstChild
				continue
			}

			w.br = toSibling

			return w.cur
		}

		if w.cur == w.root {
			w.done = true
			return Token{}
		}

		n := w.a.link("PostOrder", w.root, w.cur)
		if !n.next.IsZero() {
			w.cur, w.br = n.next, toChild
			continue
		}

		w.cur = n.parent

		return w.cur
	}
}

// levelorder walks a subtree breadth first with one queue for the level
// being yielded and one for the level below it.
type levelorder[T any] struct {
	a       *Arena[T]
	root    Token
	current *deque.Deque[Token]
	below   *deque.Deque[Token]
	started bool
}

func (w *levelorder[T]) next() (Token, bool) {
	if !w.started {
		w.started = true
		w.current, w.below = new(deque.Deque[Token]), new(deque.Deque[Token])
		w.current.PushBack(w.root)
	}

	if w.current.Len() == 0 {
		w.current, w.below = w.below, w.current
	}

	if w.current.Len() == 0 {
		return Token{}, false
	}

	t := w.current.PopFront()

	for c := w.a.link("LevelOrder", w.root, t).firstChild; !c.IsZero(); {
		w.below.PushBack(c)
		c = w.a.link("LevelOrder", t, c).next
	}

	return t, true
}

// chain follows a single link from node to node. The next token is read
// before the current one is handed out.
type chain[T any] struct {
	a    *Arena[T]
	op   string
	from Token
	cur  Token
	step func(*Node[T]) Token
}

func (w *chain[T]) next() (Token, bool) {
	if w.cur.IsZero() {
		return Token{}, false
	}

	t := w.cur
	w.cur = w.step(w.a.link(w.op, w.from, t))

	return t, true
}

func parentOf[T any](n *Node[T]) Token     { return n.parent }
func prevOf[T any](n *Node[T]) Token       { return n.prev }
func nextOf[T any](n *Node[T]) Token       { return n.next }
func firstChildOf[T any](n *Node[T]) Token { return n.firstChild }

func (a *Arena[T]) chain(op string, t Token, first, step func(*Node[T]) Token) walker {
	return &chain[T]{a: a, op: op, from: t, cur: first(a.node(op, t)), step: step}
}

func (a *Arena[T]) subtree(op string, t Token, order TraversalOrder) walker {
	a.node(op, t)

	switch order {
	case PreOrder:
		return &preorder[T]{a: a, root: t}
	case PostOrder:
		return &postorder[T]{a: a, root: t}
	case LevelOrder:
		return &levelorder[T]{a: a, root: t}
	default:
		panic(fmt.Sprintf("arenatree: unknown traversal order %d", order))
	}
}

// seq validates t now and starts a fresh walk on every range.
func (a *Arena[T]) seq(op string, t Token, mk func() walker) iter.Seq[Token] {
	a.node(op, t)

	return func(yield func(Token) bool) {
		w := mk()
		for {
			tok, ok := w.next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// Ancestors yields the parent of t, its parent, and so on up to the root.
func (a *Arena[T]) Ancestors(t Token) iter.Seq[Token] {
	const op = "Ancestors"

	return a.seq(op, t, func() walker { return a.chain(op, t, parentOf[T], parentOf[T]) })
}

// PrecedingSiblings yields the siblings before t, nearest first.
func (a *Arena[T]) PrecedingSiblings(t Token) iter.Seq[Token] {
	const op = "PrecedingSiblings"

	return a.seq(op, t, func() walker { return a.chain(op, t, prevOf[T], prevOf[T]) })
}

// FollowingSiblings yields the siblings after t, nearest first.
func (a *Arena[T]) FollowingSiblings(t Token) iter.Seq[Token] {
	const op = "FollowingSiblings"

	return a.seq(op, t, func() walker { return a.chain(op, t, nextOf[T], nextOf[T]) })
}

// Children yields the children of t in order.
func (a *Arena[T]) Children(t Token) iter.Seq[Token] {
	const op = "Children"

	return a.seq(op, t, func() walker { return a.chain(op, t, firstChildOf[T], nextOf[T]) })
}

// Subtree yields t and all of its descendants in the given order.
//
// The tree must not change shape while the sequence is being ranged over.
func (a *Arena[T]) Subtree(t Token, order TraversalOrder) iter.Seq[Token] {
	const op = "Subtree"

	a.subtree(op, t, order)

	return a.seq(op, t, func() walker { return a.subtree(op, t, order) })
}

// Values pairs every token of seq with a copy of its payload.
func (a *Arena[T]) Values(seq iter.Seq[Token]) iter.Seq2[Token, T] {
	return func(yield func(Token, T) bool) {
		for t := range seq {
			if !yield(t, a.node("Values", t).Data) {
				return
			}
		}
	}
}
