package arenatree

// Node is one tree element: a payload plus its structural links.
//
// Links are read-only; the tree shape changes only through Arena methods.
type Node[T any] struct {
	Data T

	token      Token
	parent     Token
	prev       Token
	next       Token
	firstChild Token
}

// Token returns the node's own token.
func (n *Node[T]) Token() Token { return n.token }

// Parent returns the parent token, or the zero Token for a root.
func (n *Node[T]) Parent() Token { return n.parent }

// PreviousSibling returns the preceding sibling, if any.
func (n *Node[T]) PreviousSibling() Token { return n.prev }

// NextSibling returns the following sibling, if any.
func (n *Node[T]) NextSibling() Token { return n.next }

// FirstChild returns the first child, if any.
func (n *Node[T]) FirstChild() Token { return n.firstChild }

// IsRoot reports whether the node has no parent.
func (n *Node[T]) IsRoot() bool { return n.parent.IsZero() }

// IsLeaf reports whether the node has no children.
func (n *Node[T]) IsLeaf() bool { return n.firstChild.IsZero() }

// isFree reports whether the node is a free root: no parent and no siblings.
func (n *Node[T]) isFree() bool {
	return n.parent.IsZero() && n.prev.IsZero() && n.next.IsZero()
}
